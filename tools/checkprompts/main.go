// Command checkprompts renders every task prompt with sample input and
// fails if any placeholder survives rendering. Use -print to see them.
package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"

	"career-coach/pkg/ai/prompts"
)

var leftover = regexp.MustCompile(`\{[a-zA-Z][a-zA-Z0-9_]*\}`)

const sampleResume = `Ada Lovelace
Senior Software Engineer, Analytical Engines Ltd (2019-2025)
Built distributed job schedulers in Go; led a team of five.
Skills: Go, PostgreSQL, Kubernetes, Prometheus`

const sampleJob = `Staff Engineer, Platform. You will own our Go services and Postgres fleet.
Requirements: 8+ years, Go, Kubernetes, incident leadership.`

type rendered struct {
	name         string
	placeholders []string
	text         string
}

func main() {
	printAll := flag.Bool("print", false, "print every rendered prompt")
	flag.Parse()

	out := []rendered{
		{prompts.ResumeAnalysis.Name(), prompts.ResumeAnalysis.Placeholders(),
			prompts.ResumeAnalysis.Render(prompts.ResumeAnalysisInput{TargetRole: "Staff Engineer", ResumeText: sampleResume})},
		{prompts.JobMatch.Name(), prompts.JobMatch.Placeholders(),
			prompts.JobMatch.Render(prompts.JobMatchInput{ResumeText: sampleResume, JobDescription: sampleJob})},
		{prompts.Milestones.Name(), prompts.Milestones.Placeholders(),
			prompts.Milestones.Render(prompts.MilestonesInput{TargetRole: "Engineering Manager", Weeks: 8, Focus: "people leadership"})},
		{prompts.JobSearch.Name(), prompts.JobSearch.Placeholders(),
			prompts.JobSearch.Render(prompts.JobSearchInput{TargetRole: "SRE", Location: "Berlin", Count: 10})},
		{prompts.CoverLetter.Name(), prompts.CoverLetter.Placeholders(),
			prompts.CoverLetter.Render(prompts.CoverLetterInput{ResumeText: sampleResume, JobDescription: sampleJob, Tone: "warm"})},
	}

	failed := false
	for _, r := range out {
		if left := leftover.FindAllString(r.text, -1); len(left) > 0 {
			fmt.Fprintf(os.Stderr, "%s: unresolved placeholders %v\n", r.name, left)
			failed = true
			continue
		}
		fmt.Printf("ok  %-16s %d placeholders, %d chars\n", r.name, len(r.placeholders), len(r.text))
		if *printAll {
			fmt.Printf("----\n%s\n----\n", r.text)
		}
	}
	if failed {
		os.Exit(2)
	}
}
