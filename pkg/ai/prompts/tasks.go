package prompts

type ResumeAnalysisInput struct {
	TargetRole string `prompt:"targetRole"`
	ResumeText string `prompt:"resumeText"`
}

type JobMatchInput struct {
	ResumeText     string `prompt:"resumeText"`
	JobDescription string `prompt:"jobDescription"`
}

type MilestonesInput struct {
	TargetRole string `prompt:"targetRole"`
	Weeks      int    `prompt:"weeks"`
	Focus      string `prompt:"focus"`
}

type JobSearchInput struct {
	TargetRole string `prompt:"targetRole"`
	Location   string `prompt:"location"`
	Count      int    `prompt:"count"`
}

type CoverLetterInput struct {
	ResumeText     string `prompt:"resumeText"`
	JobDescription string `prompt:"jobDescription"`
	Tone           string `prompt:"tone"`
}

var ResumeAnalysis = Must[ResumeAnalysisInput]("resume_analysis", `You are an expert resume reviewer and applicant tracking system (ATS) specialist.
Evaluate the resume below for the target role: {targetRole}.

Return ONLY a JSON object with these fields:
  "candidate_name": the candidate's full name as written on the resume,
  "ats_score": integer 0-100, how well the resume would pass an ATS for the target role,
  "section_scores": object with integer 0-100 fields "format", "content" and "keywords",
  "summary": two or three sentences of overall feedback,
  "strengths": array of short strings,
  "improvements": array of concrete, actionable suggestions,
  "missing_keywords": array of keywords expected for the role but absent.

Resume:
"""
{resumeText}
"""`)

var JobMatch = Must[JobMatchInput]("job_match", `You compare a candidate's resume against a job description.

Return ONLY a JSON object with these fields:
  "match_score": integer 0-100,
  "matched_skills": array of skills present in both,
  "missing_skills": array of required skills the resume lacks,
  "recommendation": one paragraph advising the candidate whether and how to apply.

Job description:
"""
{jobDescription}
"""

Resume:
"""
{resumeText}
"""`)

var Milestones = Must[MilestonesInput]("milestones", `You are a career coach building a {weeks}-week plan for someone moving into the role: {targetRole}.
Additional focus requested by the user: {focus}

Return ONLY a JSON object with a "milestones" array containing exactly one entry per week.
Each entry has "week" (1 to {weeks}), "title" (short goal for the week) and "tasks" (three to five concrete tasks).`)

var JobSearch = Must[JobSearchInput]("job_search", `Suggest up to {count} currently relevant job postings for the role "{targetRole}" near "{location}".

Return ONLY a JSON object with a "jobs" array. Each job has "title", "company", "location",
"url" (the public posting URL), "summary" (one sentence) and "fit_score" (integer 0-100).`)

var CoverLetter = Must[CoverLetterInput]("cover_letter", `Write a cover letter in a {tone} tone for the job below, grounded only in facts from the resume.

Return ONLY a JSON object with "subject" (an email subject line) and "letter" (the full letter text).

Job description:
"""
{jobDescription}
"""

Resume:
"""
{resumeText}
"""`)
