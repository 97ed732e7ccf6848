package model

// DefaultCandidateName stands in when the model could not find a name.
const DefaultCandidateName = "Candidate"

type SectionScores struct {
	Format   int `json:"format"`
	Content  int `json:"content"`
	Keywords int `json:"keywords"`
}

// ResumeAnalysis is the validated output of the resume_analysis task.
// ats_score is required; every other field has a documented default.
type ResumeAnalysis struct {
	CandidateName   string         `json:"candidate_name"`
	ATSScore        int            `json:"ats_score"`
	SectionScores   *SectionScores `json:"section_scores,omitempty"`
	Summary         string         `json:"summary"`
	Strengths       []string       `json:"strengths"`
	Improvements    []string       `json:"improvements"`
	MissingKeywords []string       `json:"missing_keywords"`
}

func DecodeResumeAnalysis(raw []byte) (*ResumeAnalysis, error) {
	m, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	setDefault(m, "candidate_name", DefaultCandidateName)
	if s, ok := m["candidate_name"].(string); ok && s == "" {
		m["candidate_name"] = DefaultCandidateName
	}
	setDefault(m, "summary", "")
	setDefault(m, "strengths", []interface{}{})
	setDefault(m, "improvements", []interface{}{})
	setDefault(m, "missing_keywords", []interface{}{})
	if v, ok := m["section_scores"]; ok && v == nil {
		delete(m, "section_scores")
	}

	if err := ValidateMap("resume_analysis", m); err != nil {
		return nil, err
	}

	clampField(m, "ats_score", MinScore, MaxScore)
	if sec, ok := m["section_scores"].(map[string]interface{}); ok {
		for _, k := range []string{"format", "content", "keywords"} {
			clampField(sec, k, MinScore, MaxScore)
		}
	}

	var out ResumeAnalysis
	if err := remarshal(m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
