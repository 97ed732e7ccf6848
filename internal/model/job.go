package model

type JobMatch struct {
	MatchScore     int      `json:"match_score"`
	MatchedSkills  []string `json:"matched_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Recommendation string   `json:"recommendation"`
}

func DecodeJobMatch(raw []byte) (*JobMatch, error) {
	m, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	setDefault(m, "matched_skills", []interface{}{})
	setDefault(m, "missing_skills", []interface{}{})
	setDefault(m, "recommendation", "")

	if err := ValidateMap("job_match", m); err != nil {
		return nil, err
	}
	clampField(m, "match_score", MinScore, MaxScore)

	var out JobMatch
	if err := remarshal(m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type JobListing struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	URL      string `json:"url"`
	Summary  string `json:"summary"`
	FitScore int    `json:"fit_score"`
}

type JobSearch struct {
	Jobs []JobListing `json:"jobs"`
}

func DecodeJobSearch(raw []byte) (*JobSearch, error) {
	m, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	for _, job := range objects(m, "jobs") {
		setDefault(job, "location", "")
		setDefault(job, "summary", "")
		setDefault(job, "fit_score", float64(0))
	}

	if err := ValidateMap("job_search", m); err != nil {
		return nil, err
	}
	for _, job := range objects(m, "jobs") {
		clampField(job, "fit_score", MinScore, MaxScore)
	}

	var out JobSearch
	if err := remarshal(m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
