package model

import "fmt"

const MaxPlanWeeks = 52

type WeeklyMilestone struct {
	Week  int      `json:"week"`
	Title string   `json:"title"`
	Tasks []string `json:"tasks"`
}

type MilestonePlan struct {
	Milestones []WeeklyMilestone `json:"milestones"`
}

// DecodeMilestones validates a plan for the given number of weeks. Week
// numbers are clamped into [1, weeks].
func DecodeMilestones(raw []byte, weeks int) (*MilestonePlan, error) {
	if weeks < 1 || weeks > MaxPlanWeeks {
		return nil, fmt.Errorf("weeks %d out of range", weeks)
	}
	m, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	for _, ms := range objects(m, "milestones") {
		setDefault(ms, "tasks", []interface{}{})
	}

	if err := ValidateMap("milestones", m); err != nil {
		return nil, err
	}
	for _, ms := range objects(m, "milestones") {
		clampField(ms, "week", 1, weeks)
	}

	var out MilestonePlan
	if err := remarshal(m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
