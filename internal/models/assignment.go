package models

// RubricCriterion is a named, point-weighted grading dimension. Criteria are
// immutable once the assignment is created; edits replace the whole rubric.
type RubricCriterion struct {
	Name        string `json:"name"`
	Points      int    `json:"points"`
	Description string `json:"description"`
}

// Assignment describes the work being graded. TotalPoints is authoritative
// for percentage math even when it disagrees with the rubric sum.
type Assignment struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Subject      string            `json:"subject"`
	Description  string            `json:"description"`
	Instructions string            `json:"instructions"`
	TotalPoints  int               `json:"total_points"`
	Rubric       []RubricCriterion `json:"rubric"`
	Keywords     []string          `json:"keywords"`
}
