package dto

import "github.com/gradecraft/gradecraft-api/internal/models"

// EvaluateRequest carries the assignment and submission to grade.
type EvaluateRequest struct {
	Assignment models.Assignment `json:"assignment" validate:"required"`
	Submission models.Submission `json:"submission" validate:"required"`
}

// SummarizeRequest asks for a condensed version of the text.
type SummarizeRequest struct {
	Text      string `json:"text" validate:"required"`
	MaxLength int    `json:"max_length" validate:"omitempty,gt=0"`
}

// SummaryResponse returns the condensed text.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// AnswerQuestionsRequest probes the text with a list of questions.
type AnswerQuestionsRequest struct {
	Questions []string `json:"questions" validate:"required,min=1,dive,required"`
	Text      string   `json:"text" validate:"required"`
}

// ClassifyRequest scores the text against candidate categories.
type ClassifyRequest struct {
	Text       string   `json:"text" validate:"required"`
	Categories []string `json:"categories" validate:"required,min=1,dive,required"`
}

// CacheStatsResponse reports the inference request cache occupancy.
type CacheStatsResponse struct {
	Size     int `json:"size"`
	Capacity int `json:"capacity"`
}
