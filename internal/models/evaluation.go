package models

import "time"

// EvaluatedByAI identifies evaluations produced by the automated evaluator.
const EvaluatedByAI = "AI Assistant"

// CriterionScore is the per-rubric-line outcome recovered from the model
// reply. Earned is taken verbatim and is not clamped against Possible.
type CriterionScore struct {
	Criterion  string `json:"criterion"`
	Earned     int    `json:"earned"`
	Possible   int    `json:"possible"`
	Percentage int    `json:"percentage"`
}

// Sentiment is the advisory tone classification of a submission.
type Sentiment struct {
	Label      string  `json:"label"`
	Score      int     `json:"score"`
	Confidence float64 `json:"confidence"`
}

// NeutralSentiment is the fallback used whenever sentiment analysis fails.
func NeutralSentiment() Sentiment {
	return Sentiment{Label: "NEUTRAL", Score: 50, Confidence: 0.5}
}

// Metrics holds the derived text statistics recomputed on every evaluation.
type Metrics struct {
	WordCount               int `json:"word_count"`
	CharacterCount          int `json:"character_count"`
	SentenceCount           int `json:"sentence_count"`
	ParagraphCount          int `json:"paragraph_count"`
	AverageWordsPerSentence int `json:"average_words_per_sentence"`
	ReadabilityScore        int `json:"readability_score"`
	KeywordMatches          int `json:"keyword_matches"`
}

// Evaluation is the structured grading record assembled from the model
// reply, sentiment analysis and text metrics. Percentage normally equals
// round(OverallScore/TotalPossiblePoints*100), but a percentage stated
// literally in the model reply wins over the computed one.
type Evaluation struct {
	CriteriaScores      []CriterionScore `json:"criteria_scores"`
	OverallScore        int              `json:"overall_score"`
	TotalPossiblePoints int              `json:"total_possible_points"`
	Percentage          int              `json:"percentage"`
	Grade               string           `json:"grade"`
	Feedback            string           `json:"feedback"`
	Strengths           []string         `json:"strengths"`
	Improvements        []string         `json:"improvements"`
	Sentiment           Sentiment        `json:"sentiment"`
	Metrics             Metrics          `json:"metrics"`
	EvaluatedAt         time.Time        `json:"evaluated_at"`
	EvaluatedBy         string           `json:"evaluated_by"`
}

// QuestionAnswer is the outcome of probing the submission with one question.
type QuestionAnswer struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Confidence int    `json:"confidence"`
	HasAnswer  bool   `json:"has_answer"`
}

// CategoryScore is one zero-shot classification result.
type CategoryScore struct {
	Category   string  `json:"category"`
	Score      int     `json:"score"`
	Confidence float64 `json:"confidence"`
}

// ConnectionStatus reports the outcome of an inference endpoint probe.
type ConnectionStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
