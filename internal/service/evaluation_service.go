package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gradecraft/gradecraft-api/internal/models"
)

// InferenceClient is the transport used to reach named remote models.
type InferenceClient interface {
	Request(ctx context.Context, model string, inputs any, parameters map[string]any, useCache bool) (json.RawMessage, error)
}

// ModelSet names the remote model used for each capability.
type ModelSet struct {
	TextGeneration     string
	SentimentAnalysis  string
	TextSummarization  string
	QuestionAnswering  string
	TextClassification string
}

// DefaultModelSet returns the hosted models used when none are configured.
func DefaultModelSet() ModelSet {
	return ModelSet{
		TextGeneration:     "microsoft/DialoGPT-medium",
		SentimentAnalysis:  "cardiffnlp/twitter-roberta-base-sentiment-latest",
		TextSummarization:  "facebook/bart-large-cnn",
		QuestionAnswering:  "deepset/roberta-base-squad2",
		TextClassification: "facebook/bart-large-mnli",
	}
}

// sentimentInputLimit bounds how much of the submission is sent for
// sentiment analysis.
const sentimentInputLimit = 500

const connectionProbe = "This is a test message."

// EvaluationService grades submissions by delegating judgment to a remote
// model and converting its free-form reply into a structured record.
type EvaluationService interface {
	Evaluate(ctx context.Context, assignment models.Assignment, submission models.Submission) (models.Evaluation, error)
	TestConnection(ctx context.Context) models.ConnectionStatus
	Summarize(ctx context.Context, text string, maxLength int) string
	AnswerQuestions(ctx context.Context, questions []string, text string) []models.QuestionAnswer
	Classify(ctx context.Context, text string, categories []string) []models.CategoryScore
}

type evaluationService struct {
	client InferenceClient
	models ModelSet
	logger zerolog.Logger
	now    func() time.Time
}

// NewEvaluationService constructs the evaluation service.
func NewEvaluationService(client InferenceClient, modelSet ModelSet, logger zerolog.Logger) EvaluationService {
	if modelSet == (ModelSet{}) {
		modelSet = DefaultModelSet()
	}

	return &evaluationService{
		client: client,
		models: modelSet,
		logger: logger.With().Str("component", "evaluation_service").Logger(),
		now:    time.Now,
	}
}

func generationParameters() map[string]any {
	return map[string]any{
		"max_length":  500,
		"temperature": 0.7,
		"do_sample":   true,
		"top_p":       0.9,
	}
}

// Evaluate runs the full grading pipeline: prompt, generation, parse,
// sentiment, metrics, provenance. The generation call is single shot with no
// retry and its failure propagates; sentiment and metrics never block an
// evaluation.
func (s *evaluationService) Evaluate(ctx context.Context, assignment models.Assignment, submission models.Submission) (models.Evaluation, error) {
	tracer := otel.Tracer("github.com/gradecraft/gradecraft-api/internal/service/evaluation")
	ctx, span := tracer.Start(ctx, "evaluation.evaluate", trace.WithAttributes(
		attribute.String("assignment_id", assignment.ID),
		attribute.String("submission_id", submission.ID),
	))
	defer span.End()

	prompt := BuildEvaluationPrompt(assignment, submission)

	raw, err := s.client.Request(ctx, s.models.TextGeneration, prompt, generationParameters(), true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation_failed")
		return models.Evaluation{}, fmt.Errorf("failed to evaluate submission: %w", err)
	}

	evaluation := ParseEvaluation(firstGeneratedText(raw), assignment)
	evaluation.Sentiment = s.analyzeSentiment(ctx, submission.SubmissionText)
	evaluation.Metrics = CalculateMetrics(assignment, submission)
	evaluation.EvaluatedAt = s.now()
	evaluation.EvaluatedBy = models.EvaluatedByAI

	span.SetAttributes(
		attribute.Int("evaluation.score", evaluation.OverallScore),
		attribute.String("evaluation.grade", evaluation.Grade),
	)

	return evaluation, nil
}

// firstGeneratedText pulls the first generation out of the raw endpoint
// response, tolerating unexpected shapes by returning an empty string.
func firstGeneratedText(raw json.RawMessage) string {
	var generations []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &generations); err != nil || len(generations) == 0 {
		return ""
	}
	return generations[0].GeneratedText
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// analyzeSentiment classifies the submission tone. Sentiment is advisory:
// any failure degrades to the neutral default instead of propagating.
func (s *evaluationService) analyzeSentiment(ctx context.Context, text string) models.Sentiment {
	raw, err := s.client.Request(ctx, s.models.SentimentAnalysis, truncateRunes(text, sentimentInputLimit), nil, true)
	if err != nil {
		s.logger.Warn().Err(err).Msg("sentiment analysis failed, using neutral default")
		return models.NeutralSentiment()
	}

	first, ok := firstLabelScore(raw)
	if !ok {
		return models.NeutralSentiment()
	}

	return models.Sentiment{
		Label:      first.Label,
		Score:      int(math.Round(first.Score * 100)),
		Confidence: first.Score,
	}
}

// firstLabelScore accepts both the flat and the nested array shapes the
// sentiment endpoint is known to return.
func firstLabelScore(raw json.RawMessage) (labelScore, bool) {
	var flat []labelScore
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 && flat[0].Label != "" {
		return flat[0], true
	}

	var nested [][]labelScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0][0], true
	}

	return labelScore{}, false
}

// TestConnection fires one uncached sentiment call to verify the endpoint
// and the configured key.
func (s *evaluationService) TestConnection(ctx context.Context) models.ConnectionStatus {
	_, err := s.client.Request(ctx, s.models.SentimentAnalysis, connectionProbe, nil, false)
	if err != nil {
		return models.ConnectionStatus{Success: false, Message: err.Error()}
	}
	return models.ConnectionStatus{Success: true, Message: "API connection successful"}
}

// Summarize condenses long text through the summarization model. It is best
// effort: on any failure the text is truncated instead.
func (s *evaluationService) Summarize(ctx context.Context, text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = 100
	}
	if utf8Len(text) <= maxLength {
		return text
	}

	minLength := maxLength / 2
	if minLength > 30 {
		minLength = 30
	}

	raw, err := s.client.Request(ctx, s.models.TextSummarization, text, map[string]any{
		"max_length": maxLength,
		"min_length": minLength,
		"do_sample":  false,
	}, true)
	if err != nil {
		s.logger.Warn().Err(err).Msg("summarization failed, truncating instead")
		return truncateRunes(text, maxLength) + "..."
	}

	var summaries []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := json.Unmarshal(raw, &summaries); err != nil || len(summaries) == 0 || summaries[0].SummaryText == "" {
		return truncateRunes(text, maxLength) + "..."
	}
	return summaries[0].SummaryText
}

// AnswerQuestions probes the submission with each question through the QA
// model. Failures degrade per question rather than aborting the batch.
func (s *evaluationService) AnswerQuestions(ctx context.Context, questions []string, text string) []models.QuestionAnswer {
	results := make([]models.QuestionAnswer, 0, len(questions))
	for _, question := range questions {
		raw, err := s.client.Request(ctx, s.models.QuestionAnswering, map[string]any{
			"question": question,
			"context":  text,
		}, nil, true)
		if err != nil {
			s.logger.Warn().Err(err).Str("question", question).Msg("question answering failed")
			results = append(results, models.QuestionAnswer{
				Question: question,
				Answer:   "Unable to determine",
			})
			continue
		}

		var answer struct {
			Answer string  `json:"answer"`
			Score  float64 `json:"score"`
		}
		if err := json.Unmarshal(raw, &answer); err != nil {
			results = append(results, models.QuestionAnswer{
				Question: question,
				Answer:   "Unable to determine",
			})
			continue
		}

		results = append(results, models.QuestionAnswer{
			Question:   question,
			Answer:     answer.Answer,
			Confidence: int(math.Round(answer.Score * 100)),
			HasAnswer:  answer.Score > 0.1,
		})
	}
	return results
}

// Classify scores the text against candidate categories with the zero-shot
// classification model. On failure every category scores zero.
func (s *evaluationService) Classify(ctx context.Context, text string, categories []string) []models.CategoryScore {
	zeroes := func() []models.CategoryScore {
		results := make([]models.CategoryScore, 0, len(categories))
		for _, category := range categories {
			results = append(results, models.CategoryScore{Category: category})
		}
		return results
	}

	raw, err := s.client.Request(ctx, s.models.TextClassification, map[string]any{
		"sequence":         text,
		"candidate_labels": strings.Join(categories, ", "),
	}, nil, true)
	if err != nil {
		s.logger.Warn().Err(err).Msg("classification failed")
		return zeroes()
	}

	var classified struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	}
	if err := json.Unmarshal(raw, &classified); err != nil || len(classified.Labels) == 0 {
		return zeroes()
	}

	results := make([]models.CategoryScore, 0, len(classified.Labels))
	for i, label := range classified.Labels {
		score := 0.0
		if i < len(classified.Scores) {
			score = classified.Scores[i]
		}
		results = append(results, models.CategoryScore{
			Category:   label,
			Score:      int(math.Round(score * 100)),
			Confidence: score,
		})
	}
	return results
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func utf8Len(text string) int {
	return len([]rune(text))
}
