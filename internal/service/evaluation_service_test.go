package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gradecraft/gradecraft-api/internal/models"
)

type fakeInferenceCall struct {
	model      string
	inputs     any
	parameters map[string]any
	useCache   bool
}

type fakeInferenceClient struct {
	calls     []fakeInferenceCall
	responses map[string]json.RawMessage
	errs      map[string]error
}

func newFakeInferenceClient() *fakeInferenceClient {
	return &fakeInferenceClient{
		responses: map[string]json.RawMessage{},
		errs:      map[string]error{},
	}
}

func (f *fakeInferenceClient) Request(_ context.Context, model string, inputs any, parameters map[string]any, useCache bool) (json.RawMessage, error) {
	f.calls = append(f.calls, fakeInferenceCall{model: model, inputs: inputs, parameters: parameters, useCache: useCache})
	if err, ok := f.errs[model]; ok {
		return nil, err
	}
	if resp, ok := f.responses[model]; ok {
		return resp, nil
	}
	return json.RawMessage(`[]`), nil
}

func testModelSet() ModelSet {
	return ModelSet{
		TextGeneration:     "gen-model",
		SentimentAnalysis:  "sentiment-model",
		TextSummarization:  "summary-model",
		QuestionAnswering:  "qa-model",
		TextClassification: "classify-model",
	}
}

func testAssignment() models.Assignment {
	return models.Assignment{
		ID:          "a1",
		Title:       "Essay",
		TotalPoints: 20,
		Rubric: []models.RubricCriterion{
			{Name: "clarity", Points: 10},
			{Name: "depth", Points: 10},
		},
		Keywords: []string{"cat"},
	}
}

func testSubmission() models.Submission {
	return models.Submission{
		ID:             "s1",
		AssignmentID:   "a1",
		StudentName:    "Jane",
		StudentID:      "S-1",
		SubmissionText: "The cat sat on the mat. It was warm.",
	}
}

func TestEvaluateComposesEvaluation(t *testing.T) {
	client := newFakeInferenceClient()
	client.responses["gen-model"] = mustJSON(t, []map[string]string{
		{"generated_text": "SCORES: clarity: 8/10 depth: 7/10 OVERALL: 15/20 (75%) GRADE: C FEEDBACK: Good effort. STRENGTHS: Clear writing IMPROVEMENTS: Add more detail"},
	})
	client.responses["sentiment-model"] = mustJSON(t, []map[string]any{
		{"label": "POSITIVE", "score": 0.91},
	})

	svc := NewEvaluationService(client, testModelSet(), testLogger()).(*evaluationService)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	eval, err := svc.Evaluate(context.Background(), testAssignment(), testSubmission())
	require.NoError(t, err)

	require.Equal(t, 15, eval.OverallScore)
	require.Equal(t, 75, eval.Percentage)
	require.Equal(t, "C", eval.Grade)
	require.Equal(t, "POSITIVE", eval.Sentiment.Label)
	require.Equal(t, 91, eval.Sentiment.Score)
	require.InDelta(t, 0.91, eval.Sentiment.Confidence, 1e-9)
	require.Equal(t, 1, eval.Metrics.KeywordMatches)
	require.NotZero(t, eval.Metrics.WordCount)
	require.Equal(t, fixed, eval.EvaluatedAt)
	require.Equal(t, models.EvaluatedByAI, eval.EvaluatedBy)

	// Prompt goes to the generation model with the fixed sampling
	// parameters; sentiment runs afterwards.
	require.Len(t, client.calls, 2)
	require.Equal(t, "gen-model", client.calls[0].model)
	require.Equal(t, 500, client.calls[0].parameters["max_length"])
	require.Equal(t, 0.7, client.calls[0].parameters["temperature"])
	require.True(t, client.calls[0].useCache)
	require.Equal(t, "sentiment-model", client.calls[1].model)
}

func TestEvaluateGenerationErrorPropagates(t *testing.T) {
	client := newFakeInferenceClient()
	cause := errors.New("rate limit exceeded")
	client.errs["gen-model"] = cause

	svc := NewEvaluationService(client, testModelSet(), testLogger())

	_, err := svc.Evaluate(context.Background(), testAssignment(), testSubmission())
	require.Error(t, err)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "failed to evaluate submission")
	// No sentiment call once generation has failed.
	require.Len(t, client.calls, 1)
}

func TestEvaluateSentimentFailureDegradesToNeutral(t *testing.T) {
	client := newFakeInferenceClient()
	client.responses["gen-model"] = mustJSON(t, []map[string]string{{"generated_text": "GRADE: B"}})
	client.errs["sentiment-model"] = errors.New("boom")

	svc := NewEvaluationService(client, testModelSet(), testLogger())

	eval, err := svc.Evaluate(context.Background(), testAssignment(), testSubmission())
	require.NoError(t, err)
	require.Equal(t, models.NeutralSentiment(), eval.Sentiment)
	require.Equal(t, "B", eval.Grade)
}

func TestEvaluateUnexpectedGenerationShape(t *testing.T) {
	client := newFakeInferenceClient()
	client.responses["gen-model"] = json.RawMessage(`{"error":"unexpected"}`)
	client.responses["sentiment-model"] = mustJSON(t, []map[string]any{{"label": "NEGATIVE", "score": 0.6}})

	svc := NewEvaluationService(client, testModelSet(), testLogger())

	eval, err := svc.Evaluate(context.Background(), testAssignment(), testSubmission())
	require.NoError(t, err)
	require.Equal(t, "F", eval.Grade)
	require.Zero(t, eval.OverallScore)
}

func TestAnalyzeSentimentTruncatesInput(t *testing.T) {
	client := newFakeInferenceClient()
	client.responses["sentiment-model"] = mustJSON(t, []map[string]any{{"label": "POSITIVE", "score": 0.8}})

	svc := NewEvaluationService(client, testModelSet(), testLogger()).(*evaluationService)

	long := make([]byte, 0, 800)
	for i := 0; i < 800; i++ {
		long = append(long, 'x')
	}
	svc.analyzeSentiment(context.Background(), string(long))

	require.Len(t, client.calls, 1)
	sent, ok := client.calls[0].inputs.(string)
	require.True(t, ok)
	require.Len(t, sent, 500)
}

func TestAnalyzeSentimentNestedShape(t *testing.T) {
	client := newFakeInferenceClient()
	client.responses["sentiment-model"] = json.RawMessage(`[[{"label":"NEGATIVE","score":0.75}]]`)

	svc := NewEvaluationService(client, testModelSet(), testLogger()).(*evaluationService)

	sentiment := svc.analyzeSentiment(context.Background(), "some text")
	require.Equal(t, "NEGATIVE", sentiment.Label)
	require.Equal(t, 75, sentiment.Score)
}

func TestTestConnectionBypassesCache(t *testing.T) {
	client := newFakeInferenceClient()
	client.responses["sentiment-model"] = mustJSON(t, []map[string]any{{"label": "POSITIVE", "score": 0.9}})

	svc := NewEvaluationService(client, testModelSet(), testLogger())

	status := svc.TestConnection(context.Background())
	require.True(t, status.Success)
	require.Equal(t, "API connection successful", status.Message)
	require.Len(t, client.calls, 1)
	require.False(t, client.calls[0].useCache)
}

func TestTestConnectionFailure(t *testing.T) {
	client := newFakeInferenceClient()
	client.errs["sentiment-model"] = errors.New("invalid api key")

	svc := NewEvaluationService(client, testModelSet(), testLogger())

	status := svc.TestConnection(context.Background())
	require.False(t, status.Success)
	require.Contains(t, status.Message, "invalid api key")
}

func TestSummarizeShortTextReturnedAsIs(t *testing.T) {
	client := newFakeInferenceClient()
	svc := NewEvaluationService(client, testModelSet(), testLogger())

	summary := svc.Summarize(context.Background(), "short text", 100)
	require.Equal(t, "short text", summary)
	require.Empty(t, client.calls)
}

func TestSummarizeUsesModel(t *testing.T) {
	client := newFakeInferenceClient()
	client.responses["summary-model"] = mustJSON(t, []map[string]string{{"summary_text": "condensed"}})

	svc := NewEvaluationService(client, testModelSet(), testLogger())

	long := "word word word word word word word word word word word word word word word word word word word word word word word word word"
	summary := svc.Summarize(context.Background(), long, 50)
	require.Equal(t, "condensed", summary)
	require.Len(t, client.calls, 1)
	require.Equal(t, 50, client.calls[0].parameters["max_length"])
	require.Equal(t, 25, client.calls[0].parameters["min_length"])
}

func TestSummarizeFallsBackToTruncation(t *testing.T) {
	client := newFakeInferenceClient()
	client.errs["summary-model"] = errors.New("model is currently loading")

	svc := NewEvaluationService(client, testModelSet(), testLogger())

	long := "abcdefghij abcdefghij abcdefghij abcdefghij abcdefghij"
	summary := svc.Summarize(context.Background(), long, 20)
	require.Equal(t, long[:20]+"...", summary)
}

func TestAnswerQuestionsPerQuestionFallback(t *testing.T) {
	client := newFakeInferenceClient()
	client.responses["qa-model"] = json.RawMessage(`{"answer":"photosynthesis","score":0.82}`)

	svc := NewEvaluationService(client, testModelSet(), testLogger())

	results := svc.AnswerQuestions(context.Background(), []string{"How do plants make food?"}, "Plants use photosynthesis.")
	require.Len(t, results, 1)
	require.Equal(t, "photosynthesis", results[0].Answer)
	require.Equal(t, 82, results[0].Confidence)
	require.True(t, results[0].HasAnswer)

	client.errs["qa-model"] = errors.New("down")
	results = svc.AnswerQuestions(context.Background(), []string{"q1", "q2"}, "text")
	require.Len(t, results, 2)
	for _, result := range results {
		require.Equal(t, "Unable to determine", result.Answer)
		require.Zero(t, result.Confidence)
		require.False(t, result.HasAnswer)
	}
}

func TestAnswerQuestionsLowScore(t *testing.T) {
	client := newFakeInferenceClient()
	client.responses["qa-model"] = json.RawMessage(`{"answer":"maybe","score":0.05}`)

	svc := NewEvaluationService(client, testModelSet(), testLogger())

	results := svc.AnswerQuestions(context.Background(), []string{"q"}, "text")
	require.Len(t, results, 1)
	require.False(t, results[0].HasAnswer)
	require.Equal(t, 5, results[0].Confidence)
}

func TestClassifyMapsLabelsToScores(t *testing.T) {
	client := newFakeInferenceClient()
	client.responses["classify-model"] = json.RawMessage(`{"labels":["science","history"],"scores":[0.9,0.1]}`)

	svc := NewEvaluationService(client, testModelSet(), testLogger())

	results := svc.Classify(context.Background(), "the text", []string{"science", "history"})
	require.Equal(t, []models.CategoryScore{
		{Category: "science", Score: 90, Confidence: 0.9},
		{Category: "history", Score: 10, Confidence: 0.1},
	}, results)

	call := client.calls[0]
	inputs, ok := call.inputs.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "science, history", inputs["candidate_labels"])
}

func TestClassifyFailureYieldsZeroScores(t *testing.T) {
	client := newFakeInferenceClient()
	client.errs["classify-model"] = errors.New("down")

	svc := NewEvaluationService(client, testModelSet(), testLogger())

	results := svc.Classify(context.Background(), "text", []string{"a", "b"})
	require.Equal(t, []models.CategoryScore{
		{Category: "a"},
		{Category: "b"},
	}, results)
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
