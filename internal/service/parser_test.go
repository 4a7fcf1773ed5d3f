package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gradecraft/gradecraft-api/internal/models"
)

func twoCriteriaAssignment() models.Assignment {
	return models.Assignment{
		TotalPoints: 20,
		Rubric: []models.RubricCriterion{
			{Name: "clarity", Points: 10},
			{Name: "depth", Points: 10},
		},
	}
}

func TestParseEvaluationWellFormedReply(t *testing.T) {
	reply := "SCORES: clarity: 8/10 depth: 7/10 OVERALL: 15/20 (75%) GRADE: C " +
		"FEEDBACK: Good effort. STRENGTHS: Clear writing IMPROVEMENTS: Add more detail"

	eval := ParseEvaluation(reply, twoCriteriaAssignment())

	require.Equal(t, []models.CriterionScore{
		{Criterion: "clarity", Earned: 8, Possible: 10, Percentage: 80},
		{Criterion: "depth", Earned: 7, Possible: 10, Percentage: 70},
	}, eval.CriteriaScores)
	require.Equal(t, 15, eval.OverallScore)
	require.Equal(t, 75, eval.Percentage)
	require.Equal(t, 20, eval.TotalPossiblePoints)
	require.Equal(t, "C", eval.Grade)
	require.Equal(t, "Good effort.", eval.Feedback)
	require.Equal(t, []string{"Clear writing"}, eval.Strengths)
	require.Equal(t, []string{"Add more detail"}, eval.Improvements)
}

func TestParseEvaluationMissingOverall(t *testing.T) {
	reply := "SCORES: clarity: 8/10 depth: 7/10\nGRADE: B\nFEEDBACK: Solid."

	eval := ParseEvaluation(reply, twoCriteriaAssignment())

	require.Equal(t, 15, eval.OverallScore)
	require.Equal(t, 75, eval.Percentage)
	require.Equal(t, "B", eval.Grade)
}

func TestParseEvaluationGradeFallback(t *testing.T) {
	reply := "SCORES: clarity: 9/10 depth: 9/10"

	eval := ParseEvaluation(reply, twoCriteriaAssignment())

	require.Equal(t, 18, eval.OverallScore)
	require.Equal(t, 90, eval.Percentage)
	require.Equal(t, "A-", eval.Grade)
}

func TestParseEvaluationNoMarkers(t *testing.T) {
	eval := ParseEvaluation("The model rambled about something unrelated.", twoCriteriaAssignment())

	require.Empty(t, eval.CriteriaScores)
	require.Zero(t, eval.OverallScore)
	require.Zero(t, eval.Percentage)
	require.Equal(t, "F", eval.Grade)
	require.Empty(t, eval.Feedback)
	require.Empty(t, eval.Strengths)
	require.Empty(t, eval.Improvements)
}

func TestParseEvaluationEmptyText(t *testing.T) {
	eval := ParseEvaluation("", twoCriteriaAssignment())

	require.Equal(t, "F", eval.Grade)
	require.Zero(t, eval.OverallScore)
	require.Equal(t, 20, eval.TotalPossiblePoints)
}

func TestParseEvaluationSyntheticCriterionLabels(t *testing.T) {
	assignment := models.Assignment{
		TotalPoints: 30,
		Rubric:      []models.RubricCriterion{{Name: "clarity", Points: 10}},
	}
	reply := "SCORES: clarity: 8/10 depth: 7/10 style: 6/10"

	eval := ParseEvaluation(reply, assignment)

	require.Len(t, eval.CriteriaScores, 3)
	require.Equal(t, "clarity", eval.CriteriaScores[0].Criterion)
	require.Equal(t, "Criterion 2", eval.CriteriaScores[1].Criterion)
	require.Equal(t, "Criterion 3", eval.CriteriaScores[2].Criterion)
	require.Equal(t, 21, eval.OverallScore)
	require.Equal(t, 70, eval.Percentage)
}

func TestParseEvaluationBulletLists(t *testing.T) {
	reply := "STRENGTHS:\n- Clear thesis\n• Good sources\nIMPROVEMENTS:\n- Tighten the conclusion\n\n- Cite page numbers"

	eval := ParseEvaluation(reply, twoCriteriaAssignment())

	require.Equal(t, []string{"Clear thesis", "Good sources"}, eval.Strengths)
	require.Equal(t, []string{"Tighten the conclusion", "Cite page numbers"}, eval.Improvements)
}

func TestParseEvaluationTrustsStatedOverall(t *testing.T) {
	// The literal OVERALL line wins even when it disagrees with the
	// per-criterion sum.
	reply := "SCORES: clarity: 5/10 depth: 5/10 OVERALL: 18/20 (90%)"

	eval := ParseEvaluation(reply, twoCriteriaAssignment())

	require.Equal(t, 18, eval.OverallScore)
	require.Equal(t, 90, eval.Percentage)
	require.Equal(t, "A-", eval.Grade)
}

func TestSectionBetween(t *testing.T) {
	text := "FEEDBACK: middle STRENGTHS: tail"

	section, ok := sectionBetween(text, "FEEDBACK:", "STRENGTHS:")
	require.True(t, ok)
	require.Equal(t, " middle ", section)

	section, ok = sectionBetween(text, "STRENGTHS:")
	require.True(t, ok)
	require.Equal(t, " tail", section)

	_, ok = sectionBetween(text, "IMPROVEMENTS:")
	require.False(t, ok)
}
