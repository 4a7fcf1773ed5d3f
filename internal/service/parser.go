package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gradecraft/gradecraft-api/internal/models"
)

// ParseFailureNotice replaces the feedback field when parsing blows up
// entirely and the evaluation needs a human pass.
const ParseFailureNotice = "Unable to parse detailed evaluation. Please review manually."

var (
	scoreToken     = regexp.MustCompile(`(\w+):\s*(\d+)/(\d+)`)
	overallPattern = regexp.MustCompile(`OVERALL:\s*(\d+)/(\d+)\s*\((\d+)%\)`)
	gradePattern   = regexp.MustCompile(`GRADE:\s*([A-F][+-]?)`)
	bulletBoundary = regexp.MustCompile(`[-•\n]`)
)

// ParseEvaluation recovers a structured evaluation from free-form generated
// text. Every field is extracted independently, so one malformed section
// never loses the rest; the function always returns a usable record.
//
// Scores are paired with rubric criteria by position. An OVERALL line in the
// reply is trusted verbatim, even when it disagrees with the per-criterion
// sum; the stated percentage then wins over the recomputed one.
func ParseEvaluation(generatedText string, assignment models.Assignment) (eval models.Evaluation) {
	eval = models.Evaluation{
		CriteriaScores:      []models.CriterionScore{},
		Grade:               "F",
		Strengths:           []string{},
		Improvements:        []string{},
		TotalPossiblePoints: assignment.TotalPoints,
	}

	defer func() {
		if r := recover(); r != nil {
			eval.Feedback = ParseFailureNotice
		}
	}()

	if section, ok := sectionBetween(generatedText, "SCORES:", "OVERALL:"); ok {
		for i, match := range scoreToken.FindAllStringSubmatch(section, -1) {
			earned, _ := strconv.Atoi(match[2])
			possible, _ := strconv.Atoi(match[3])

			name := fmt.Sprintf("Criterion %d", i+1)
			if i < len(assignment.Rubric) {
				name = assignment.Rubric[i].Name
			}

			percentage := 0
			if possible > 0 {
				percentage = roundPercent(earned, possible)
			}

			eval.CriteriaScores = append(eval.CriteriaScores, models.CriterionScore{
				Criterion:  name,
				Earned:     earned,
				Possible:   possible,
				Percentage: percentage,
			})
		}
	}

	if match := overallPattern.FindStringSubmatch(generatedText); match != nil {
		eval.OverallScore, _ = strconv.Atoi(match[1])
		eval.Percentage, _ = strconv.Atoi(match[3])
	} else {
		totalEarned := 0
		for _, score := range eval.CriteriaScores {
			totalEarned += score.Earned
		}
		eval.OverallScore = totalEarned
		if assignment.TotalPoints > 0 {
			eval.Percentage = roundPercent(totalEarned, assignment.TotalPoints)
		}
	}

	if match := gradePattern.FindStringSubmatch(generatedText); match != nil {
		eval.Grade = match[1]
	} else {
		eval.Grade = LetterGrade(eval.Percentage)
	}

	if section, ok := sectionBetween(generatedText, "FEEDBACK:", "STRENGTHS:"); ok {
		eval.Feedback = strings.TrimSpace(section)
	}
	if section, ok := sectionBetween(generatedText, "STRENGTHS:", "IMPROVEMENTS:"); ok {
		eval.Strengths = splitListItems(section)
	}
	if section, ok := sectionBetween(generatedText, "IMPROVEMENTS:"); ok {
		eval.Improvements = splitListItems(section)
	}

	return eval
}

// sectionBetween slices the text after the first occurrence of start up to
// the earliest following end marker, or to the end of the text when no end
// marker appears.
func sectionBetween(text, start string, ends ...string) (string, bool) {
	from := strings.Index(text, start)
	if from < 0 {
		return "", false
	}
	section := text[from+len(start):]

	cut := len(section)
	for _, end := range ends {
		if at := strings.Index(section, end); at >= 0 && at < cut {
			cut = at
		}
	}
	return section[:cut], true
}

// splitListItems breaks a section on line breaks and bullet characters,
// dropping empty fragments.
func splitListItems(section string) []string {
	items := []string{}
	for _, fragment := range bulletBoundary.Split(section, -1) {
		fragment = strings.TrimSpace(fragment)
		if fragment != "" {
			items = append(items, fragment)
		}
	}
	return items
}

func roundPercent(earned, possible int) int {
	return int(math.Round(float64(earned) / float64(possible) * 100))
}
