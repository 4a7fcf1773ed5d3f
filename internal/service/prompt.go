package service

import (
	"fmt"
	"strings"

	"github.com/gradecraft/gradecraft-api/internal/models"
)

// BuildEvaluationPrompt renders the fixed evaluation prompt for one
// assignment and submission. The instruction block names the six labeled
// sections the response parser looks for, and the prompt ends with a
// terminal marker so the model continuation contains only the answer.
func BuildEvaluationPrompt(assignment models.Assignment, submission models.Submission) string {
	var b strings.Builder

	b.WriteString("Assignment Evaluation Task:\n\n")

	b.WriteString("ASSIGNMENT DETAILS:\n")
	fmt.Fprintf(&b, "Title: %s\n", assignment.Title)
	fmt.Fprintf(&b, "Subject: %s\n", assignment.Subject)
	fmt.Fprintf(&b, "Description: %s\n", assignment.Description)
	fmt.Fprintf(&b, "Instructions: %s\n", assignment.Instructions)
	fmt.Fprintf(&b, "Total Points: %d\n\n", assignment.TotalPoints)

	b.WriteString("RUBRIC CRITERIA:\n")
	for _, criterion := range assignment.Rubric {
		fmt.Fprintf(&b, "- %s (%d points): %s\n", criterion.Name, criterion.Points, criterion.Description)
	}

	b.WriteString("\nSTUDENT SUBMISSION:\n")
	fmt.Fprintf(&b, "Student: %s (ID: %s)\n", submission.StudentName, submission.StudentID)
	fmt.Fprintf(&b, "Submission Text: %s\n\n", submission.SubmissionText)

	b.WriteString("EVALUATION REQUIREMENTS:\n")
	b.WriteString("1. Evaluate the submission against each rubric criterion\n")
	b.WriteString("2. Provide a score for each criterion (0 to maximum points)\n")
	b.WriteString("3. Calculate overall score and percentage\n")
	b.WriteString("4. Assign a letter grade (A, B, C, D, F)\n")
	b.WriteString("5. Provide specific feedback for improvement\n")
	b.WriteString("6. Highlight strengths and areas for improvement\n\n")

	b.WriteString("Please provide a detailed evaluation following this format:\n")
	b.WriteString("SCORES: [criterion1: X/Y points, criterion2: X/Y points, ...]\n")
	fmt.Fprintf(&b, "OVERALL: X/%d points (X%%)\n", assignment.TotalPoints)
	b.WriteString("GRADE: [Letter Grade]\n")
	b.WriteString("FEEDBACK: [Detailed feedback]\n")
	b.WriteString("STRENGTHS: [What the student did well]\n")
	b.WriteString("IMPROVEMENTS: [Areas for improvement]\n\n")

	b.WriteString("Evaluation:")

	return b.String()
}
