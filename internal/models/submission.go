package models

// Submission represents a student's free-text answer to an assignment.
type Submission struct {
	ID             string `json:"id"`
	AssignmentID   string `json:"assignment_id"`
	StudentName    string `json:"student_name"`
	StudentID      string `json:"student_id"`
	SubmissionText string `json:"submission_text"`
}
