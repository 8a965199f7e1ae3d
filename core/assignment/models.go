package assignment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

// Assignment types
const (
	TypeQuiz     = "quiz"
	TypeHomework = "homework"
	TypeProject  = "project"
)

// Submission statuses. Only "submitted" and "graded" are ever persisted;
// "not_started" is synthesized when a student has no submission row.
const (
	StatusNotStarted = "not_started"
	StatusSubmitted  = "submitted"
	StatusGraded     = "graded"
)

const DefaultPoints = 100

type (
	Attachment struct {
		Name string `json:"name"`
		URL  string `json:"url"`
		Type string `json:"type,omitempty"` // 'pdf', 'link', etc.
	}

	// Assignment belongs to exactly one Course and one teacher, both
	// referenced by value. It is immutable once created.
	Assignment struct {
		ID          string       `json:"id"`
		CourseID    string       `json:"course_id"`
		TeacherID   string       `json:"teacher_id"`
		Title       string       `json:"title"`
		Description string       `json:"description,omitempty"`
		DueAt       time.Time    `json:"due_at"`
		Type        string       `json:"type"`
		Points      int          `json:"points"`
		Attachments []Attachment `json:"attachments,omitempty"`
		// AssignedTo targets specific students; empty implies the whole roster.
		AssignedTo []string  `json:"assigned_to,omitempty"`
		CreatedAt  time.Time `json:"created_at"` // UTC
	}

	Submission struct {
		ID           string       `json:"id"`
		AssignmentID string       `json:"assignment_id"`
		StudentID    string       `json:"student_id"`
		Content      string       `json:"content,omitempty"`
		Attachments  []Attachment `json:"attachments,omitempty"`
		Status       string       `json:"status"`
		Grade        null.Int     `json:"grade"`
		Feedback     null.String  `json:"feedback"`
		SubmittedAt  time.Time    `json:"submitted_at"` // UTC
	}

	// StudentAssignment is an Assignment joined with the requesting
	// student's submission, if any.
	StudentAssignment struct {
		Assignment
		Status     string      `json:"status"`
		Submission *Submission `json:"submission"`
	}

	// TeacherAssignment is an Assignment annotated with submission counts.
	TeacherAssignment struct {
		Assignment
		SubmittedCount int `json:"submitted_count"`
		GradedCount    int `json:"graded_count"`
		TotalStudents  int `json:"total_students"`
	}
)

func (a *Assignment) IsPastDue(now time.Time) bool {
	return now.After(a.DueAt)
}

func (s *Submission) IsGraded() bool { return s.Status == StatusGraded }

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	CourseID    string       `json:"course_id" validate:"required"`
	TeacherID   string       `json:"teacher_id" validate:"required"`
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description"`
	DueAt       time.Time    `json:"due_at" validate:"required"`
	Type        string       `json:"type" validate:"omitempty,oneof=quiz homework project"`
	Points      int          `json:"points" validate:"omitempty,min=1"`
	Attachments []Attachment `json:"attachments"`
	AssignedTo  []string     `json:"assigned_to"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	if na.Type == "" {
		na.Type = TypeHomework
	}
	if na.Points == 0 {
		na.Points = DefaultPoints
	}
	return validate.Struct(na)
}

// NewSubmission contains information needed to submit an assignment.
type NewSubmission struct {
	AssignmentID string       `json:"assignment_id" validate:"required"`
	StudentID    string       `json:"student_id" validate:"required"`
	Content      string       `json:"content"`
	Attachments  []Attachment `json:"attachments"`
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.Content = core.CleanString(ns.Content)
	return validate.Struct(ns)
}

// GradeSubmission contains information needed to grade a submission.
// Grades above the assignment's point value are allowed (bonus points);
// negative grades are not.
type GradeSubmission struct {
	SubmissionID string `json:"submission_id" validate:"required"`
	Grade        int    `json:"grade" validate:"min=0"`
	Feedback     string `json:"feedback"`
}

func (gs *GradeSubmission) Validate(validate *validator.Validate) error {
	gs.Feedback = core.CleanString(gs.Feedback)
	return validate.Struct(gs)
}
