package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/assignment"
)

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *sqlx.DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

type (
	assignmentRow struct {
		ID          string    `db:"id"`
		CourseID    string    `db:"course_id"`
		TeacherID   string    `db:"teacher_id"`
		Title       string    `db:"title"`
		Description string    `db:"description"`
		DueAt       time.Time `db:"due_at"`
		Type        string    `db:"type"`
		Points      int       `db:"points"`
		Attachments []byte    `db:"attachments"`
		AssignedTo  []byte    `db:"assigned_to"`
		CreatedAt   time.Time `db:"created_at"`
	}

	submissionRow struct {
		ID           string      `db:"id"`
		AssignmentID string      `db:"assignment_id"`
		StudentID    string      `db:"student_id"`
		Content      string      `db:"content"`
		Attachments  []byte      `db:"attachments"`
		Status       string      `db:"status"`
		Grade        null.Int    `db:"grade"`
		Feedback     null.String `db:"feedback"`
		SubmittedAt  time.Time   `db:"submitted_at"`
	}
)

func (r assignmentRow) toAssignment() (assignment.Assignment, error) {
	asg := assignment.Assignment{
		ID:          r.ID,
		CourseID:    r.CourseID,
		TeacherID:   r.TeacherID,
		Title:       r.Title,
		Description: r.Description,
		DueAt:       r.DueAt,
		Type:        r.Type,
		Points:      r.Points,
		CreatedAt:   r.CreatedAt,
	}
	if err := fromJSON(r.Attachments, &asg.Attachments); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "decoding attachments")
	}
	if err := fromJSON(r.AssignedTo, &asg.AssignedTo); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "decoding assigned_to")
	}
	return asg, nil
}

func toAssignments(rows []assignmentRow) ([]assignment.Assignment, error) {
	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		asg, err := row.toAssignment()
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, asg)
	}
	return assignments, nil
}

func (r submissionRow) toSubmission() (assignment.Submission, error) {
	sub := assignment.Submission{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		StudentID:    r.StudentID,
		Content:      r.Content,
		Status:       r.Status,
		Grade:        r.Grade,
		Feedback:     r.Feedback,
		SubmittedAt:  r.SubmittedAt,
	}
	if err := fromJSON(r.Attachments, &sub.Attachments); err != nil {
		return assignment.Submission{}, errors.Wrap(err, "decoding attachments")
	}
	return sub, nil
}

func toSubmissions(rows []submissionRow) ([]assignment.Submission, error) {
	submissions := make([]assignment.Submission, 0, len(rows))
	for _, row := range rows {
		sub, err := row.toSubmission()
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, sub)
	}
	return submissions, nil
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO assignment (id, course_id, teacher_id, title, description, due_at, type, points, attachments, assigned_to, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		asg.ID, asg.CourseID, asg.TeacherID, asg.Title, asg.Description, asg.DueAt, asg.Type,
		asg.Points, mustJSON(asg.Attachments), mustJSON(asg.AssignedTo), asg.CreatedAt,
	)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "creating assignment")
	}
	return asg, nil
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	var row assignmentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM assignment WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "getting assignment")
	}
	return row.toAssignment()
}

func (repo *assignmentRepository) QueryAssignmentsByCourse(ctx context.Context, courseID string) ([]assignment.Assignment, error) {
	var rows []assignmentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM assignment WHERE course_id = $1 ORDER BY due_at`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments by course")
	}
	return toAssignments(rows)
}

func (repo *assignmentRepository) QueryAssignmentsByCourseIDs(ctx context.Context, courseIDs []string) ([]assignment.Assignment, error) {
	if len(courseIDs) == 0 {
		return []assignment.Assignment{}, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM assignment WHERE course_id IN (?) ORDER BY due_at`, courseIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []assignmentRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments by courses")
	}
	return toAssignments(rows)
}

func (repo *assignmentRepository) QueryAssignmentsByTeacher(ctx context.Context, teacherID string) ([]assignment.Assignment, error) {
	var rows []assignmentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM assignment WHERE teacher_id = $1 ORDER BY due_at`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assignments by teacher")
	}
	return toAssignments(rows)
}

func (repo *assignmentRepository) CreateSubmission(ctx context.Context, sub assignment.Submission) (assignment.Submission, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO submission (id, assignment_id, student_id, content, attachments, status, grade, feedback, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sub.ID, sub.AssignmentID, sub.StudentID, sub.Content, mustJSON(sub.Attachments),
		sub.Status, sub.Grade, sub.Feedback, sub.SubmittedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return assignment.Submission{}, assignment.ErrAlreadySubmitted
		}
		return assignment.Submission{}, errors.Wrap(err, "creating submission")
	}
	return sub, nil
}

func (repo *assignmentRepository) GetSubmissionByID(ctx context.Context, id string) (assignment.Submission, error) {
	var row submissionRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM submission WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return assignment.Submission{}, assignment.ErrSubmissionNotFound
		}
		return assignment.Submission{}, errors.Wrap(err, "getting submission")
	}
	return row.toSubmission()
}

func (repo *assignmentRepository) QuerySubmissionsByAssignment(ctx context.Context, assignmentID string) ([]assignment.Submission, error) {
	var rows []submissionRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM submission WHERE assignment_id = $1 ORDER BY submitted_at`, assignmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions by assignment")
	}
	return toSubmissions(rows)
}

func (repo *assignmentRepository) QuerySubmissionsByAssignmentIDs(ctx context.Context, assignmentIDs []string) ([]assignment.Submission, error) {
	if len(assignmentIDs) == 0 {
		return []assignment.Submission{}, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM submission WHERE assignment_id IN (?) ORDER BY submitted_at`, assignmentIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []submissionRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions by assignments")
	}
	return toSubmissions(rows)
}

func (repo *assignmentRepository) QuerySubmissionsByStudent(ctx context.Context, studentID string) ([]assignment.Submission, error) {
	var rows []submissionRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM submission WHERE student_id = $1 ORDER BY submitted_at`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions by student")
	}
	return toSubmissions(rows)
}

func (repo *assignmentRepository) GradeSubmission(ctx context.Context, id string, grade int, feedback string) (assignment.Submission, error) {
	var row submissionRow
	err := repo.db.GetContext(ctx, &row,
		`UPDATE submission SET grade = $2, feedback = $3, status = $4 WHERE id = $1 RETURNING *`,
		id, grade, feedback, assignment.StatusGraded)
	if err != nil {
		if err == sql.ErrNoRows {
			return assignment.Submission{}, assignment.ErrSubmissionNotFound
		}
		return assignment.Submission{}, errors.Wrap(err, "grading submission")
	}
	return row.toSubmission()
}
