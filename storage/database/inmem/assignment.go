package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/assignment"
)

type assignmentRepository struct {
	asg *assignmentTable
	sub *submissionTable
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{asg: db.assignment, sub: db.submission}
}

// queryAssignments returns all assignments ordered by due date ascending.
func (repo *assignmentRepository) queryAssignments() []assignment.Assignment {
	assignments := make([]assignment.Assignment, 0, len(repo.asg.table))
	for _, asg := range repo.asg.table {
		assignments = append(assignments, *asg)
	}
	sort.Slice(assignments, func(i, j int) bool {
		if assignments[i].DueAt.Equal(assignments[j].DueAt) {
			return assignments[i].ID < assignments[j].ID
		}
		return assignments[i].DueAt.Before(assignments[j].DueAt)
	})
	return assignments
}

func (repo *assignmentRepository) querySubmissions() []assignment.Submission {
	submissions := make([]assignment.Submission, 0, len(repo.sub.table))
	for _, sub := range repo.sub.table {
		submissions = append(submissions, *sub)
	}
	sort.Slice(submissions, func(i, j int) bool {
		if submissions[i].SubmittedAt.Equal(submissions[j].SubmittedAt) {
			return submissions[i].ID < submissions[j].ID
		}
		return submissions[i].SubmittedAt.Before(submissions[j].SubmittedAt)
	})
	return submissions
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	repo.asg.Lock()
	defer repo.asg.Unlock()
	repo.asg.table[asg.ID] = &asg
	return asg, nil
}

func (repo *assignmentRepository) GetAssignmentByID(_ context.Context, id string) (assignment.Assignment, error) {
	repo.asg.RLock()
	defer repo.asg.RUnlock()

	if asg, ok := repo.asg.table[id]; ok {
		return *asg, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) QueryAssignmentsByCourse(_ context.Context, courseID string) ([]assignment.Assignment, error) {
	repo.asg.RLock()
	defer repo.asg.RUnlock()

	var assignments []assignment.Assignment
	for _, asg := range repo.queryAssignments() {
		if asg.CourseID == courseID {
			assignments = append(assignments, asg)
		}
	}
	return assignments, nil
}

func (repo *assignmentRepository) QueryAssignmentsByCourseIDs(_ context.Context, courseIDs []string) ([]assignment.Assignment, error) {
	repo.asg.RLock()
	defer repo.asg.RUnlock()

	wanted := make(map[string]struct{}, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = struct{}{}
	}
	var assignments []assignment.Assignment
	for _, asg := range repo.queryAssignments() {
		if _, ok := wanted[asg.CourseID]; ok {
			assignments = append(assignments, asg)
		}
	}
	return assignments, nil
}

func (repo *assignmentRepository) QueryAssignmentsByTeacher(_ context.Context, teacherID string) ([]assignment.Assignment, error) {
	repo.asg.RLock()
	defer repo.asg.RUnlock()

	var assignments []assignment.Assignment
	for _, asg := range repo.queryAssignments() {
		if asg.TeacherID == teacherID {
			assignments = append(assignments, asg)
		}
	}
	return assignments, nil
}

func (repo *assignmentRepository) CreateSubmission(_ context.Context, sub assignment.Submission) (assignment.Submission, error) {
	repo.sub.Lock()
	defer repo.sub.Unlock()

	for _, s := range repo.sub.table {
		if s.AssignmentID == sub.AssignmentID && s.StudentID == sub.StudentID {
			return assignment.Submission{}, assignment.ErrAlreadySubmitted
		}
	}
	repo.sub.table[sub.ID] = &sub
	return sub, nil
}

func (repo *assignmentRepository) GetSubmissionByID(_ context.Context, id string) (assignment.Submission, error) {
	repo.sub.RLock()
	defer repo.sub.RUnlock()

	if sub, ok := repo.sub.table[id]; ok {
		return *sub, nil
	}
	return assignment.Submission{}, assignment.ErrSubmissionNotFound
}

func (repo *assignmentRepository) QuerySubmissionsByAssignment(_ context.Context, assignmentID string) ([]assignment.Submission, error) {
	repo.sub.RLock()
	defer repo.sub.RUnlock()

	var submissions []assignment.Submission
	for _, sub := range repo.querySubmissions() {
		if sub.AssignmentID == assignmentID {
			submissions = append(submissions, sub)
		}
	}
	return submissions, nil
}

func (repo *assignmentRepository) QuerySubmissionsByAssignmentIDs(_ context.Context, assignmentIDs []string) ([]assignment.Submission, error) {
	repo.sub.RLock()
	defer repo.sub.RUnlock()

	wanted := make(map[string]struct{}, len(assignmentIDs))
	for _, id := range assignmentIDs {
		wanted[id] = struct{}{}
	}
	var submissions []assignment.Submission
	for _, sub := range repo.querySubmissions() {
		if _, ok := wanted[sub.AssignmentID]; ok {
			submissions = append(submissions, sub)
		}
	}
	return submissions, nil
}

func (repo *assignmentRepository) QuerySubmissionsByStudent(_ context.Context, studentID string) ([]assignment.Submission, error) {
	repo.sub.RLock()
	defer repo.sub.RUnlock()

	var submissions []assignment.Submission
	for _, sub := range repo.querySubmissions() {
		if sub.StudentID == studentID {
			submissions = append(submissions, sub)
		}
	}
	return submissions, nil
}

func (repo *assignmentRepository) GradeSubmission(_ context.Context, id string, grade int, feedback string) (assignment.Submission, error) {
	repo.sub.Lock()
	defer repo.sub.Unlock()

	sub, ok := repo.sub.table[id]
	if !ok {
		return assignment.Submission{}, assignment.ErrSubmissionNotFound
	}
	sub.Grade = null.IntFrom(grade)
	sub.Feedback = null.StringFrom(feedback)
	sub.Status = assignment.StatusGraded
	return *sub, nil
}
