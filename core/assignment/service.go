package assignment

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound           = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadySubmitted   = errors.New("assignment already submitted")
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		// Query* results are ordered by due date ascending.
		QueryAssignmentsByCourse(ctx context.Context, courseID string) ([]Assignment, error)
		QueryAssignmentsByCourseIDs(ctx context.Context, courseIDs []string) ([]Assignment, error)
		QueryAssignmentsByTeacher(ctx context.Context, teacherID string) ([]Assignment, error)

		// CreateSubmission persists a new submission. ErrAlreadySubmitted is
		// returned when one already exists for (AssignmentID, StudentID).
		CreateSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmissionByID(ctx context.Context, id string) (Submission, error)
		QuerySubmissionsByAssignment(ctx context.Context, assignmentID string) ([]Submission, error)
		QuerySubmissionsByAssignmentIDs(ctx context.Context, assignmentIDs []string) ([]Submission, error)
		QuerySubmissionsByStudent(ctx context.Context, studentID string) ([]Submission, error)
		// GradeSubmission sets grade+feedback and transitions to graded.
		GradeSubmission(ctx context.Context, id string, grade int, feedback string) (Submission, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, na NewAssignment) (Assignment, error)
		GetByID(ctx context.Context, id string) (Assignment, error)
		QueryByCourse(ctx context.Context, courseID string) ([]Assignment, error)
		QueryForStudent(ctx context.Context, studentID string) ([]StudentAssignment, error)
		QueryForTeacher(ctx context.Context, teacherID string) ([]TeacherAssignment, error)
		QuerySubmissions(ctx context.Context, assignmentID string) ([]Submission, error)
		Submit(ctx context.Context, ns NewSubmission) (Submission, error)
		Grade(ctx context.Context, gs GradeSubmission) (Submission, error)
	}

	service struct {
		repo       Repository
		courseRepo course.Repository
		userRepo   user.Repository
		mailSvc    core.EmailService
		logger     core.Logger
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(
	repo Repository,
	courseRepo course.Repository,
	userRepo user.Repository,
	mailSvc core.EmailService,
	logger core.Logger,
) ServiceInterface {
	return &service{
		repo:       repo,
		courseRepo: courseRepo,
		userRepo:   userRepo,
		mailSvc:    mailSvc,
		logger:     logger,
	}
}

func (svc *service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	asg := Assignment{
		ID:          uuid.New().String(),
		CourseID:    na.CourseID,
		TeacherID:   na.TeacherID,
		Title:       na.Title,
		Description: na.Description,
		DueAt:       na.DueAt,
		Type:        na.Type,
		Points:      na.Points,
		Attachments: na.Attachments,
		AssignedTo:  na.AssignedTo,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateAssignment(ctx, asg)
}

func (svc *service) GetByID(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *service) QueryByCourse(ctx context.Context, courseID string) ([]Assignment, error) {
	return svc.repo.QueryAssignmentsByCourse(ctx, courseID)
}

// QueryForStudent returns the assignments of the student's enrolled courses,
// each joined with the student's submission (status "not_started" when none).
func (svc *service) QueryForStudent(ctx context.Context, studentID string) ([]StudentAssignment, error) {
	courses, err := svc.courseRepo.QueryCoursesByStudent(ctx, studentID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying enrolled courses")
	}
	courseIDs := make([]string, 0, len(courses))
	for i := range courses {
		courseIDs = append(courseIDs, courses[i].ID)
	}

	assignments, err := svc.repo.QueryAssignmentsByCourseIDs(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	submissions, err := svc.repo.QuerySubmissionsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	subByAsg := make(map[string]*Submission, len(submissions))
	for i := range submissions {
		subByAsg[submissions[i].AssignmentID] = &submissions[i]
	}

	result := make([]StudentAssignment, 0, len(assignments))
	for _, asg := range assignments {
		sa := StudentAssignment{Assignment: asg, Status: StatusNotStarted}
		if sub, ok := subByAsg[asg.ID]; ok {
			sa.Status = sub.Status
			sa.Submission = sub
		}
		result = append(result, sa)
	}
	return result, nil
}

func (svc *service) QueryForTeacher(ctx context.Context, teacherID string) ([]TeacherAssignment, error) {
	assignments, err := svc.repo.QueryAssignmentsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	asgIDs := make([]string, 0, len(assignments))
	for i := range assignments {
		asgIDs = append(asgIDs, assignments[i].ID)
	}
	submissions, err := svc.repo.QuerySubmissionsByAssignmentIDs(ctx, asgIDs)
	if err != nil {
		return nil, err
	}

	submitted := make(map[string]int, len(assignments))
	graded := make(map[string]int, len(assignments))
	for i := range submissions {
		submitted[submissions[i].AssignmentID]++
		if submissions[i].IsGraded() {
			graded[submissions[i].AssignmentID]++
		}
	}

	result := make([]TeacherAssignment, 0, len(assignments))
	for _, asg := range assignments {
		result = append(result, TeacherAssignment{
			Assignment:     asg,
			SubmittedCount: submitted[asg.ID],
			GradedCount:    graded[asg.ID],
			TotalStudents:  len(asg.AssignedTo),
		})
	}
	return result, nil
}

func (svc *service) QuerySubmissions(ctx context.Context, assignmentID string) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByAssignment(ctx, assignmentID)
}

// Submit accepts late submissions unconditionally; the due date only affects
// dashboard views.
func (svc *service) Submit(ctx context.Context, ns NewSubmission) (Submission, error) {
	sub := Submission{
		ID:           uuid.New().String(),
		AssignmentID: ns.AssignmentID,
		StudentID:    ns.StudentID,
		Content:      ns.Content,
		Attachments:  ns.Attachments,
		Status:       StatusSubmitted,
		SubmittedAt:  time.Now().UTC(),
	}
	created, err := svc.repo.CreateSubmission(ctx, sub)
	if err != nil {
		if err == ErrAlreadySubmitted {
			return Submission{}, core.NewValidationError(err)
		}
		return Submission{}, err
	}
	return created, nil
}

// Grade is a one-way transition; regrading overwrites grade+feedback but a
// graded submission never returns to submitted.
func (svc *service) Grade(ctx context.Context, gs GradeSubmission) (Submission, error) {
	sub, err := svc.repo.GradeSubmission(ctx, gs.SubmissionID, gs.Grade, gs.Feedback)
	if err != nil {
		return Submission{}, err
	}
	svc.notifyGraded(ctx, sub)
	return sub, nil
}

// notifyGraded emails the student their result. Failures are logged and
// never surfaced: grading must not depend on the mailer.
func (svc *service) notifyGraded(ctx context.Context, sub Submission) {
	if svc.mailSvc == nil {
		return
	}
	usr, err := svc.userRepo.GetUserByID(ctx, sub.StudentID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("grade notification: student %s not found", sub.StudentID))
		return
	}
	asg, err := svc.repo.GetAssignmentByID(ctx, sub.AssignmentID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("grade notification: assignment %s not found", sub.AssignmentID))
		return
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour submission for %q has been graded: %d/%d.",
		core.FirstName(usr.Name), asg.Title, sub.Grade.Int, asg.Points,
	)
	if fb := sub.Feedback.String; fb != "" {
		body += "\n\nFeedback: " + fb
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: fmt.Sprintf("%s graded", asg.Title),
		BodyStr: body,
	})
}
