package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fixture struct {
	svc     assignment.ServiceInterface
	crsSvc  course.ServiceInterface
	usrRepo user.Repository
}

func setup(t *testing.T) fixture {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	crsRepo := inmemdb.NewCourseRepository(db)
	usrRepo := inmemdb.NewUserRepository(db)
	mailSvc := emailsvc.NewConsoleService(&core.Config{AppName: "darasa", TestMode: true})
	emailsvc.ClearSentMessages()
	return fixture{
		svc:     assignment.NewService(inmemdb.NewAssignmentRepository(db), crsRepo, usrRepo, mailSvc, nopLogger{}),
		crsSvc:  course.NewService(crsRepo),
		usrRepo: usrRepo,
	}
}

func createAssignment(t *testing.T, svc assignment.ServiceInterface, courseID, title string, dueAt time.Time) assignment.Assignment {
	asg, err := svc.Create(context.Background(), assignment.NewAssignment{
		CourseID:  courseID,
		TeacherID: "t1",
		Title:     title,
		DueAt:     dueAt,
		Type:      assignment.TypeHomework,
		Points:    assignment.DefaultPoints,
	})
	if err != nil {
		t.Fatalf("createAssignment() failed: %v", err)
	}
	return asg
}

func Test_service_Submit(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	asg := createAssignment(t, f.svc, "c1", "HW 1", time.Now().Add(24*time.Hour))

	sub, err := f.svc.Submit(ctx, assignment.NewSubmission{AssignmentID: asg.ID, StudentID: "s1", Content: "answer"})
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusSubmitted, sub.Status)
	assert.False(t, sub.Grade.Valid)
	assert.False(t, sub.IsGraded())

	// a second submission for the same (assignment, student) is rejected
	_, err = f.svc.Submit(ctx, assignment.NewSubmission{AssignmentID: asg.ID, StudentID: "s1"})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	subs, err := f.svc.QuerySubmissions(ctx, asg.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	// another student can still submit
	_, err = f.svc.Submit(ctx, assignment.NewSubmission{AssignmentID: asg.ID, StudentID: "s2"})
	require.NoError(t, err)
}

func Test_service_Submit_pastDue(t *testing.T) {
	f := setup(t)
	asg := createAssignment(t, f.svc, "c1", "HW 1", time.Now().Add(-24*time.Hour))

	// late submissions are accepted
	sub, err := f.svc.Submit(context.Background(), assignment.NewSubmission{AssignmentID: asg.ID, StudentID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusSubmitted, sub.Status)
}

func Test_service_Grade(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	asg := createAssignment(t, f.svc, "c1", "HW 1", time.Now().Add(24*time.Hour))
	sub, err := f.svc.Submit(ctx, assignment.NewSubmission{AssignmentID: asg.ID, StudentID: "s1"})
	require.NoError(t, err)

	graded, err := f.svc.Grade(ctx, assignment.GradeSubmission{SubmissionID: sub.ID, Grade: 85, Feedback: "good"})
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusGraded, graded.Status)
	assert.True(t, graded.Grade.Valid)
	assert.Equal(t, 85, int(graded.Grade.Int))
	assert.Equal(t, "good", graded.Feedback.String)

	// regrading overwrites but never reverts the status
	regraded, err := f.svc.Grade(ctx, assignment.GradeSubmission{SubmissionID: sub.ID, Grade: 90})
	require.NoError(t, err)
	assert.Equal(t, assignment.StatusGraded, regraded.Status)
	assert.Equal(t, 90, int(regraded.Grade.Int))

	_, err = f.svc.Grade(ctx, assignment.GradeSubmission{SubmissionID: "nope", Grade: 50})
	assert.Equal(t, assignment.ErrSubmissionNotFound, err)
}

func Test_service_Grade_notifiesStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	usr := user.User{ID: "s1", Email: "s1@darasa.io", Name: "Kofi Mensah", Role: user.RoleStudent}
	_, err := f.usrRepo.CreateUser(ctx, usr)
	require.NoError(t, err)

	asg := createAssignment(t, f.svc, "c1", "HW 1", time.Now().Add(24*time.Hour))
	sub, err := f.svc.Submit(ctx, assignment.NewSubmission{AssignmentID: asg.ID, StudentID: "s1"})
	require.NoError(t, err)

	_, err = f.svc.Grade(ctx, assignment.GradeSubmission{SubmissionID: sub.ID, Grade: 85, Feedback: "good"})
	require.NoError(t, err)

	require.Len(t, emailsvc.SentMessages, 1)
	msg := emailsvc.SentMessages[0]
	assert.Equal(t, "s1@darasa.io", msg.To[0].Address)
	assert.Contains(t, msg.Subject, "HW 1")
	assert.Contains(t, msg.TextContent, "85/100")
	assert.Contains(t, msg.TextContent, "good")
}

func Test_service_QueryForStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	crs, err := f.crsSvc.Create(ctx, course.NewCourse{TeacherID: "t1", Name: "Algebra I"})
	require.NoError(t, err)
	_, err = f.crsSvc.Join(ctx, course.JoinCourse{Code: crs.Code, StudentID: "s1"})
	require.NoError(t, err)

	due := time.Now().Add(24 * time.Hour)
	asg1 := createAssignment(t, f.svc, crs.ID, "HW 1", due)
	asg2 := createAssignment(t, f.svc, crs.ID, "HW 2", due.Add(time.Hour))
	// assignment in a course the student is not enrolled in is invisible
	createAssignment(t, f.svc, "other-course", "Hidden", due)

	sub, err := f.svc.Submit(ctx, assignment.NewSubmission{AssignmentID: asg1.ID, StudentID: "s1"})
	require.NoError(t, err)
	_, err = f.svc.Grade(ctx, assignment.GradeSubmission{SubmissionID: sub.ID, Grade: 80})
	require.NoError(t, err)

	got, err := f.svc.QueryForStudent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byID := make(map[string]assignment.StudentAssignment, len(got))
	for _, sa := range got {
		byID[sa.ID] = sa
	}
	assert.Equal(t, assignment.StatusGraded, byID[asg1.ID].Status)
	require.NotNil(t, byID[asg1.ID].Submission)
	assert.Equal(t, 80, int(byID[asg1.ID].Submission.Grade.Int))
	assert.Equal(t, assignment.StatusNotStarted, byID[asg2.ID].Status)
	assert.Nil(t, byID[asg2.ID].Submission)
}

func Test_service_QueryForTeacher(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	due := time.Now().Add(24 * time.Hour)
	asg := createAssignment(t, f.svc, "c1", "HW 1", due)

	for _, sid := range []string{"s1", "s2", "s3"} {
		_, err := f.svc.Submit(ctx, assignment.NewSubmission{AssignmentID: asg.ID, StudentID: sid})
		require.NoError(t, err)
	}
	subs, err := f.svc.QuerySubmissions(ctx, asg.ID)
	require.NoError(t, err)
	_, err = f.svc.Grade(ctx, assignment.GradeSubmission{SubmissionID: subs[0].ID, Grade: 70})
	require.NoError(t, err)

	got, err := f.svc.QueryForTeacher(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].SubmittedCount)
	assert.Equal(t, 1, got[0].GradedCount)
}

func Test_service_QueryByCourse_ordering(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	now := time.Now()

	createAssignment(t, f.svc, "c1", "Later", now.Add(48*time.Hour))
	createAssignment(t, f.svc, "c1", "Sooner", now.Add(1*time.Hour))
	createAssignment(t, f.svc, "c1", "Middle", now.Add(24*time.Hour))

	got, err := f.svc.QueryByCourse(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Sooner", got[0].Title)
	assert.Equal(t, "Middle", got[1].Title)
	assert.Equal(t, "Later", got[2].Title)
}
