package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/dashboard"
	"github.com/trezcool/darasa/core/user"
)

func Test_dashboardApi_student(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	teacher := f.createUser(t, "Amina Diop", "amina@test.cd", "", user.RoleTeacher)
	student := f.createUser(t, "Kofi Mensah", "kofi@test.cd", "", user.RoleStudent)

	crs, err := f.crsSvc.Create(ctx, course.NewCourse{TeacherID: teacher.ID, Name: "Algebra I"})
	require.NoError(t, err)
	_, err = f.crsSvc.Join(ctx, course.JoinCourse{Code: crs.Code, StudentID: student.ID})
	require.NoError(t, err)
	asg := f.createAssignment(t, crs.ID, teacher.ID, "HW 1", time.Now().UTC().Add(12*time.Hour))

	sub, err := f.asgSvc.Submit(ctx, assignment.NewSubmission{AssignmentID: asg.ID, StudentID: student.ID})
	require.NoError(t, err)
	_, err = f.asgSvc.Grade(ctx, assignment.GradeSubmission{SubmissionID: sub.ID, Grade: 80})
	require.NoError(t, err)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/dashboard/student/"+student.ID)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user fails", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/student/nope", f.getToken(t, student))
		f.app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: user.ErrNotFound.Error()}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("student dashboard ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/student/"+student.ID, f.getToken(t, student))
		f.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var dash dashboard.StudentDashboard
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
		assert.Equal(t, "Welcome back, Kofi", dash.Greeting)
		assert.Equal(t, 80, dash.Stats.Mastery)
		assert.Equal(t, 1, dash.Stats.CompletedCount)
		require.Len(t, dash.Courses, 1)
		require.Len(t, dash.RecentGraded, 1)
		assert.Empty(t, dash.Today) // the only assignment is graded
		assert.Equal(t, "You've completed 1 assignment. Great work!", dash.Insight.Message)
	})
}

func Test_dashboardApi_teacher(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	teacher := f.createUser(t, "Amina Diop", "amina@test.cd", "", user.RoleTeacher)
	student := f.createUser(t, "Kofi Mensah", "kofi@test.cd", "", user.RoleStudent)

	crs, err := f.crsSvc.Create(ctx, course.NewCourse{TeacherID: teacher.ID, Name: "Algebra I"})
	require.NoError(t, err)
	_, err = f.crsSvc.Join(ctx, course.JoinCourse{Code: crs.Code, StudentID: student.ID})
	require.NoError(t, err)
	asg := f.createAssignment(t, crs.ID, teacher.ID, "HW 1", time.Now().UTC().Add(12*time.Hour))
	_, err = f.asgSvc.Submit(ctx, assignment.NewSubmission{AssignmentID: asg.ID, StudentID: student.ID})
	require.NoError(t, err)

	t.Run("teacher dashboard ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/teacher/"+teacher.ID, f.getToken(t, teacher))
		f.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var dash dashboard.TeacherDashboard
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
		assert.Equal(t, "Welcome back, Amina", dash.Greeting)
		assert.Equal(t, 1, dash.Overview.GradingQueueCount)
		assert.Equal(t, 1, dash.Overview.ActiveAssignmentsCount)
		assert.Equal(t, 1, dash.Overview.TotalStudents)
		require.Len(t, dash.Assignments, 1)
		assert.Equal(t, "Active", dash.Assignments[0].Status)
		assert.Equal(t, 1, dash.Assignments[0].UngradedCount)
	})
}
