package dashboard

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// View-model thresholds and truncations.
const (
	urgentWindow = 48 * time.Hour

	maxTodayTasks    = 6
	maxRecentGraded  = 3
	maxAssignmentRow = 10
	maxAtRisk        = 5

	// atRiskRatio flags students whose graded earned/possible falls below it.
	atRiskRatio = 0.6
)

type (
	Insight struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}

	ScheduleSlot struct {
		Time   string `json:"time"`
		Course string `json:"course"`
		Type   string `json:"type"`
	}

	// StudentDashboard is the aggregated learner view, recomputed per request.
	StudentDashboard struct {
		Greeting     string         `json:"greeting"`
		Stats        StudentStats   `json:"stats"`
		Courses      []CourseCard   `json:"courses"`
		Today        []Task         `json:"today"`
		RecentGraded []GradedResult `json:"recent_graded"`
		Schedule     []ScheduleSlot `json:"schedule"`
		Insight      Insight        `json:"insight"`
	}

	StudentStats struct {
		Streak         int `json:"streak"`
		Mastery        int `json:"mastery"`
		TasksCount     int `json:"tasks_count"`
		CompletedCount int `json:"completed_count"`
	}

	CourseCard struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Code  string `json:"code"`
		Color string `json:"color"`
		Level string `json:"level"`
	}

	Task struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Type        string    `json:"type"`
		Course      string    `json:"course"`
		CourseColor string    `json:"course_color"`
		DueAt       time.Time `json:"due_at"`
		Points      int       `json:"points"`
		IsUrgent    bool      `json:"is_urgent"`
		Status      string    `json:"status"`
		Grade       null.Int  `json:"grade"`
	}

	GradedResult struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Grade    int    `json:"grade"`
		Points   int    `json:"points"`
		Feedback string `json:"feedback"`
	}

	// TeacherDashboard is the aggregated instructor view.
	TeacherDashboard struct {
		Greeting       string          `json:"greeting"`
		Overview       TeacherOverview `json:"overview"`
		Courses        []TeacherCourse `json:"courses"`
		Assignments    []AssignmentRow `json:"assignments"`
		StudentsAtRisk []AtRiskStudent `json:"students_at_risk"`
	}

	TeacherOverview struct {
		TodayClassesCount      int        `json:"today_classes_count"`
		NextClass              *NextClass `json:"next_class"`
		ActiveAssignmentsCount int        `json:"active_assignments_count"`
		GradingQueueCount      int        `json:"grading_queue_count"`
		TotalStudents          int        `json:"total_students"`
		StudentsAtRiskCount    int        `json:"students_at_risk_count"`
	}

	NextClass struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Time string `json:"time"`
	}

	TeacherCourse struct {
		ID            string   `json:"id"`
		Name          string   `json:"name"`
		Code          string   `json:"code"`
		Color         string   `json:"color"`
		Section       string   `json:"section"`
		Term          string   `json:"term"`
		StudentsCount int      `json:"students_count"`
		AvgScore      null.Int `json:"avg_score"`
	}

	AssignmentRow struct {
		ID             string    `json:"id"`
		Title          string    `json:"title"`
		CourseName     string    `json:"course_name"`
		CourseColor    string    `json:"course_color"`
		DueAt          time.Time `json:"due_at"`
		Points         int       `json:"points"`
		Type           string    `json:"type"`
		Status         string    `json:"status"` // Active | Closed
		SubmittedCount int       `json:"submitted_count"`
		GradedCount    int       `json:"graded_count"`
		UngradedCount  int       `json:"ungraded_count"`
		TotalStudents  int       `json:"total_students"`
	}

	// AtRiskStudent is keyed by an opaque student ID; resolving it to a
	// display name is left to the caller.
	AtRiskStudent struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		AvgScore int    `json:"avg_score"`
		Issue    string `json:"issue"`
		Action   string `json:"action"`
	}
)
