package dashboard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/mastery"
	"github.com/trezcool/darasa/core/user"
)

var NowFunc = time.Now // mockable

type (
	ServiceInterface interface {
		Student(ctx context.Context, userID string) (StudentDashboard, error)
		Teacher(ctx context.Context, userID string) (TeacherDashboard, error)
	}

	service struct {
		userRepo    user.Repository
		courseRepo  course.Repository
		asgRepo     assignment.Repository
		masteryRepo mastery.Repository
		aiSvc       core.TextService // optional; may be nil
		logger      core.Logger
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(
	userRepo user.Repository,
	courseRepo course.Repository,
	asgRepo assignment.Repository,
	masteryRepo mastery.Repository,
	aiSvc core.TextService,
	logger core.Logger,
) ServiceInterface {
	return &service{
		userRepo:    userRepo,
		courseRepo:  courseRepo,
		asgRepo:     asgRepo,
		masteryRepo: masteryRepo,
		aiSvc:       aiSvc,
		logger:      logger,
	}
}

// Student aggregates the learner view. The user record is the primary
// entity; any other failed sub-fetch is logged and degraded to an empty
// collection so a partial dashboard is still served.
func (svc *service) Student(ctx context.Context, userID string) (StudentDashboard, error) {
	usr, err := svc.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return StudentDashboard{}, err
	}
	now := NowFunc().UTC()

	courses, err := svc.courseRepo.QueryCoursesByStudent(ctx, userID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("student dashboard: courses fetch failed: %v", err))
		courses = nil
	}
	courseIDs := make([]string, 0, len(courses))
	for i := range courses {
		courseIDs = append(courseIDs, courses[i].ID)
	}

	assignments, err := svc.asgRepo.QueryAssignmentsByCourseIDs(ctx, courseIDs)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("student dashboard: assignments fetch failed: %v", err))
		assignments = nil
	}
	submissions, err := svc.asgRepo.QuerySubmissionsByStudent(ctx, userID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("student dashboard: submissions fetch failed: %v", err))
		submissions = nil
	}

	subByAsg := make(map[string]*assignment.Submission, len(submissions))
	for i := range submissions {
		subByAsg[submissions[i].AssignmentID] = &submissions[i]
	}
	asgByID := make(map[string]*assignment.Assignment, len(assignments))
	for i := range assignments {
		asgByID[assignments[i].ID] = &assignments[i]
	}
	crsByID := make(map[string]*course.Course, len(courses))
	for i := range courses {
		crsByID[courses[i].ID] = &courses[i]
	}

	var completedCount int
	for i := range submissions {
		if s := submissions[i].Status; s == assignment.StatusSubmitted || s == assignment.StatusGraded {
			completedCount++
		}
	}

	// average score over matched (graded submission, assignment) pairs only
	var earned, possible int
	for i := range submissions {
		sub := &submissions[i]
		if !sub.IsGraded() || !sub.Grade.Valid {
			continue
		}
		asg, ok := asgByID[sub.AssignmentID]
		if !ok {
			continue
		}
		earned += int(sub.Grade.Int)
		possible += asg.Points
	}
	avgScore := ratioPercent(earned, possible)

	// upcoming tasks: not graded, due in the future, soonest first
	tasks := make([]Task, 0, maxTodayTasks)
	for i := range assignments {
		asg := &assignments[i]
		status := assignment.StatusNotStarted
		var grade null.Int
		if sub, ok := subByAsg[asg.ID]; ok {
			status = sub.Status
			grade = sub.Grade
		}
		if status == assignment.StatusGraded || !asg.DueAt.After(now) {
			continue
		}
		if len(tasks) == maxTodayTasks {
			break
		}
		courseName, courseColor := "Course", course.DefaultColor
		if crs, ok := crsByID[asg.CourseID]; ok {
			courseName, courseColor = crs.Name, crs.Color
		}
		tasks = append(tasks, Task{
			ID:          asg.ID,
			Title:       asg.Title,
			Type:        asg.Type,
			Course:      courseName,
			CourseColor: courseColor,
			DueAt:       asg.DueAt,
			Points:      asg.Points,
			IsUrgent:    asg.DueAt.Before(now.Add(urgentWindow)),
			Status:      status,
			Grade:       grade,
		})
	}

	recentGraded := make([]GradedResult, 0, maxRecentGraded)
	for i := range assignments {
		asg := &assignments[i]
		sub, ok := subByAsg[asg.ID]
		if !ok || !sub.IsGraded() {
			continue
		}
		if len(recentGraded) == maxRecentGraded {
			break
		}
		recentGraded = append(recentGraded, GradedResult{
			ID:       asg.ID,
			Title:    asg.Title,
			Grade:    int(sub.Grade.Int),
			Points:   asg.Points,
			Feedback: sub.Feedback.String,
		})
	}

	coursesList := make([]CourseCard, 0, len(courses))
	for i := range courses {
		crs := &courses[i]
		coursesList = append(coursesList, CourseCard{
			ID:    crs.ID,
			Name:  crs.Name,
			Code:  crs.Code,
			Color: crs.Color,
			Level: crs.Level,
		})
	}

	var streak int
	if prog, err := svc.masteryRepo.GetProgressByUser(ctx, userID); err == nil {
		streak = prog.Streak
	} else if err != mastery.ErrProgressNotFound {
		svc.logger.Warn(fmt.Sprintf("student dashboard: progress fetch failed: %v", err))
	}

	return StudentDashboard{
		Greeting: greeting(usr.Name, "Welcome back"),
		Stats: StudentStats{
			Streak:         streak,
			Mastery:        avgScore,
			TasksCount:     len(tasks),
			CompletedCount: completedCount,
		},
		Courses:      coursesList,
		Today:        tasks,
		RecentGraded: recentGraded,
		Schedule:     defaultSchedule(courses),
		Insight:      svc.insight(ctx, completedCount, avgScore),
	}, nil
}

// Teacher aggregates the instructor view with the same degrade-to-empty
// policy for sub-fetches.
func (svc *service) Teacher(ctx context.Context, userID string) (TeacherDashboard, error) {
	usr, err := svc.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return TeacherDashboard{}, err
	}
	now := NowFunc().UTC()

	courses, err := svc.courseRepo.QueryCoursesByTeacher(ctx, userID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("teacher dashboard: courses fetch failed: %v", err))
		courses = nil
	}
	assignments, err := svc.asgRepo.QueryAssignmentsByTeacher(ctx, userID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("teacher dashboard: assignments fetch failed: %v", err))
		assignments = nil
	}
	asgIDs := make([]string, 0, len(assignments))
	for i := range assignments {
		asgIDs = append(asgIDs, assignments[i].ID)
	}
	submissions, err := svc.asgRepo.QuerySubmissionsByAssignmentIDs(ctx, asgIDs)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("teacher dashboard: submissions fetch failed: %v", err))
		submissions = nil
	}

	asgByID := make(map[string]*assignment.Assignment, len(assignments))
	for i := range assignments {
		asgByID[assignments[i].ID] = &assignments[i]
	}
	crsByID := make(map[string]*course.Course, len(courses))
	for i := range courses {
		crsByID[courses[i].ID] = &courses[i]
	}

	var gradingQueueCount, activeAssignmentsCount int
	subsByAsg := make(map[string][]*assignment.Submission, len(assignments))
	for i := range submissions {
		sub := &submissions[i]
		subsByAsg[sub.AssignmentID] = append(subsByAsg[sub.AssignmentID], sub)
		if sub.Status == assignment.StatusSubmitted {
			gradingQueueCount++
		}
	}
	for i := range assignments {
		if assignments[i].DueAt.After(now) {
			activeAssignmentsCount++
		}
	}

	// set union of all rosters
	studentSet := make(map[string]struct{})
	for i := range courses {
		for _, sid := range courses[i].Students {
			studentSet[sid] = struct{}{}
		}
	}

	courseList := make([]TeacherCourse, 0, len(courses))
	for i := range courses {
		crs := &courses[i]

		var earned, possible int
		var gradedN int
		for j := range assignments {
			asg := &assignments[j]
			if asg.CourseID != crs.ID {
				continue
			}
			for _, sub := range subsByAsg[asg.ID] {
				if !sub.IsGraded() || !sub.Grade.Valid {
					continue
				}
				earned += int(sub.Grade.Int)
				possible += asg.Points
				gradedN++
			}
		}
		var avg null.Int
		if gradedN > 0 {
			avg = null.IntFrom(ratioPercent(earned, possible))
		}

		courseList = append(courseList, TeacherCourse{
			ID:            crs.ID,
			Name:          crs.Name,
			Code:          defaultStr(crs.Code, "N/A"),
			Color:         crs.Color,
			Section:       defaultStr(crs.Section, "A"),
			Term:          defaultStr(crs.Term, "Spring 2026"),
			StudentsCount: len(crs.Students),
			AvgScore:      avg,
		})
	}

	assignmentList := make([]AssignmentRow, 0, maxAssignmentRow)
	for i := range assignments {
		if len(assignmentList) == maxAssignmentRow {
			break
		}
		asg := &assignments[i]

		var submitted, graded int
		for _, sub := range subsByAsg[asg.ID] {
			submitted++
			if sub.IsGraded() {
				graded++
			}
		}

		status := "Closed"
		if asg.DueAt.After(now) {
			status = "Active"
		}
		courseName, courseColor := "Unknown", course.DefaultColor
		var rosterSize int
		if crs, ok := crsByID[asg.CourseID]; ok {
			courseName, courseColor = crs.Name, crs.Color
			rosterSize = len(crs.Students)
		}

		assignmentList = append(assignmentList, AssignmentRow{
			ID:             asg.ID,
			Title:          asg.Title,
			CourseName:     courseName,
			CourseColor:    courseColor,
			DueAt:          asg.DueAt,
			Points:         asg.Points,
			Type:           asg.Type,
			Status:         status,
			SubmittedCount: submitted,
			GradedCount:    graded,
			UngradedCount:  submitted - graded,
			TotalStudents:  rosterSize,
		})
	}

	studentsAtRisk := atRisk(submissions, asgByID)

	var nextClass *NextClass
	if len(courses) > 0 {
		nextClass = &NextClass{ID: courses[0].ID, Name: courses[0].Name, Time: "10:00 AM"}
	}

	return TeacherDashboard{
		Greeting: greeting(usr.Name, "Welcome back, Professor"),
		Overview: TeacherOverview{
			TodayClassesCount:      len(courses),
			NextClass:              nextClass,
			ActiveAssignmentsCount: activeAssignmentsCount,
			GradingQueueCount:      gradingQueueCount,
			TotalStudents:          len(studentSet),
			StudentsAtRiskCount:    len(studentsAtRisk),
		},
		Courses:        courseList,
		Assignments:    assignmentList,
		StudentsAtRisk: studentsAtRisk,
	}, nil
}

// atRisk groups graded submissions by student and flags those whose
// earned/possible ratio falls below the threshold.
func atRisk(submissions []assignment.Submission, asgByID map[string]*assignment.Assignment) []AtRiskStudent {
	type score struct{ earned, possible int }
	scores := make(map[string]*score)
	for i := range submissions {
		sub := &submissions[i]
		if !sub.IsGraded() || !sub.Grade.Valid {
			continue
		}
		asg, ok := asgByID[sub.AssignmentID]
		if !ok {
			continue
		}
		sc, ok := scores[sub.StudentID]
		if !ok {
			sc = &score{}
			scores[sub.StudentID] = sc
		}
		sc.earned += int(sub.Grade.Int)
		sc.possible += asg.Points
	}

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids) // deterministic output

	result := make([]AtRiskStudent, 0, maxAtRisk)
	for _, id := range ids {
		sc := scores[id]
		if sc.possible == 0 || float64(sc.earned)/float64(sc.possible) >= atRiskRatio {
			continue
		}
		if len(result) == maxAtRisk {
			break
		}
		result = append(result, AtRiskStudent{
			ID:       id,
			Name:     abbreviate(id),
			AvgScore: ratioPercent(sc.earned, sc.possible),
			Issue:    "Low Average Score",
			Action:   "Send encouragement",
		})
	}
	return result
}

// insight templates the motivational message and optionally lets the text
// service rewrite it. The AI call must fail open: any error keeps the
// templated value.
func (svc *service) insight(ctx context.Context, completedCount, avgScore int) Insight {
	msg := "Start your first assignment to build momentum!"
	if completedCount > 0 {
		plural := ""
		if completedCount > 1 {
			plural = "s"
		}
		push := "Keep pushing!"
		if avgScore > 70 {
			push = "Great work!"
		}
		msg = fmt.Sprintf("You've completed %d assignment%s. %s", completedCount, plural, push)
	}
	ins := Insight{Title: "Keep it up!", Message: msg}

	if svc.aiSvc == nil {
		return ins
	}
	prompt := fmt.Sprintf(
		"Rewrite this one-sentence study encouragement for a student who has completed %d assignments "+
			"with an average score of %d%%. Keep it under 25 words: %q",
		completedCount, avgScore, msg,
	)
	if text, err := svc.aiSvc.GenerateText(ctx, prompt); err != nil {
		svc.logger.Warn(fmt.Sprintf("insight enrichment failed, keeping template: %v", err))
	} else if text != "" {
		ins.Message = text
	}
	return ins
}

func greeting(name, fallback string) string {
	if first := core.FirstName(name); first != "" {
		return "Welcome back, " + first
	}
	return fallback
}

func defaultSchedule(courses []course.Course) []ScheduleSlot {
	first, second := "Class", "Lab"
	if len(courses) > 0 {
		first = courses[0].Name
	}
	if len(courses) > 1 {
		second = courses[1].Name
	}
	return []ScheduleSlot{
		{Time: "10:00 AM", Course: first, Type: "Lecture"},
		{Time: "02:00 PM", Course: second, Type: "Lab"},
	}
}

func ratioPercent(earned, possible int) int {
	if possible == 0 {
		return 0
	}
	return int(math.Round(float64(earned) / float64(possible) * 100))
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func abbreviate(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
