package course

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrCodeExists      = errors.New("a course with this code already exists")
)

// join code collisions are resolved by regenerating; the space is 32^6 so
// a handful of attempts is plenty.
const maxCodeAttempts = 5

type (
	Repository interface {
		// CreateCourse persists a new course. ErrCodeExists is returned when
		// the join code is already taken.
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		GetCourseByCode(ctx context.Context, code string) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
		QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]Course, error)
		QueryCoursesByStudent(ctx context.Context, studentID string) ([]Course, error)
		// EnrollStudent atomically appends studentID to the course roster.
		// ErrAlreadyEnrolled is returned when the student is already on it.
		EnrollStudent(ctx context.Context, courseID, studentID string) error
		DeleteCourse(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nc NewCourse) (Course, error)
		GetByID(ctx context.Context, id string) (Course, error)
		QueryByTeacher(ctx context.Context, teacherID string) ([]Course, error)
		QueryAvailable(ctx context.Context) ([]AvailableCourse, error)
		QueryEnrolled(ctx context.Context, studentID string) ([]EnrolledCourse, error)
		Join(ctx context.Context, jc JoinCourse) (Summary, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) ServiceInterface {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	crs := Course{
		ID:          uuid.New().String(),
		TeacherID:   nc.TeacherID,
		Name:        nc.Name,
		Color:       nc.Color,
		Description: nc.Description,
		Level:       nc.Level,
		Duration:    nc.Duration,
		Section:     nc.Section,
		Term:        nc.Term,
		Syllabus:    nc.Syllabus,
		Students:    []string{},
		CreatedAt:   time.Now().UTC(),
	}

	var err error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		crs.Code = NewJoinCode()
		var created Course
		if created, err = svc.repo.CreateCourse(ctx, crs); err == nil {
			return created, nil
		}
		if err != ErrCodeExists {
			return Course{}, err
		}
	}
	return Course{}, pkgerrors.Wrap(err, "generating unique join code")
}

func (svc *service) GetByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *service) QueryByTeacher(ctx context.Context, teacherID string) ([]Course, error) {
	return svc.repo.QueryCoursesByTeacher(ctx, teacherID)
}

func (svc *service) QueryAvailable(ctx context.Context) ([]AvailableCourse, error) {
	courses, err := svc.repo.QueryAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	available := make([]AvailableCourse, 0, len(courses))
	for i := range courses {
		available = append(available, courses[i].Available())
	}
	return available, nil
}

func (svc *service) QueryEnrolled(ctx context.Context, studentID string) ([]EnrolledCourse, error) {
	courses, err := svc.repo.QueryCoursesByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	enrolled := make([]EnrolledCourse, 0, len(courses))
	for i := range courses {
		enrolled = append(enrolled, courses[i].Enrolled())
	}
	return enrolled, nil
}

func (svc *service) Join(ctx context.Context, jc JoinCourse) (Summary, error) {
	code := strings.ToUpper(jc.Code)
	crs, err := svc.repo.GetCourseByCode(ctx, code)
	if err != nil {
		return Summary{}, err
	}
	if err = svc.repo.EnrollStudent(ctx, crs.ID, jc.StudentID); err != nil {
		return Summary{}, err
	}
	return Summary{ID: crs.ID, Name: crs.Name, Code: crs.Code}, nil
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}
