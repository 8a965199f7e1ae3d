package course

import (
	"crypto/rand"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

const (
	DefaultColor    = "#8b5cf6"
	DefaultLevel    = "General"
	DefaultDuration = "Self-paced"

	joinCodeLen     = 6
	joinCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no ambiguous 0/O, 1/I
)

type (
	// SyllabusWeek is one entry of a Course's ordered syllabus.
	SyllabusWeek struct {
		Week    int    `json:"week"`
		Topic   string `json:"topic"`
		Content string `json:"content,omitempty"`
	}

	// Course is owned by exactly one teacher. Students reference it by value
	// (plain string IDs); referential integrity is not assumed.
	Course struct {
		ID          string         `json:"id"`
		TeacherID   string         `json:"teacher_id"`
		Name        string         `json:"name"`
		Color       string         `json:"color"`
		Description string         `json:"description,omitempty"`
		Level       string         `json:"level"`
		Duration    string         `json:"duration"`
		Section     string         `json:"section,omitempty"`
		Term        string         `json:"term,omitempty"`
		Syllabus    []SyllabusWeek `json:"syllabus,omitempty"`
		Code        string         `json:"code"`
		Students    []string       `json:"students"`
		CreatedAt   time.Time      `json:"created_at"` // UTC
	}

	// Summary is the minimal course view returned after enrollment.
	Summary struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Code string `json:"code"`
	}

	// AvailableCourse is the public-safe catalog view; the roster is omitted.
	AvailableCourse struct {
		ID            string    `json:"id"`
		Name          string    `json:"name"`
		Code          string    `json:"code"`
		Description   string    `json:"description"`
		Level         string    `json:"level"`
		Duration      string    `json:"duration"`
		TeacherID     string    `json:"teacher_id"`
		StudentsCount int       `json:"students_count"`
		CreatedAt     time.Time `json:"created_at"`
	}

	// EnrolledCourse is the learner-facing view of an enrolled course.
	EnrolledCourse struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Code        string `json:"code"`
		Description string `json:"description"`
		Level       string `json:"level"`
		Duration    string `json:"duration"`
		TeacherID   string `json:"teacher_id"`
		Color       string `json:"color"`
	}
)

func (c *Course) IsEnrolled(studentID string) bool {
	for _, id := range c.Students {
		if id == studentID {
			return true
		}
	}
	return false
}

func (c *Course) Available() AvailableCourse {
	return AvailableCourse{
		ID:            c.ID,
		Name:          c.Name,
		Code:          c.Code,
		Description:   c.Description,
		Level:         c.Level,
		Duration:      c.Duration,
		TeacherID:     c.TeacherID,
		StudentsCount: len(c.Students),
		CreatedAt:     c.CreatedAt,
	}
}

func (c *Course) Enrolled() EnrolledCourse {
	return EnrolledCourse{
		ID:          c.ID,
		Name:        c.Name,
		Code:        c.Code,
		Description: c.Description,
		Level:       c.Level,
		Duration:    c.Duration,
		TeacherID:   c.TeacherID,
		Color:       c.Color,
	}
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	TeacherID   string         `json:"teacher_id" validate:"required"`
	Name        string         `json:"name" validate:"required"`
	Color       string         `json:"color" validate:"omitempty,hexcolor_"`
	Description string         `json:"description"`
	Level       string         `json:"level"`
	Duration    string         `json:"duration"`
	Section     string         `json:"section"`
	Term        string         `json:"term"`
	Syllabus    []SyllabusWeek `json:"syllabus"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	if nc.Color == "" {
		nc.Color = DefaultColor
	}
	if nc.Level == "" {
		nc.Level = DefaultLevel
	}
	if nc.Duration == "" {
		nc.Duration = DefaultDuration
	}
	return validate.Struct(nc)
}

// JoinCourse contains information needed to enroll by join code.
type JoinCourse struct {
	Code      string `json:"code" validate:"required,joincode"`
	StudentID string `json:"student_id" validate:"required"`
}

func (jc *JoinCourse) Validate(validate *validator.Validate) error {
	jc.Code = core.CleanString(jc.Code)
	return validate.Struct(jc)
}

// NewJoinCode generates a random 6-character uppercase join code.
func NewJoinCode() string {
	buf := make([]byte, joinCodeLen)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand is broken; nothing sane to do
	}
	for i, b := range buf {
		buf[i] = joinCodeCharset[int(b)%len(joinCodeCharset)]
	}
	return string(buf)
}
