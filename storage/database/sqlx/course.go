package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

type courseRow struct {
	ID          string    `db:"id"`
	TeacherID   string    `db:"teacher_id"`
	Name        string    `db:"name"`
	Color       string    `db:"color"`
	Description string    `db:"description"`
	Level       string    `db:"level"`
	Duration    string    `db:"duration"`
	Section     string    `db:"section"`
	Term        string    `db:"term"`
	Syllabus    []byte    `db:"syllabus"`
	Code        string    `db:"code"`
	Students    []byte    `db:"students"`
	CreatedAt   time.Time `db:"created_at"`
}

// selectCourses aggregates the roster from course_student into a JSON array.
const selectCourses = `
SELECT c.*, COALESCE(json_agg(cs.student_id) FILTER (WHERE cs.student_id IS NOT NULL), '[]') AS students
FROM course c
LEFT JOIN course_student cs ON cs.course_id = c.id`

func (r courseRow) toCourse() (course.Course, error) {
	crs := course.Course{
		ID:          r.ID,
		TeacherID:   r.TeacherID,
		Name:        r.Name,
		Color:       r.Color,
		Description: r.Description,
		Level:       r.Level,
		Duration:    r.Duration,
		Section:     r.Section,
		Term:        r.Term,
		Code:        r.Code,
		Students:    []string{},
		CreatedAt:   r.CreatedAt,
	}
	if err := fromJSON(r.Syllabus, &crs.Syllabus); err != nil {
		return course.Course{}, errors.Wrap(err, "decoding syllabus")
	}
	if err := fromJSON(r.Students, &crs.Students); err != nil {
		return course.Course{}, errors.Wrap(err, "decoding students")
	}
	return crs, nil
}

func toCourses(rows []courseRow) ([]course.Course, error) {
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		crs, err := row.toCourse()
		if err != nil {
			return nil, err
		}
		courses = append(courses, crs)
	}
	return courses, nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO course (id, teacher_id, name, color, description, level, duration, section, term, syllabus, code, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		crs.ID, crs.TeacherID, crs.Name, crs.Color, crs.Description, crs.Level, crs.Duration,
		crs.Section, crs.Term, mustJSON(crs.Syllabus), crs.Code, crs.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return course.Course{}, course.ErrCodeExists
		}
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo *courseRepository) getCourse(ctx context.Context, where string, arg interface{}) (course.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row, selectCourses+" WHERE "+where+" GROUP BY c.id", arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return row.toCourse()
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	return repo.getCourse(ctx, "c.id = $1", id)
}

func (repo *courseRepository) GetCourseByCode(ctx context.Context, code string) (course.Course, error) {
	return repo.getCourse(ctx, "c.code = $1", code)
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows, selectCourses+" GROUP BY c.id ORDER BY c.created_at")
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return toCourses(rows)
}

func (repo *courseRepository) QueryCoursesByTeacher(ctx context.Context, teacherID string) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows,
		selectCourses+" WHERE c.teacher_id = $1 GROUP BY c.id ORDER BY c.created_at", teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses by teacher")
	}
	return toCourses(rows)
}

func (repo *courseRepository) QueryCoursesByStudent(ctx context.Context, studentID string) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows,
		selectCourses+` WHERE c.id IN (SELECT course_id FROM course_student WHERE student_id = $1)
		 GROUP BY c.id ORDER BY c.created_at`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses by student")
	}
	return toCourses(rows)
}

// EnrollStudent relies on the course_student primary key for the
// at-most-once guarantee; no read-modify-write involved.
func (repo *courseRepository) EnrollStudent(ctx context.Context, courseID, studentID string) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO course_student (course_id, student_id) VALUES ($1, $2)`, courseID, studentID)
	if err != nil {
		if isUniqueViolation(err) {
			return course.ErrAlreadyEnrolled
		}
		if isForeignKeyViolation(err) {
			return course.ErrNotFound
		}
		return errors.Wrap(err, "enrolling student")
	}
	return nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.ErrNotFound
	}
	return nil
}
