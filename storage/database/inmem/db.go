package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/mastery"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		user       *userTable
		course     *courseTable
		assignment *assignmentTable
		submission *submissionTable
		mastery    *masteryTable
		progress   *progressTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	assignmentTable struct {
		sync.RWMutex
		table map[string]*assignment.Assignment
	}

	submissionTable struct {
		sync.RWMutex
		table map[string]*assignment.Submission
	}

	masteryTable struct {
		sync.RWMutex
		table map[string]*mastery.Mastery
	}

	progressTable struct {
		sync.RWMutex
		table map[string]*mastery.Progress // keyed by UserID
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		course:     &courseTable{table: make(map[string]*course.Course)},
		assignment: &assignmentTable{table: make(map[string]*assignment.Assignment)},
		submission: &submissionTable{table: make(map[string]*assignment.Submission)},
		mastery:    &masteryTable{table: make(map[string]*mastery.Mastery)},
		progress:   &progressTable{table: make(map[string]*mastery.Progress)},
	}
	return db, nil
}
