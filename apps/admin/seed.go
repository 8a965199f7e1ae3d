package main

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
)

const seedPassword = "Bienvenue1!"

// seed loads a small demo dataset: one teacher, two students, a course
// with both students enrolled and a pair of assignments.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	now := time.Now().UTC()

	teacher := user.User{
		ID:          uuid.New().String(),
		Email:       "amina.diop@darasa.io",
		Name:        "Amina Diop",
		Institution: "Darasa Academy",
		Role:        user.RoleTeacher,
		Subject:     "Mathematics",
		CreatedAt:   now,
	}
	students := []user.User{
		{
			ID:          uuid.New().String(),
			Email:       "kofi.mensah@darasa.io",
			Name:        "Kofi Mensah",
			Institution: "Darasa Academy",
			Role:        user.RoleStudent,
			CreatedAt:   now,
		},
		{
			ID:          uuid.New().String(),
			Email:       "zola.banda@darasa.io",
			Name:        "Zola Banda",
			Institution: "Darasa Academy",
			Role:        user.RoleStudent,
			CreatedAt:   now,
		},
	}

	if err := teacher.SetPassword(seedPassword); err != nil {
		return err
	}
	if _, err := cli.usrRepo.CreateUser(ctx, teacher); err != nil {
		return err
	}
	for i := range students {
		if err := students[i].SetPassword(seedPassword); err != nil {
			return err
		}
		if _, err := cli.usrRepo.CreateUser(ctx, students[i]); err != nil {
			return err
		}
	}

	crs := course.Course{
		ID:          uuid.New().String(),
		TeacherID:   teacher.ID,
		Name:        "Algebra I",
		Color:       course.DefaultColor,
		Description: "Linear equations, inequalities and functions.",
		Level:       "Beginner",
		Duration:    "12 weeks",
		Section:     "A",
		Term:        "Spring 2026",
		Syllabus: []course.SyllabusWeek{
			{Week: 1, Topic: "Variables and expressions"},
			{Week: 2, Topic: "Solving linear equations"},
		},
		Code:      course.NewJoinCode(),
		Students:  []string{},
		CreatedAt: now,
	}
	if _, err := cli.crsRepo.CreateCourse(ctx, crs); err != nil {
		return err
	}
	for _, st := range students {
		if err := cli.crsRepo.EnrollStudent(ctx, crs.ID, st.ID); err != nil {
			return err
		}
	}

	asgs := []assignment.Assignment{
		{
			ID:          uuid.New().String(),
			CourseID:    crs.ID,
			TeacherID:   teacher.ID,
			Title:       "Equations worksheet",
			Description: "Solve the attached set of linear equations.",
			DueAt:       now.Add(7 * 24 * time.Hour),
			Type:        assignment.TypeHomework,
			Points:      assignment.DefaultPoints,
			CreatedAt:   now,
		},
		{
			ID:        uuid.New().String(),
			CourseID:  crs.ID,
			TeacherID: teacher.ID,
			Title:     "Week 2 quiz",
			DueAt:     now.Add(14 * 24 * time.Hour),
			Type:      assignment.TypeQuiz,
			Points:    20,
			CreatedAt: now,
		},
	}
	for _, asg := range asgs {
		if _, err := cli.asgRepo.CreateAssignment(ctx, asg); err != nil {
			return err
		}
	}

	logger.Printf("seeded: 1 teacher, %d students, course %s (code %s), %d assignments",
		len(students), crs.Name, crs.Code, len(asgs))
	return nil
}
