package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/darasa/core/user"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

func setup(t *testing.T) *commandLine {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags)

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return &commandLine{
		db:      &sqlx.DB{},
		usrRepo: inmemdb.NewUserRepository(db),
		crsRepo: inmemdb.NewCourseRepository(db),
		asgRepo: inmemdb.NewAssignmentRepository(db),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email but no name", args: []string{"adduser", "-email", "a@test.cd"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-email", "a@test.cd", "-name", "A"}, wantErr: errHelp},
		{name: "add ok", args: []string{"adduser", "-email", "a@test.cd", "-name", "A"}, pwd: "v3rySecret"},
		{name: "duplicate email", args: []string{"adduser", "-email", "a@test.cd", "-name", "A"}, pwd: "v3rySecret", wantErr: user.ErrEmailExists},
		{name: "add student", args: []string{"adduser", "-email", "b@test.cd", "-name", "B", "-role", user.RoleStudent}, pwd: "v3rySecret"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	usr, err := cli.usrRepo.GetUserByEmail(context.Background(), "a@test.cd")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	if usr.Role != user.RoleTeacher { // default role
		t.Errorf("role = %s; want %s", usr.Role, user.RoleTeacher)
	}
	if err = usr.CheckPassword("v3rySecret"); err != nil {
		t.Error("password was not set")
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "down", "redo", "reset", "status", "version", "fix": // pass
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErrStr != "" {
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
				return
			}
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)

	if err := cli.run([]string{"admin", "seed"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	courses, err := cli.crsRepo.QueryAllCourses(context.Background())
	if err != nil {
		t.Fatalf("QueryAllCourses() failed: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("len(courses) = %d; want 1", len(courses))
	}
	if len(courses[0].Students) != 2 {
		t.Errorf("len(students) = %d; want 2", len(courses[0].Students))
	}

	asgs, err := cli.asgRepo.QueryAssignmentsByCourse(context.Background(), courses[0].ID)
	if err != nil {
		t.Fatalf("QueryAssignmentsByCourse() failed: %v", err)
	}
	if len(asgs) != 2 {
		t.Errorf("len(asgs) = %d; want 2", len(asgs))
	}
}
