package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/darisacademy/daris/core/course"
	"github.com/darisacademy/daris/core/user"
	"github.com/darisacademy/daris/storage/database/dummydb"
	testutil "github.com/darisacademy/daris/tests"
)

var (
	usrRepo user.Repository
	crsRepo course.Repository
)

func setup(t *testing.T) *commandLine {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags)

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	crsRepo = dummydb.NewCourseRepository(db)

	// start CLI
	return &commandLine{
		db:      &sqlx.DB{},
		usrRepo: usrRepo,
		crsRepo: crsRepo,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd   string
		email string
		role  user.Role
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "name but no email", args: []string{"adduser", "-name", "Awe"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-name", "Awe", "-email", "awe@test.cd"}, wantErr: errHelp},
		{name: "create student", args: []string{"adduser", "-name", "Awe", "-email", "awe@test.cd"}, extra: extra{pwd: "mdr", email: "awe@test.cd", role: user.RoleStudent}},
		{name: "create teacher", args: []string{"adduser", "-name", "Prof", "-email", "prof@test.cd", "-teacher"}, extra: extra{pwd: "mdr", email: "prof@test.cd", role: user.RoleTeacher}},
		{name: "create admin", args: []string{"adduser", "-name", "Boss", "-email", "boss@test.cd", "-admin"}, extra: extra{pwd: "mdr", email: "boss@test.cd", role: user.RoleAdmin}},
		{name: "promote existing user", args: []string{"adduser", "-name", "Awe", "-email", "awe@test.cd", "-admin"}, extra: extra{pwd: "lol", email: "awe@test.cd", role: user.RoleAdmin}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				want := tt.extra.(extra)
				usr, err := usrRepo.GetUserByEmail(context.Background(), want.email)
				if err != nil {
					t.Fatalf("GetUserByEmail() failed, %v", err)
				}
				if usr.Role != want.role {
					t.Errorf("user role = %s, want %s", usr.Role, want.role)
				}
				if !usr.Active() {
					t.Error("user should be active")
				}
				if err := usr.CheckPassword(want.pwd); err != nil {
					t.Error("failed to set password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Awe", "awe@test.cd", "mdr", user.RoleStudent, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lol"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
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

	ctx := context.Background()
	tchr, err := usrRepo.GetUserByEmail(ctx, "teacher@daris.dev")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	if tchr.Role != user.RoleTeacher {
		t.Errorf("seeded user role = %s, want %s", tchr.Role, user.RoleTeacher)
	}

	courses, err := crsRepo.FilterCourses(ctx, course.QueryFilter{TeacherID: tchr.ID})
	if err != nil {
		t.Fatalf("FilterCourses() failed: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("seeded courses = %d, want 2", len(courses))
	}
	for _, crs := range courses {
		if crs.Status != course.StatusPublished {
			t.Errorf("course %q status = %s, want %s", crs.Title, crs.Status, course.StatusPublished)
		}
		if crs.TotalLessons == 0 {
			t.Errorf("course %q has no lessons", crs.Title)
		}
	}

	// running it again is a no-op
	if err := cli.run([]string{"admin", "seed"}); err != nil {
		t.Fatalf("cli.run() failed on rerun: %v", err)
	}
	if courses, err = crsRepo.FilterCourses(ctx, course.QueryFilter{TeacherID: tchr.ID}); err != nil {
		t.Fatalf("FilterCourses() failed: %v", err)
	}
	if len(courses) != 2 {
		t.Errorf("courses after rerun = %d, want 2", len(courses))
	}
}
