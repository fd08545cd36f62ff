package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database"
)

// NewConfig returns a test configuration backed by a fresh SQLite file.
func NewConfig(t *testing.T) *core.Config {
	conf := &core.Config{
		AppName:  "Darasa",
		Env:      "TEST",
		TestMode: true,
		WorkDir:  t.TempDir(),
	}
	conf.Database.Engine = core.EngineSQLite
	conf.Database.Path = filepath.Join(conf.WorkDir, "darasa.db")
	conf.Class.CodeMaxAttempts = 5
	return conf
}

// PrepareDB opens a migrated database that is closed when the test ends.
func PrepareDB(t *testing.T, conf ...*core.Config) *sqlx.DB {
	var c *core.Config
	if len(conf) > 0 {
		c = conf[0]
	} else {
		c = NewConfig(t)
	}

	db, err := database.Open(c)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, c.Database.Engine); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, pwd, role string,
	createdAt ...time.Time,
) user.User {
	tstamp := core.Now()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC().Truncate(time.Microsecond)
	}
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Role:      role,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateClass(t *testing.T, repo class.Repository, teacherID, name, subject, code string) class.Class {
	cls, err := repo.CreateClass(context.Background(), class.Class{
		ID:          uuid.New().String(),
		Name:        name,
		Subject:     subject,
		Description: null.String{},
		GradeLevel:  "Grade 10",
		ClassCode:   code,
		TeacherID:   teacherID,
		CreatedAt:   core.Now(),
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func Enroll(t *testing.T, repo enrollment.Repository, studentID, classID string) enrollment.Enrollment {
	enr, err := repo.CreateEnrollment(context.Background(), enrollment.Enrollment{
		ID:         uuid.New().String(),
		StudentID:  studentID,
		ClassID:    classID,
		EnrolledAt: core.Now(),
	})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	return enr
}

func CreateAssessment(t *testing.T, repo grade.Repository, classID, name, date string) grade.Assessment {
	a, err := repo.CreateAssessment(context.Background(), grade.Assessment{
		ID:        uuid.New().String(),
		ClassID:   classID,
		Name:      name,
		Date:      date,
		CreatedAt: core.Now(),
	})
	if err != nil {
		t.Fatalf("CreateAssessment() failed: %v", err)
	}
	return a
}
