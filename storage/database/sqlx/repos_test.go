package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database/testutil"
)

type repos struct {
	db  *sqlx.DB
	usr *UserRepository
	cls *ClassRepository
	enr *EnrollmentRepository
	att *AttendanceRepository
	grd *GradeRepository
}

func setup(t *testing.T) repos {
	db := testutil.PrepareDB(t)
	return repos{
		db:  db,
		usr: NewUserRepository(db),
		cls: NewClassRepository(db),
		enr: NewEnrollmentRepository(db),
		att: NewAttendanceRepository(db),
		grd: NewGradeRepository(db),
	}
}

func count(t *testing.T, db *sqlx.DB, table string) int {
	var n int
	if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("count(%s) failed: %v", table, err)
	}
	return n
}

func TestUserRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	bob := testutil.CreateUser(t, r.usr, "Bob Teacher", "bob", "Pa$$w0rd!", user.RoleTeacher)
	alice := testutil.CreateUser(t, r.usr, "Alice Student", "alice", "", user.RoleStudent)
	_ = testutil.CreateUser(t, r.usr, "Zed Student", "zed", "", user.RoleStudent)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := r.usr.CreateUser(ctx, user.User{ID: uuid.New().String(), Username: "bob", Name: "Other Bob", Role: user.RoleStudent, CreatedAt: core.Now()})
		if err != user.ErrUsernameExists {
			t.Errorf("CreateUser() err = %v; want %v", err, user.ErrUsernameExists)
		}
	})

	t.Run("get", func(t *testing.T) {
		got, err := r.usr.GetUser(ctx, user.GetFilter{Username: "bob"})
		require.NoError(t, err)
		assert.Equal(t, bob.ID, got.ID)
		assert.Equal(t, bob.CreatedAt, got.CreatedAt)
		assert.NoError(t, got.CheckPassword("Pa$$w0rd!"))

		_, err = r.usr.GetUser(ctx, user.GetFilter{ID: "nope"})
		assert.Equal(t, user.ErrNotFound, err)
		_, err = r.usr.GetUser(ctx, user.GetFilter{})
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("query", func(t *testing.T) {
		tests := []struct {
			name     string
			filter   *user.QueryFilter
			ordering []core.DBOrdering
			want     []string
		}{
			{name: "all by name", want: []string{"alice", "bob", "zed"}},
			{name: "search", filter: &user.QueryFilter{Search: "STUDENT"}, want: []string{"alice", "zed"}},
			{name: "roles", filter: &user.QueryFilter{Roles: []string{user.RoleTeacher}}, want: []string{"bob"}},
			{name: "ids", filter: &user.QueryFilter{IDs: []string{alice.ID, bob.ID}}, want: []string{"alice", "bob"}},
			{
				name:     "ordering",
				ordering: []core.DBOrdering{{Field: "username", Ascending: false}, {Field: "password"}},
				want:     []string{"zed", "bob", "alice"},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				users, err := r.usr.QueryUsers(ctx, tt.filter, tt.ordering)
				require.NoError(t, err)
				got := make([]string, 0, len(users))
				for _, u := range users {
					got = append(got, u.Username)
				}
				assert.Equal(t, tt.want, got)
			})
		}
	})

	t.Run("update", func(t *testing.T) {
		alice.Name = "Alice Wonder"
		_, err := r.usr.UpdateUser(ctx, alice)
		require.NoError(t, err)
		got, err := r.usr.GetUser(ctx, user.GetFilter{ID: alice.ID})
		require.NoError(t, err)
		assert.Equal(t, "Alice Wonder", got.Name)

		_, err = r.usr.UpdateUser(ctx, user.User{ID: "ghost", Username: "ghost", Role: user.RoleStudent})
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func TestClassRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, r.usr, "Teacher", "teacher", "", user.RoleTeacher)
	other := testutil.CreateUser(t, r.usr, "Other", "other", "", user.RoleTeacher)
	math := testutil.CreateClass(t, r.cls, teacher.ID, "Algebra I", "Mathematics", "MATH-AB12CD")
	_ = testutil.CreateClass(t, r.cls, other.ID, "Chemistry", "Science", "SCIE-ZZ99ZZ")

	t.Run("duplicate code", func(t *testing.T) {
		_, err := r.cls.CreateClass(ctx, class.Class{
			ID: uuid.New().String(), Name: "Dup", Subject: "Mathematics", GradeLevel: "10",
			ClassCode: "MATH-AB12CD", TeacherID: teacher.ID, CreatedAt: core.Now(),
		})
		assert.Equal(t, class.ErrCodeExists, err)
	})

	t.Run("get by code", func(t *testing.T) {
		got, err := r.cls.GetClass(ctx, class.GetFilter{Code: "MATH-AB12CD"})
		require.NoError(t, err)
		assert.Equal(t, math, got)

		_, err = r.cls.GetClass(ctx, class.GetFilter{Code: "NOPE-000000"})
		assert.Equal(t, class.ErrNotFound, err)
	})

	t.Run("query by teacher", func(t *testing.T) {
		classes, err := r.cls.QueryClasses(ctx, &class.QueryFilter{TeacherID: teacher.ID}, nil)
		require.NoError(t, err)
		require.Len(t, classes, 1)
		assert.Equal(t, math.ID, classes[0].ID)

		classes, err = r.cls.QueryClasses(ctx, &class.QueryFilter{Search: "chem"}, nil)
		require.NoError(t, err)
		require.Len(t, classes, 1)
		assert.Equal(t, "Chemistry", classes[0].Name)
	})

	t.Run("update", func(t *testing.T) {
		math.Description = null.StringFrom("Linear equations")
		_, err := r.cls.UpdateClass(ctx, math)
		require.NoError(t, err)
		got, err := r.cls.GetClass(ctx, class.GetFilter{ID: math.ID})
		require.NoError(t, err)
		assert.Equal(t, "Linear equations", got.Description.String)

		_, err = r.cls.UpdateClass(ctx, class.Class{ID: "ghost"})
		assert.Equal(t, class.ErrNotFound, err)
	})
}

func TestClassRepository_DeleteClass(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, r.usr, "Teacher", "teacher", "", user.RoleTeacher)
	student := testutil.CreateUser(t, r.usr, "Student", "student", "", user.RoleStudent)
	doomed := testutil.CreateClass(t, r.cls, teacher.ID, "Doomed", "History", "HIST-000001")
	kept := testutil.CreateClass(t, r.cls, teacher.ID, "Kept", "History", "HIST-000002")

	for _, cls := range []class.Class{doomed, kept} {
		testutil.Enroll(t, r.enr, student.ID, cls.ID)
		a := testutil.CreateAssessment(t, r.grd, cls.ID, "Quiz", "2024-01-10")
		_, err := r.grd.UpsertGrade(ctx, grade.Grade{ID: uuid.New().String(), AssessmentID: a.ID, StudentID: student.ID, Score: 90, UpdatedAt: core.Now()})
		require.NoError(t, err)
		now := core.Now()
		_, err = r.att.UpsertAttendance(ctx, attendance.Record{
			ID: uuid.New().String(), ClassID: cls.ID, StudentID: student.ID, Date: "2024-01-10",
			Status: attendance.StatusPresent, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
	}

	err := core.RunInTx(ctx, r.db, func(tx core.DBExecutor) error {
		return r.cls.DeleteClass(ctx, doomed.ID, tx)
	})
	require.NoError(t, err)

	for _, table := range []string{"classes", "enrollments", "attendance", "assessments", "grades"} {
		if n := count(t, r.db, table); n != 1 {
			t.Errorf("%s count = %d; want 1", table, n)
		}
	}

	err = r.cls.DeleteClass(ctx, doomed.ID)
	assert.Equal(t, class.ErrNotFound, err)
}

func TestEnrollmentRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, r.usr, "Ms Frizzle", "frizzle", "", user.RoleTeacher)
	arnold := testutil.CreateUser(t, r.usr, "Arnold", "arnold", "", user.RoleStudent)
	wanda := testutil.CreateUser(t, r.usr, "Wanda", "wanda", "", user.RoleStudent)
	bio := testutil.CreateClass(t, r.cls, teacher.ID, "Biology", "Science", "SCIE-B10B10")
	geo := testutil.CreateClass(t, r.cls, teacher.ID, "Geology", "Science", "SCIE-GE0GE0")

	first := testutil.Enroll(t, r.enr, arnold.ID, bio.ID)
	time.Sleep(time.Millisecond)
	testutil.Enroll(t, r.enr, arnold.ID, geo.ID)
	testutil.Enroll(t, r.enr, wanda.ID, bio.ID)

	t.Run("idempotent", func(t *testing.T) {
		again := testutil.Enroll(t, r.enr, arnold.ID, bio.ID)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, 3, count(t, r.db, "enrollments"))
	})

	t.Run("enrolled classes", func(t *testing.T) {
		classes, err := r.enr.QueryEnrolledClasses(ctx, arnold.ID)
		require.NoError(t, err)
		require.Len(t, classes, 2)
		assert.Equal(t, bio.ID, classes[0].ID)
		assert.Equal(t, geo.ID, classes[1].ID)
		assert.Equal(t, "Ms Frizzle", classes[0].TeacherName)
	})

	t.Run("class students", func(t *testing.T) {
		students, err := r.enr.QueryClassStudents(ctx, bio.ID)
		require.NoError(t, err)
		require.Len(t, students, 2)
		assert.Equal(t, "arnold", students[0].Username)
		assert.Equal(t, "wanda", students[1].Username)
	})
}

func TestEnrollmentRepository_sameInstant(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, r.usr, "Ms Frizzle", "frizzle", "", user.RoleTeacher)
	arnold := testutil.CreateUser(t, r.usr, "Arnold", "arnold", "", user.RoleStudent)
	zoology := testutil.CreateClass(t, r.cls, teacher.ID, "Zoology", "Science", "SCIE-Z00Z00")
	art := testutil.CreateClass(t, r.cls, teacher.ID, "Art", "Art", "ART-A00A00")
	music := testutil.CreateClass(t, r.cls, teacher.ID, "Music", "Music", "MUSI-M00M00")

	// enrolled in the same microsecond: ties fall back to the class name
	at := core.Now()
	for _, cls := range []class.Class{zoology, art, music} {
		_, err := r.enr.CreateEnrollment(ctx, enrollment.Enrollment{
			ID:         uuid.New().String(),
			StudentID:  arnold.ID,
			ClassID:    cls.ID,
			EnrolledAt: at,
		})
		require.NoError(t, err)
	}

	for i := 0; i < 3; i++ {
		classes, err := r.enr.QueryEnrolledClasses(ctx, arnold.ID)
		require.NoError(t, err)
		require.Len(t, classes, 3)
		assert.Equal(t, []string{"Art", "Music", "Zoology"}, []string{classes[0].Name, classes[1].Name, classes[2].Name})
	}
}

func TestAttendanceRepository_UpsertAttendance(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, r.usr, "Teacher", "teacher", "", user.RoleTeacher)
	student := testutil.CreateUser(t, r.usr, "Student", "student", "", user.RoleStudent)
	cls := testutil.CreateClass(t, r.cls, teacher.ID, "Art", "Art", "ART-A1A1A1")

	now := core.Now()
	rec := attendance.Record{
		ID: uuid.New().String(), ClassID: cls.ID, StudentID: student.ID, Date: "2024-02-01",
		Status: attendance.StatusAbsent, CreatedAt: now, UpdatedAt: now,
	}
	created, err := r.att.UpsertAttendance(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, created.Status)

	later := now.Add(time.Minute)
	rec.ID = uuid.New().String()
	rec.Status = attendance.StatusExcused
	rec.Comment = null.StringFrom("doctor's note")
	rec.CreatedAt, rec.UpdatedAt = later, later
	updated, err := r.att.UpsertAttendance(ctx, rec)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, attendance.StatusExcused, updated.Status)
	assert.Equal(t, "doctor's note", updated.Comment.String)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)

	records, err := r.att.QueryAttendance(ctx, attendance.QueryFilter{ClassID: cls.ID, Date: "2024-02-01"})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = r.att.QueryAttendance(ctx, attendance.QueryFilter{ClassID: cls.ID, Date: "2024-02-02"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGradeRepository(t *testing.T) {
	r := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, r.usr, "Teacher", "teacher", "", user.RoleTeacher)
	student := testutil.CreateUser(t, r.usr, "Student", "student", "", user.RoleStudent)
	cls := testutil.CreateClass(t, r.cls, teacher.ID, "Physics", "Physics", "PHYS-P1P1P1")
	other := testutil.CreateClass(t, r.cls, teacher.ID, "Music", "Music", "MUSI-M1M1M1")

	midterm := testutil.CreateAssessment(t, r.grd, cls.ID, "Midterm", "2024-03-15")
	quiz := testutil.CreateAssessment(t, r.grd, cls.ID, "Quiz 1", "2024-03-01")
	recital := testutil.CreateAssessment(t, r.grd, other.ID, "Recital", "2024-03-02")

	_, err := r.grd.GetAssessment(ctx, "nope")
	assert.Equal(t, grade.ErrAssessmentNotFound, errors.Cause(err))

	assessments, err := r.grd.QueryAssessments(ctx, cls.ID)
	require.NoError(t, err)
	require.Len(t, assessments, 2)
	assert.Equal(t, quiz.ID, assessments[0].ID)

	upsert := func(a grade.Assessment, score float64) grade.Grade {
		g, err := r.grd.UpsertGrade(ctx, grade.Grade{ID: uuid.New().String(), AssessmentID: a.ID, StudentID: student.ID, Score: score, UpdatedAt: core.Now()})
		require.NoError(t, err)
		return g
	}
	first := upsert(midterm, 70)
	second := upsert(midterm, 88)
	upsert(quiz, 85)
	upsert(recital, 100)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 88.0, second.Score)

	details, err := r.grd.QueryGrades(ctx, grade.QueryFilter{StudentID: student.ID, ClassID: cls.ID})
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "Quiz 1", details[0].AssessmentName)
	assert.Equal(t, "2024-03-15", details[1].AssessmentDate)
	assert.Equal(t, cls.ID, details[1].ClassID)

	details, err = r.grd.QueryGrades(ctx, grade.QueryFilter{AssessmentID: recital.ID})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, 100.0, details[0].Score)
}
