package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/user"
)

type enrollmentRow struct {
	ID         string    `db:"id"`
	StudentID  string    `db:"student_id"`
	ClassID    string    `db:"class_id"`
	EnrolledAt time.Time `db:"enrolled_at"`
}

type enrolledClassRow struct {
	classRow
	TeacherName string    `db:"teacher_name"`
	EnrolledAt  time.Time `db:"enrolled_at"`
}

type EnrollmentRepository struct {
	repository
}

var _ enrollment.Repository = (*EnrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec core.DBExecutor) *EnrollmentRepository {
	return &EnrollmentRepository{repository{exec: exec}}
}

func (repo EnrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	exe := repo.getExec(exec)
	_, err := repo.execStmt(ctx, exe,
		`INSERT INTO enrollments (id, student_id, class_id, enrolled_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (student_id, class_id) DO NOTHING`,
		enr.ID, enr.StudentID, enr.ClassID, enr.EnrolledAt.UTC())
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}

	var row enrollmentRow
	err = repo.get(ctx, exe, errors.New("enrollment vanished"), &row,
		"SELECT id, student_id, class_id, enrolled_at FROM enrollments WHERE student_id = ? AND class_id = ?",
		enr.StudentID, enr.ClassID)
	if err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "finding enrollment")
	}
	return enrollment.Enrollment{
		ID:         row.ID,
		StudentID:  row.StudentID,
		ClassID:    row.ClassID,
		EnrolledAt: row.EnrolledAt.UTC(),
	}, nil
}

func (repo EnrollmentRepository) QueryEnrolledClasses(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]enrollment.EnrolledClass, error) {
	const q = `SELECT c.id, c.name, c.subject, c.description, c.grade_level, c.class_code, c.teacher_id, c.created_at,
		t.name AS teacher_name, e.enrolled_at
		FROM enrollments e
		JOIN classes c ON c.id = e.class_id
		JOIN users t ON t.id = c.teacher_id
		WHERE e.student_id = ?
		ORDER BY e.enrolled_at ASC, c.name ASC, e.id ASC`

	var rows []enrolledClassRow
	if err := repo.selectAll(ctx, repo.getExec(exec), &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying enrolled classes")
	}

	classes := make([]enrollment.EnrolledClass, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, enrollment.EnrolledClass{
			Class:       r.class(),
			TeacherName: r.TeacherName,
			EnrolledAt:  r.EnrolledAt.UTC(),
		})
	}
	return classes, nil
}

func (repo EnrollmentRepository) QueryClassStudents(ctx context.Context, classID string, exec ...core.DBExecutor) ([]user.User, error) {
	const q = `SELECT u.id, u.username, u.password, u.role, u.name, u.created_at
		FROM enrollments e
		JOIN users u ON u.id = e.student_id
		WHERE e.class_id = ?
		ORDER BY u.name ASC`

	var rows []userRow
	if err := repo.selectAll(ctx, repo.getExec(exec), &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying class students")
	}
	return usersFromRows(rows), nil
}
