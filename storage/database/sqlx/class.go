package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/storage/database"
)

const classColumns = "id, name, subject, description, grade_level, class_code, teacher_id, created_at"

type classRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Subject     string      `db:"subject"`
	Description null.String `db:"description"`
	GradeLevel  string      `db:"grade_level"`
	ClassCode   string      `db:"class_code"`
	TeacherID   string      `db:"teacher_id"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (r classRow) class() class.Class {
	return class.Class{
		ID:          r.ID,
		Name:        r.Name,
		Subject:     r.Subject,
		Description: r.Description,
		GradeLevel:  r.GradeLevel,
		ClassCode:   r.ClassCode,
		TeacherID:   r.TeacherID,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type ClassRepository struct {
	repository
}

var _ class.Repository = (*ClassRepository)(nil) // interface compliance check

func NewClassRepository(exec core.DBExecutor) *ClassRepository {
	return &ClassRepository{repository{exec: exec}}
}

func (repo ClassRepository) CreateClass(ctx context.Context, cls class.Class, exec ...core.DBExecutor) (class.Class, error) {
	cls.CreatedAt = cls.CreatedAt.UTC()
	_, err := repo.execStmt(ctx, repo.getExec(exec),
		"INSERT INTO classes ("+classColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		cls.ID, cls.Name, cls.Subject, cls.Description, cls.GradeLevel, cls.ClassCode, cls.TeacherID, cls.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "class_code") {
			return class.Class{}, class.ErrCodeExists
		}
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo ClassRepository) GetClass(ctx context.Context, filter class.GetFilter, exec ...core.DBExecutor) (class.Class, error) {
	var where whereClause
	switch {
	case filter.ID != "":
		where.add("id = ?", filter.ID)
	case filter.Code != "":
		where.add("class_code = ?", filter.Code)
	default:
		return class.Class{}, class.ErrNotFound
	}

	var row classRow
	err := repo.get(ctx, repo.getExec(exec), class.ErrNotFound, &row, "SELECT "+classColumns+" FROM classes"+where.String(), where.args...)
	if err != nil {
		return class.Class{}, wrapf(err, "finding class")
	}
	return row.class(), nil
}

var classOrderings = map[string]string{
	"name":       "name",
	"subject":    "subject",
	"gradeLevel": "grade_level",
	"createdAt":  "created_at",
}

func (repo ClassRepository) QueryClasses(ctx context.Context, filter *class.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]class.Class, error) {
	var where whereClause
	if filter != nil {
		if filter.TeacherID != "" {
			where.add("teacher_id = ?", filter.TeacherID)
		}
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			where.add("(LOWER(name) LIKE LOWER(?) OR LOWER(subject) LIKE LOWER(?))", val, val)
		}
	}

	var rows []classRow
	q := "SELECT " + classColumns + " FROM classes" + where.String() + orderBy(ordering, classOrderings, "created_at DESC")
	if err := repo.selectAll(ctx, repo.getExec(exec), &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}

	classes := make([]class.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.class())
	}
	return classes, nil
}

func (repo ClassRepository) UpdateClass(ctx context.Context, cls class.Class, exec ...core.DBExecutor) (class.Class, error) {
	cnt, err := repo.execStmt(ctx, repo.getExec(exec),
		"UPDATE classes SET name = ?, subject = ?, description = ?, grade_level = ? WHERE id = ?",
		cls.Name, cls.Subject, cls.Description, cls.GradeLevel, cls.ID)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if cnt == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return cls, nil
}

// classCascade lists the statements removing everything owned by a class, children first.
var classCascade = []struct{ what, query string }{
	{"enrollments", "DELETE FROM enrollments WHERE class_id = ?"},
	{"attendance", "DELETE FROM attendance WHERE class_id = ?"},
	{"grades", "DELETE FROM grades WHERE assessment_id IN (SELECT id FROM assessments WHERE class_id = ?)"},
	{"assessments", "DELETE FROM assessments WHERE class_id = ?"},
}

func (repo ClassRepository) DeleteClass(ctx context.Context, id string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	for _, step := range classCascade {
		if _, err := repo.execStmt(ctx, exe, step.query, id); err != nil {
			return errors.Wrapf(err, "deleting %s of class %s", step.what, id)
		}
	}

	cnt, err := repo.execStmt(ctx, exe, "DELETE FROM classes WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	if cnt == 0 {
		return class.ErrNotFound
	}
	return nil
}
