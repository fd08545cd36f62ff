package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/grade"
)

const (
	assessmentColumns = "id, class_id, name, date, created_at"
	gradeColumns      = "id, assessment_id, student_id, score, comment, updated_at"
)

type assessmentRow struct {
	ID        string    `db:"id"`
	ClassID   string    `db:"class_id"`
	Name      string    `db:"name"`
	Date      string    `db:"date"`
	CreatedAt time.Time `db:"created_at"`
}

func (r assessmentRow) assessment() grade.Assessment {
	return grade.Assessment{
		ID:        r.ID,
		ClassID:   r.ClassID,
		Name:      r.Name,
		Date:      r.Date,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type gradeRow struct {
	ID           string      `db:"id"`
	AssessmentID string      `db:"assessment_id"`
	StudentID    string      `db:"student_id"`
	Score        float64     `db:"score"`
	Comment      null.String `db:"comment"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (r gradeRow) grade() grade.Grade {
	return grade.Grade{
		ID:           r.ID,
		AssessmentID: r.AssessmentID,
		StudentID:    r.StudentID,
		Score:        r.Score,
		Comment:      r.Comment,
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type gradeDetailRow struct {
	gradeRow
	ClassID        string `db:"class_id"`
	AssessmentName string `db:"assessment_name"`
	AssessmentDate string `db:"assessment_date"`
}

type GradeRepository struct {
	repository
}

var _ grade.Repository = (*GradeRepository)(nil) // interface compliance check

func NewGradeRepository(exec core.DBExecutor) *GradeRepository {
	return &GradeRepository{repository{exec: exec}}
}

// Assessments

func (repo GradeRepository) CreateAssessment(ctx context.Context, a grade.Assessment, exec ...core.DBExecutor) (grade.Assessment, error) {
	a.CreatedAt = a.CreatedAt.UTC()
	_, err := repo.execStmt(ctx, repo.getExec(exec),
		"INSERT INTO assessments ("+assessmentColumns+") VALUES (?, ?, ?, ?, ?)",
		a.ID, a.ClassID, a.Name, a.Date, a.CreatedAt)
	if err != nil {
		return grade.Assessment{}, errors.Wrap(err, "inserting assessment")
	}
	return a, nil
}

func (repo GradeRepository) GetAssessment(ctx context.Context, id string, exec ...core.DBExecutor) (grade.Assessment, error) {
	var row assessmentRow
	err := repo.get(ctx, repo.getExec(exec), grade.ErrAssessmentNotFound, &row,
		"SELECT "+assessmentColumns+" FROM assessments WHERE id = ?", id)
	if err != nil {
		return grade.Assessment{}, wrapf(err, "finding assessment")
	}
	return row.assessment(), nil
}

func (repo GradeRepository) QueryAssessments(ctx context.Context, classID string, exec ...core.DBExecutor) ([]grade.Assessment, error) {
	var rows []assessmentRow
	err := repo.selectAll(ctx, repo.getExec(exec), &rows,
		"SELECT "+assessmentColumns+" FROM assessments WHERE class_id = ? ORDER BY date ASC, created_at ASC", classID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assessments")
	}

	assessments := make([]grade.Assessment, 0, len(rows))
	for _, r := range rows {
		assessments = append(assessments, r.assessment())
	}
	return assessments, nil
}

// Grades

func (repo GradeRepository) UpsertGrade(ctx context.Context, g grade.Grade, exec ...core.DBExecutor) (grade.Grade, error) {
	exe := repo.getExec(exec)
	_, err := repo.execStmt(ctx, exe,
		`INSERT INTO grades (`+gradeColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (assessment_id, student_id)
		DO UPDATE SET score = excluded.score, comment = excluded.comment, updated_at = excluded.updated_at`,
		g.ID, g.AssessmentID, g.StudentID, g.Score, g.Comment, g.UpdatedAt.UTC())
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "upserting grade")
	}

	var row gradeRow
	err = repo.get(ctx, exe, errors.New("grade vanished"), &row,
		"SELECT "+gradeColumns+" FROM grades WHERE assessment_id = ? AND student_id = ?",
		g.AssessmentID, g.StudentID)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "finding grade")
	}
	return row.grade(), nil
}

func (repo GradeRepository) QueryGrades(ctx context.Context, filter grade.QueryFilter, exec ...core.DBExecutor) ([]grade.Detail, error) {
	var where whereClause
	if filter.AssessmentID != "" {
		where.add("g.assessment_id = ?", filter.AssessmentID)
	}
	if filter.StudentID != "" {
		where.add("g.student_id = ?", filter.StudentID)
	}
	if filter.ClassID != "" {
		where.add("a.class_id = ?", filter.ClassID)
	}

	q := `SELECT g.id, g.assessment_id, g.student_id, g.score, g.comment, g.updated_at,
		a.class_id, a.name AS assessment_name, a.date AS assessment_date
		FROM grades g
		JOIN assessments a ON a.id = g.assessment_id` + where.String() + `
		ORDER BY a.date ASC, a.created_at ASC`

	var rows []gradeDetailRow
	if err := repo.selectAll(ctx, repo.getExec(exec), &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}

	details := make([]grade.Detail, 0, len(rows))
	for _, r := range rows {
		details = append(details, grade.Detail{
			Grade:          r.grade(),
			ClassID:        r.ClassID,
			AssessmentName: r.AssessmentName,
			AssessmentDate: r.AssessmentDate,
		})
	}
	return details, nil
}
