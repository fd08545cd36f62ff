package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
)

const attendanceColumns = "id, class_id, student_id, date, status, comment, created_at, updated_at"

type attendanceRow struct {
	ID        string      `db:"id"`
	ClassID   string      `db:"class_id"`
	StudentID string      `db:"student_id"`
	Date      string      `db:"date"`
	Status    string      `db:"status"`
	Comment   null.String `db:"comment"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (r attendanceRow) record() attendance.Record {
	return attendance.Record{
		ID:        r.ID,
		ClassID:   r.ClassID,
		StudentID: r.StudentID,
		Date:      r.Date,
		Status:    r.Status,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type AttendanceRepository struct {
	repository
}

var _ attendance.Repository = (*AttendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *AttendanceRepository {
	return &AttendanceRepository{repository{exec: exec}}
}

func (repo AttendanceRepository) UpsertAttendance(ctx context.Context, rec attendance.Record, exec ...core.DBExecutor) (attendance.Record, error) {
	exe := repo.getExec(exec)
	_, err := repo.execStmt(ctx, exe,
		`INSERT INTO attendance (`+attendanceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (class_id, student_id, date)
		DO UPDATE SET status = excluded.status, comment = excluded.comment, updated_at = excluded.updated_at`,
		rec.ID, rec.ClassID, rec.StudentID, rec.Date, rec.Status, rec.Comment, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "upserting attendance")
	}

	var row attendanceRow
	err = repo.get(ctx, exe, errors.New("attendance record vanished"), &row,
		"SELECT "+attendanceColumns+" FROM attendance WHERE class_id = ? AND student_id = ? AND date = ?",
		rec.ClassID, rec.StudentID, rec.Date)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "finding attendance")
	}
	return row.record(), nil
}

func (repo AttendanceRepository) QueryAttendance(ctx context.Context, filter attendance.QueryFilter, exec ...core.DBExecutor) ([]attendance.Record, error) {
	var where whereClause
	if filter.ClassID != "" {
		where.add("class_id = ?", filter.ClassID)
	}
	if filter.StudentID != "" {
		where.add("student_id = ?", filter.StudentID)
	}
	if filter.Date != "" {
		where.add("date = ?", filter.Date)
	}

	var rows []attendanceRow
	q := "SELECT " + attendanceColumns + " FROM attendance" + where.String() + " ORDER BY date ASC, created_at ASC"
	if err := repo.selectAll(ctx, repo.getExec(exec), &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}

	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.record())
	}
	return records, nil
}
