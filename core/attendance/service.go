package attendance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/user"
)

const errStudentNotFound = "student not found"

type (
	Repository interface {
		// UpsertAttendance inserts rec, or overwrites the status and comment of the existing
		// Record for the same (class, student, date).
		UpsertAttendance(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)
		// QueryAttendance returns the records matching all non-empty filter fields, ordered by date.
		QueryAttendance(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Record, error)
	}

	Service struct {
		db     core.DB
		repo   Repository
		clsSvc *class.Service
		usrSvc *user.Service
	}
)

func NewService(db core.DB, repo Repository, clsSvc *class.Service, usrSvc *user.Service) *Service {
	return &Service{
		db:     db,
		repo:   repo,
		clsSvc: clsSvc,
		usrSvc: usrSvc,
	}
}

// refChecker verifies that classes and students exist, remembering what it already checked.
type refChecker struct {
	svc      *Service
	classes  map[string]bool
	students map[string]bool
}

func (svc *Service) newRefChecker() *refChecker {
	return &refChecker{svc: svc, classes: make(map[string]bool), students: make(map[string]bool)}
}

func (rc *refChecker) check(ctx context.Context, nr NewRecord, fieldPrefix string) error {
	if !rc.classes[nr.ClassID] {
		if _, err := rc.svc.clsSvc.Get(ctx, nr.ClassID); err != nil {
			return errors.Wrap(err, "finding class")
		}
		rc.classes[nr.ClassID] = true
	}
	if !rc.students[nr.StudentID] {
		if _, err := rc.svc.usrSvc.GetWithRole(ctx, nr.StudentID, user.RoleStudent); err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return core.NewValidationError(nil, core.FieldError{Field: fieldPrefix + "studentId", Error: errStudentNotFound})
			}
			return errors.Wrap(err, "finding student")
		}
		rc.students[nr.StudentID] = true
	}
	return nil
}

func newRecord(nr NewRecord) Record {
	now := core.Now()
	return Record{
		ID:        uuid.New().String(),
		ClassID:   nr.ClassID,
		StudentID: nr.StudentID,
		Date:      nr.Date,
		Status:    nr.Status,
		Comment:   null.NewString(nr.Comment, nr.Comment != ""),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Record creates or overwrites the attendance of a student in a class on a given day.
func (svc *Service) Record(ctx context.Context, nr NewRecord) (Record, error) {
	if err := svc.newRefChecker().check(ctx, nr, ""); err != nil {
		return Record{}, err
	}
	rec, err := svc.repo.UpsertAttendance(ctx, newRecord(nr))
	if err != nil {
		return Record{}, errors.Wrap(err, "upserting attendance")
	}
	return rec, nil
}

// RecordBulk checks every element first, then applies all the upserts in one transaction:
// either the whole batch is stored or nothing is.
func (svc *Service) RecordBulk(ctx context.Context, nrs []NewRecord) ([]Record, error) {
	rc := svc.newRefChecker()
	for i, nr := range nrs {
		if err := rc.check(ctx, nr, fmt.Sprintf("[%d].", i)); err != nil {
			return nil, err
		}
	}

	records := make([]Record, 0, len(nrs))
	err := core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		for _, nr := range nrs {
			rec, err := svc.repo.UpsertAttendance(ctx, newRecord(nr), tx)
			if err != nil {
				return errors.Wrap(err, "upserting attendance")
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// QueryClass returns the attendance of a class, optionally restricted to one day.
func (svc *Service) QueryClass(ctx context.Context, classID, date string) ([]Record, error) {
	if _, err := svc.clsSvc.Get(ctx, classID); err != nil {
		return nil, errors.Wrap(err, "finding class")
	}
	return svc.repo.QueryAttendance(ctx, QueryFilter{ClassID: classID, Date: date})
}

// QueryStudent returns the attendance of a student in a class.
func (svc *Service) QueryStudent(ctx context.Context, studentID, classID string) ([]Record, error) {
	return svc.repo.QueryAttendance(ctx, QueryFilter{ClassID: classID, StudentID: studentID})
}

// StudentReport returns the attendance records of a student in a class with their Summary.
func (svc *Service) StudentReport(ctx context.Context, studentID, classID string) (Report, error) {
	if _, err := svc.clsSvc.Get(ctx, classID); err != nil {
		return Report{}, errors.Wrap(err, "finding class")
	}
	records, err := svc.QueryStudent(ctx, studentID, classID)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying attendance")
	}
	if records == nil {
		records = []Record{}
	}
	return Report{Records: records, Summary: Summarize(records)}, nil
}
