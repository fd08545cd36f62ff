package enrollment

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/user"
)

const summaryConcurrency = 4

const errStudentNotFound = "student not found"

type (
	Repository interface {
		// CreateEnrollment stores enr unless the student is already enrolled in the class,
		// and returns the stored Enrollment in both cases.
		CreateEnrollment(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (Enrollment, error)
		// QueryEnrolledClasses returns the classes of a student, oldest enrollment first.
		QueryEnrolledClasses(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]EnrolledClass, error)
		// QueryClassStudents returns the students enrolled in a class, ordered by name.
		QueryClassStudents(ctx context.Context, classID string, exec ...core.DBExecutor) ([]user.User, error)
	}

	Service struct {
		repo   Repository
		usrSvc *user.Service
		clsSvc *class.Service
		attSvc *attendance.Service
		grdSvc *grade.Service
	}
)

func NewService(
	repo Repository,
	usrSvc *user.Service,
	clsSvc *class.Service,
	attSvc *attendance.Service,
	grdSvc *grade.Service,
) *Service {
	return &Service{
		repo:   repo,
		usrSvc: usrSvc,
		clsSvc: clsSvc,
		attSvc: attSvc,
		grdSvc: grdSvc,
	}
}

// Join enrolls a student in the class with the given code.
// Joining a class twice returns the existing Enrollment.
func (svc *Service) Join(ctx context.Context, jc JoinClass) (Enrollment, error) {
	cls, err := svc.clsSvc.GetByCode(ctx, jc.ClassCode)
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "finding class by code")
	}
	if _, err = svc.usrSvc.GetWithRole(ctx, jc.StudentID, user.RoleStudent); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Enrollment{}, core.NewValidationError(nil, core.FieldError{Field: "studentId", Error: errStudentNotFound})
		}
		return Enrollment{}, errors.Wrap(err, "finding student")
	}

	enr, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		ID:         uuid.New().String(),
		StudentID:  jc.StudentID,
		ClassID:    cls.ID,
		EnrolledAt: core.Now(),
	})
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enr, nil
}

// QueryByStudent returns the classes of a student with their attendance rate and current grade.
// Summaries are computed concurrently, one class per goroutine; the result keeps enrollment order.
func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]ClassSummary, error) {
	classes, err := svc.repo.QueryEnrolledClasses(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrolled classes")
	}

	summaries := make([]ClassSummary, len(classes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for i := range classes {
		i := i
		g.Go(func() error {
			summary, err := svc.summarize(gctx, studentID, classes[i])
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (svc *Service) summarize(ctx context.Context, studentID string, cls EnrolledClass) (ClassSummary, error) {
	records, err := svc.attSvc.QueryStudent(ctx, studentID, cls.ID)
	if err != nil {
		return ClassSummary{}, errors.Wrapf(err, "querying attendance of class %s", cls.ID)
	}
	grades, err := svc.grdSvc.QueryStudent(ctx, studentID, cls.ID)
	if err != nil {
		return ClassSummary{}, errors.Wrapf(err, "querying grades of class %s", cls.ID)
	}
	return ClassSummary{
		EnrolledClass:  cls,
		AttendanceRate: attendance.Summarize(records).Rate,
		CurrentGrade:   grade.Average(grade.Scores(grades)),
	}, nil
}

// QueryStudents returns the students enrolled in a class.
func (svc *Service) QueryStudents(ctx context.Context, classID string) ([]user.User, error) {
	if _, err := svc.clsSvc.Get(ctx, classID); err != nil {
		return nil, errors.Wrap(err, "finding class")
	}
	return svc.repo.QueryClassStudents(ctx, classID)
}
