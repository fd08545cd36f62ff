package class

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

const defaultCodeMaxAttempts = 5

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("class not found")
	ErrCodeExists    = errors.New("a class with this code already exists")
	ErrCodeExhausted = errors.New("could not generate a unique class code")
	errNotATeacher   = "teacher not found"
)

type (
	Repository interface {
		// CreateClass returns ErrCodeExists if the class code is already taken.
		CreateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		GetClass(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Class, error)
		QueryClasses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Class, error)
		// UpdateClass returns ErrNotFound if no Class has cls.ID.
		UpdateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		// DeleteClass removes the Class with its enrollments, attendance, assessments and grades.
		// It returns ErrNotFound if no Class has the given ID.
		DeleteClass(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service struct {
		db              core.DB
		repo            Repository
		usrSvc          *user.Service
		codeMaxAttempts int
	}
)

func NewService(db core.DB, repo Repository, usrSvc *user.Service, conf *core.Config) *Service {
	attempts := conf.Class.CodeMaxAttempts
	if attempts <= 0 {
		attempts = defaultCodeMaxAttempts
	}
	return &Service{
		db:              db,
		repo:            repo,
		usrSvc:          usrSvc,
		codeMaxAttempts: attempts,
	}
}

// Create creates a Class owned by nc.TeacherID with a freshly generated class code.
// A colliding code is regenerated up to codeMaxAttempts times.
func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	if _, err := svc.usrSvc.GetWithRole(ctx, nc.TeacherID, user.RoleTeacher); err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Class{}, core.NewValidationError(nil, core.FieldError{Field: "teacherId", Error: errNotATeacher})
		}
		return Class{}, errors.Wrap(err, "finding teacher")
	}

	cls := Class{
		ID:         uuid.New().String(),
		Name:       nc.Name,
		Subject:    nc.Subject,
		GradeLevel: nc.GradeLevel,
		TeacherID:  nc.TeacherID,
		CreatedAt:  core.Now(),
	}
	cls.Description = null.NewString(nc.Description, nc.Description != "")

	for attempt := 1; attempt <= svc.codeMaxAttempts; attempt++ {
		code, err := GenerateCode(nc.Subject)
		if err != nil {
			return Class{}, errors.Wrap(err, "generating class code")
		}
		cls.ClassCode = code

		created, err := svc.repo.CreateClass(ctx, cls)
		if err == nil {
			return created, nil
		}
		if errors.Cause(err) != ErrCodeExists {
			return Class{}, errors.Wrap(err, "creating class")
		}
	}
	return Class{}, ErrCodeExhausted
}

func (svc *Service) Get(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClass(ctx, GetFilter{ID: id})
}

// GetByCode looks a Class up by its class code; the lookup ignores case and surrounding spaces.
func (svc *Service) GetByCode(ctx context.Context, code string) (Class, error) {
	code = core.CleanString(code)
	if code == "" {
		return Class{}, ErrNotFound
	}
	return svc.repo.GetClass(ctx, GetFilter{Code: strings.ToUpper(code)})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, filter, ordering)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	cls, err := svc.Get(ctx, id)
	if err != nil {
		return Class{}, err
	}
	return svc.repo.UpdateClass(ctx, uc.apply(cls))
}

// Delete removes the Class and everything that depends on it in a single transaction.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		return svc.repo.DeleteClass(ctx, id, tx)
	})
}
