package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("user not found")
	ErrUsernameExists     = errors.New("a user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		// CreateUser returns ErrUsernameExists if the username is already taken.
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUser(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Username.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]User, error)
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new User. A taken username is reported as a validation error on "username".
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Username:  nu.Username,
		Name:      nu.Name,
		Role:      nu.Role,
		CreatedAt: core.Now(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrUsernameExists {
			return User{}, core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

// Authenticate returns the User matching the credentials.
// An unknown username, a wrong password and a role mismatch all yield ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	usr, err := svc.GetByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(creds.Password); err != nil || usr.Role != creds.Role {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(uname, true /* lower */)})
}

// GetWithRole returns the User with the given ID, or ErrNotFound if it does not have the role.
func (svc *Service) GetWithRole(ctx context.Context, id, role string) (User, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if usr.Role != role {
		return User{}, ErrNotFound
	}
	return usr, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

// SetPassword replaces the password of the User with the given username.
func (svc *Service) SetPassword(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.UpdateUser(ctx, usr)
}

// AddOrUpdate registers the User or, if the username is taken, updates its name, role and password.
func (svc *Service) AddOrUpdate(ctx context.Context, nu NewUser) (User, error) {
	usr, err := svc.GetByUsername(ctx, nu.Username)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return svc.Register(ctx, nu)
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	usr.Name = nu.Name
	usr.Role = nu.Role
	if err = usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.UpdateUser(ctx, usr)
}
