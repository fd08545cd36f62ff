package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
)

// Roles
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var AllRoles = []string{RoleTeacher, RoleStudent}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username string `json:"username" validate:"required,min=3,max=150,alphanum_"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,max=255"`
	Role     string `json:"role" validate:"required,userrole"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	return validate.Struct(nu)
}

// Credentials are checked on login. Role must match the User's role.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Username = core.CleanString(c.Username, true /* lower */)
	c.Role = core.CleanString(c.Role, true /* lower */)
	return validate.Struct(c)
}

type GetFilter struct {
	ID       string
	Username string
}

type QueryFilter struct {
	Search string   `query:"search"`
	Roles  []string `query:"role"`
	IDs    []string `query:"-"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
