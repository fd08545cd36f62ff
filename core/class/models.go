package class

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

type Class struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Subject     string      `json:"subject"`
	Description null.String `json:"description"`
	GradeLevel  string      `json:"gradeLevel"`
	ClassCode   string      `json:"classCode"`
	TeacherID   string      `json:"teacherId"`
	CreatedAt   time.Time   `json:"createdAt"` // UTC
}

// NewClass contains information needed to create a new Class.
// The class code is always generated server-side.
type NewClass struct {
	TeacherID   string `json:"teacherId" validate:"required"`
	Name        string `json:"name" validate:"required,max=255"`
	Subject     string `json:"subject" validate:"required,max=100"`
	Description string `json:"description"`
	GradeLevel  string `json:"gradeLevel" validate:"required,max=50"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.TeacherID = core.CleanString(nc.TeacherID)
	nc.Name = core.CleanString(nc.Name)
	nc.Subject = core.CleanString(nc.Subject)
	nc.Description = core.CleanString(nc.Description)
	nc.GradeLevel = core.CleanString(nc.GradeLevel)
	return validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing Class.
// Nil fields keep their current value; an empty description clears it.
type UpdateClass struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Subject     *string `json:"subject" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	GradeLevel  *string `json:"gradeLevel" validate:"omitempty,min=1,max=50"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	for _, fld := range []*string{uc.Name, uc.Subject, uc.Description, uc.GradeLevel} {
		if fld != nil {
			*fld = core.CleanString(*fld)
		}
	}
	return validate.Struct(uc)
}

// apply returns a copy of cls with the provided fields changed.
func (uc UpdateClass) apply(cls Class) Class {
	if uc.Name != nil && *uc.Name != "" {
		cls.Name = *uc.Name
	}
	if uc.Subject != nil && *uc.Subject != "" {
		cls.Subject = *uc.Subject
	}
	if uc.Description != nil {
		cls.Description = null.NewString(*uc.Description, *uc.Description != "")
	}
	if uc.GradeLevel != nil && *uc.GradeLevel != "" {
		cls.GradeLevel = *uc.GradeLevel
	}
	return cls
}

type GetFilter struct {
	ID   string
	Code string
}

type QueryFilter struct {
	TeacherID string `query:"teacherId"`
	Search    string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.TeacherID = core.CleanString(qf.TeacherID)
	qf.Search = core.CleanString(qf.Search)
}
