package grade

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

// Assessment is a gradable event of a class (quiz, exam, ...).
type Assessment struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"classId"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`      // YYYY-MM-DD
	CreatedAt time.Time `json:"createdAt"` // UTC
}

type NewAssessment struct {
	Name string `json:"name" validate:"required,max=255"`
	Date string `json:"date" validate:"omitempty,isodate"` // defaults to today
}

func (na *NewAssessment) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Date = core.CleanString(na.Date)
	return validate.Struct(na)
}

// Grade is the score of one student on one assessment.
type Grade struct {
	ID           string      `json:"id"`
	AssessmentID string      `json:"assessmentId"`
	StudentID    string      `json:"studentId"`
	Score        float64     `json:"score"`
	Comment      null.String `json:"comment"`
	UpdatedAt    time.Time   `json:"updatedAt"` // UTC
}

// Detail is a Grade with the metadata of its Assessment.
type Detail struct {
	Grade
	ClassID        string `json:"classId"`
	AssessmentName string `json:"assessmentName"`
	AssessmentDate string `json:"assessmentDate"`
}

// NewGrade contains information needed to grade a student.
// AssessmentID is taken from the URL on per-assessment endpoints and from the body on bulk ones.
type NewGrade struct {
	AssessmentID string   `json:"assessmentId" validate:"required"`
	StudentID    string   `json:"studentId" validate:"required"`
	Score        *float64 `json:"score" validate:"required,gte=0"`
	Comment      string   `json:"comment" validate:"max=1000"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.AssessmentID = core.CleanString(ng.AssessmentID)
	ng.StudentID = core.CleanString(ng.StudentID)
	ng.Comment = core.CleanString(ng.Comment)
	return validate.Struct(ng)
}

type QueryFilter struct {
	AssessmentID string
	StudentID    string
	ClassID      string
}

// Report is the grades of one student in one class.
// Current is the average score formatted with one decimal, or NotAvailable.
type Report struct {
	Records []Detail `json:"records"`
	Current string   `json:"current"`
}
