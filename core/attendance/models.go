package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
)

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

var AllStatuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// Record is the attendance of one student in one class on one day.
type Record struct {
	ID        string      `json:"id"`
	ClassID   string      `json:"classId"`
	StudentID string      `json:"studentId"`
	Date      string      `json:"date"` // YYYY-MM-DD
	Status    string      `json:"status"`
	Comment   null.String `json:"comment"`
	CreatedAt time.Time   `json:"createdAt"` // UTC
	UpdatedAt time.Time   `json:"updatedAt"` // UTC
}

// NewRecord contains information needed to record the attendance of a student.
// ClassID is taken from the URL on per-class endpoints and from the body on bulk ones.
type NewRecord struct {
	ClassID   string `json:"classId" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
	Date      string `json:"date" validate:"required,isodate"`
	Status    string `json:"status" validate:"required,attstatus"`
	Comment   string `json:"comment" validate:"max=1000"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.ClassID = core.CleanString(nr.ClassID)
	nr.StudentID = core.CleanString(nr.StudentID)
	nr.Date = core.CleanString(nr.Date)
	nr.Status = core.CleanString(nr.Status, true /* lower */)
	nr.Comment = core.CleanString(nr.Comment)
	return validate.Struct(nr)
}

type QueryFilter struct {
	ClassID   string
	StudentID string
	Date      string
}

// Summary counts a student's records per status. Rate is the percentage of records marked present.
type Summary struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
	Rate    int `json:"rate"`
}

// Report is the attendance of one student in one class.
type Report struct {
	Records []Record `json:"records"`
	Summary Summary  `json:"summary"`
}
