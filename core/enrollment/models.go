package enrollment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/class"
)

// Enrollment links a student to a class. A student is enrolled in a class at most once.
type Enrollment struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"studentId"`
	ClassID    string    `json:"classId"`
	EnrolledAt time.Time `json:"enrolledAt"` // UTC
}

// JoinClass contains information needed to enroll a student with a class code.
type JoinClass struct {
	ClassCode string `json:"classCode" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
}

func (jc *JoinClass) Validate(validate *validator.Validate) error {
	jc.ClassCode = core.CleanString(jc.ClassCode)
	jc.StudentID = core.CleanString(jc.StudentID)
	return validate.Struct(jc)
}

// EnrolledClass is a Class a student is enrolled in, with the name of its teacher.
type EnrolledClass struct {
	class.Class
	TeacherName string    `json:"teacherName"`
	EnrolledAt  time.Time `json:"enrolledAt"` // UTC
}

// ClassSummary is an EnrolledClass with the student's attendance rate and current grade.
type ClassSummary struct {
	EnrolledClass
	AttendanceRate int    `json:"attendanceRate"`
	CurrentGrade   string `json:"currentGrade"`
}
