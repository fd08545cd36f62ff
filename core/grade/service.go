package grade

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

var (
	// errors
	ErrAssessmentNotFound = core.NewNotFoundError("assessment not found")
	errStudentNotFound    = "student not found"
)

type (
	Repository interface {
		CreateAssessment(ctx context.Context, a Assessment, exec ...core.DBExecutor) (Assessment, error)
		// GetAssessment returns ErrAssessmentNotFound if no Assessment has the given ID.
		GetAssessment(ctx context.Context, id string, exec ...core.DBExecutor) (Assessment, error)
		QueryAssessments(ctx context.Context, classID string, exec ...core.DBExecutor) ([]Assessment, error)
		// UpsertGrade inserts g, or overwrites the score and comment of the existing Grade
		// for the same (assessment, student).
		UpsertGrade(ctx context.Context, g Grade, exec ...core.DBExecutor) (Grade, error)
		// QueryGrades returns the grades matching all non-empty filter fields, joined with their
		// Assessment and ordered by assessment date.
		QueryGrades(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Detail, error)
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

// Assessments

func (svc *Service) CreateAssessment(ctx context.Context, classID string, na NewAssessment) (Assessment, error) {
	if _, err := svc.clsSvc.Get(ctx, classID); err != nil {
		return Assessment{}, errors.Wrap(err, "finding class")
	}
	a := Assessment{
		ID:        uuid.New().String(),
		ClassID:   classID,
		Name:      na.Name,
		Date:      na.Date,
		CreatedAt: core.Now(),
	}
	if a.Date == "" {
		a.Date = a.CreatedAt.Format(core.DateLayout)
	}
	a, err := svc.repo.CreateAssessment(ctx, a)
	if err != nil {
		return Assessment{}, errors.Wrap(err, "creating assessment")
	}
	return a, nil
}

func (svc *Service) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	return svc.repo.GetAssessment(ctx, id)
}

func (svc *Service) QueryAssessments(ctx context.Context, classID string) ([]Assessment, error) {
	if _, err := svc.clsSvc.Get(ctx, classID); err != nil {
		return nil, errors.Wrap(err, "finding class")
	}
	return svc.repo.QueryAssessments(ctx, classID)
}

// Grades

// refChecker verifies that assessments and students exist, remembering what it already checked.
type refChecker struct {
	svc         *Service
	assessments map[string]bool
	students    map[string]bool
}

func (svc *Service) newRefChecker() *refChecker {
	return &refChecker{svc: svc, assessments: make(map[string]bool), students: make(map[string]bool)}
}

func (rc *refChecker) check(ctx context.Context, ng NewGrade, fieldPrefix string) error {
	if !rc.assessments[ng.AssessmentID] {
		if _, err := rc.svc.repo.GetAssessment(ctx, ng.AssessmentID); err != nil {
			return errors.Wrap(err, "finding assessment")
		}
		rc.assessments[ng.AssessmentID] = true
	}
	if !rc.students[ng.StudentID] {
		if _, err := rc.svc.usrSvc.GetWithRole(ctx, ng.StudentID, user.RoleStudent); err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return core.NewValidationError(nil, core.FieldError{Field: fieldPrefix + "studentId", Error: errStudentNotFound})
			}
			return errors.Wrap(err, "finding student")
		}
		rc.students[ng.StudentID] = true
	}
	return nil
}

func newGrade(ng NewGrade) Grade {
	var score float64
	if ng.Score != nil {
		score = *ng.Score
	}
	return Grade{
		ID:           uuid.New().String(),
		AssessmentID: ng.AssessmentID,
		StudentID:    ng.StudentID,
		Score:        score,
		Comment:      null.NewString(ng.Comment, ng.Comment != ""),
		UpdatedAt:    core.Now(),
	}
}

// Grade creates or overwrites the grade of a student on an assessment.
func (svc *Service) Grade(ctx context.Context, ng NewGrade) (Grade, error) {
	if err := svc.newRefChecker().check(ctx, ng, ""); err != nil {
		return Grade{}, err
	}
	g, err := svc.repo.UpsertGrade(ctx, newGrade(ng))
	if err != nil {
		return Grade{}, errors.Wrap(err, "upserting grade")
	}
	return g, nil
}

// GradeBulk checks every element first, then applies all the upserts in one transaction.
func (svc *Service) GradeBulk(ctx context.Context, ngs []NewGrade) ([]Grade, error) {
	rc := svc.newRefChecker()
	for i, ng := range ngs {
		if err := rc.check(ctx, ng, fmt.Sprintf("[%d].", i)); err != nil {
			return nil, err
		}
	}

	grades := make([]Grade, 0, len(ngs))
	err := core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		for _, ng := range ngs {
			g, err := svc.repo.UpsertGrade(ctx, newGrade(ng), tx)
			if err != nil {
				return errors.Wrap(err, "upserting grade")
			}
			grades = append(grades, g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grades, nil
}

func (svc *Service) QueryAssessmentGrades(ctx context.Context, assessmentID string) ([]Detail, error) {
	if _, err := svc.repo.GetAssessment(ctx, assessmentID); err != nil {
		return nil, errors.Wrap(err, "finding assessment")
	}
	return svc.repo.QueryGrades(ctx, QueryFilter{AssessmentID: assessmentID})
}

// QueryStudent returns the grades of a student across the assessments of a class.
func (svc *Service) QueryStudent(ctx context.Context, studentID, classID string) ([]Detail, error) {
	return svc.repo.QueryGrades(ctx, QueryFilter{StudentID: studentID, ClassID: classID})
}

// StudentReport returns the grades of a student in a class with their current average.
func (svc *Service) StudentReport(ctx context.Context, studentID, classID string) (Report, error) {
	if _, err := svc.clsSvc.Get(ctx, classID); err != nil {
		return Report{}, errors.Wrap(err, "finding class")
	}
	grades, err := svc.QueryStudent(ctx, studentID, classID)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying grades")
	}
	if grades == nil {
		grades = []Detail{}
	}
	return Report{Records: grades, Current: Average(Scores(grades))}, nil
}
