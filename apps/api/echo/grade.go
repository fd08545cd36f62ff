package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/grade"
)

type gradeApi struct {
	svc        *grade.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerGradeAPI(g *echo.Group, svc *grade.Service, validate *validator.Validate, translator ut.Translator) {
	api := gradeApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	g.GET("/classes/:id/assessments", api.queryAssessments)
	g.POST("/classes/:id/assessments", api.createAssessment)
	g.GET("/assessments/:id/grades", api.queryGrades)
	g.POST("/assessments/:id/grades", api.grade)
	g.POST("/grades/bulk", api.gradeBulk)
	g.GET("/students/:id/grades/:classId", api.studentReport)
}

// Assessments

func (api *gradeApi) queryAssessments(ctx echo.Context) error {
	assessments, err := api.svc.QueryAssessments(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying assessments")
	}
	return ctx.JSON(http.StatusOK, assessments)
}

func (api *gradeApi) createAssessment(ctx echo.Context) error {
	var data grade.NewAssessment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssessment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.CreateAssessment(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating assessment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

// Grades

func (api *gradeApi) queryGrades(ctx echo.Context) error {
	grades, err := api.svc.QueryAssessmentGrades(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying assessment grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) grade(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	data.AssessmentID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	g, err := api.svc.Grade(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording grade")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *gradeApi) gradeBulk(ctx echo.Context) error {
	var data []grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to []NewGrade")
	}

	items := make([]bulkValidator, len(data))
	for i := range data {
		items[i] = &data[i]
	}
	if err := validateBulk(items, api.validate, api.translator); err != nil {
		return err
	}

	grades, err := api.svc.GradeBulk(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording grade batch")
	}
	return ctx.JSON(http.StatusCreated, grades)
}

func (api *gradeApi) studentReport(ctx echo.Context) error {
	report, err := api.svc.StudentReport(ctx.Request().Context(), ctx.Param("id"), ctx.Param("classId"))
	if err != nil {
		return errors.Wrap(err, "building grade report")
	}
	return ctx.JSON(http.StatusOK, report)
}
