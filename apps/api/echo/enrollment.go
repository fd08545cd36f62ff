package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/enrollment"
)

type enrollmentApi struct {
	svc      *enrollment.Service
	validate *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, svc *enrollment.Service, validate *validator.Validate) {
	api := enrollmentApi{
		svc:      svc,
		validate: validate,
	}

	eg := g.Group("/enrollments")
	eg.GET("", api.query)
	eg.POST("", api.join)
}

// Handlers

func (api *enrollmentApi) query(ctx echo.Context) error {
	studentID := core.CleanString(ctx.QueryParam("studentId"))
	if studentID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "studentId", Error: "this field is required"})
	}

	summaries, err := api.svc.QueryByStudent(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *enrollmentApi) join(ctx echo.Context) error {
	var data enrollment.JoinClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	enr, err := api.svc.Join(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "joining class")
	}
	return ctx.JSON(http.StatusCreated, enr)
}
