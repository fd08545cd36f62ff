package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/attendance"
)

type attendanceApi struct {
	svc        *attendance.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service, validate *validator.Validate, translator ut.Translator) {
	api := attendanceApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	g.GET("/classes/:id/attendance", api.queryClass)
	g.POST("/classes/:id/attendance", api.record)
	g.POST("/attendance/bulk", api.recordBulk)
	g.GET("/students/:id/attendance/:classId", api.studentReport)
}

// Handlers

func (api *attendanceApi) queryClass(ctx echo.Context) error {
	date := core.CleanString(ctx.QueryParam("date"))
	if date != "" {
		if err := api.validate.Var(date, "isodate"); err != nil {
			var vErrs validator.ValidationErrors
			if !errors.As(err, &vErrs) {
				return errors.Wrap(err, "validating date")
			}
			return core.NewValidationError(nil, translateErrors(vErrs, api.translator, "date")...)
		}
	}

	records, err := api.svc.QueryClass(ctx.Request().Context(), ctx.Param("id"), date)
	if err != nil {
		return errors.Wrap(err, "querying class attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) record(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	data.ClassID = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.Record(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) recordBulk(ctx echo.Context) error {
	var data []attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to []NewRecord")
	}

	items := make([]bulkValidator, len(data))
	for i := range data {
		items[i] = &data[i]
	}
	if err := validateBulk(items, api.validate, api.translator); err != nil {
		return err
	}

	records, err := api.svc.RecordBulk(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording attendance batch")
	}
	return ctx.JSON(http.StatusCreated, records)
}

func (api *attendanceApi) studentReport(ctx echo.Context) error {
	report, err := api.svc.StudentReport(ctx.Request().Context(), ctx.Param("id"), ctx.Param("classId"))
	if err != nil {
		return errors.Wrap(err, "building attendance report")
	}
	return ctx.JSON(http.StatusOK, report)
}
