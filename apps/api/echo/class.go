package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/class"
	"github.com/trezcool/darasa/core/enrollment"
)

type classApi struct {
	svc      *class.Service
	enrSvc   *enrollment.Service
	validate *validator.Validate
}

func registerClassAPI(g *echo.Group, svc *class.Service, enrSvc *enrollment.Service, validate *validator.Validate) {
	api := classApi{
		svc:      svc,
		enrSvc:   enrSvc,
		validate: validate,
	}

	cg := g.Group("/classes")
	cg.GET("", api.query)
	cg.POST("", api.create)

	// detail endpoints
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.GET("/:id/students", api.students)
}

// Handlers

func (api *classApi) query(ctx echo.Context) error {
	var filter class.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()

	var ord Ordering
	ord.Bind(ctx)

	classes, err := api.svc.Query(ctx.Request().Context(), &filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) create(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	cls, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) update(ctx echo.Context) error {
	var data class.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Class deleted."})
}

func (api *classApi) students(ctx echo.Context) error {
	students, err := api.enrSvc.QueryStudents(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying class students")
	}
	return ctx.JSON(http.StatusOK, students)
}
