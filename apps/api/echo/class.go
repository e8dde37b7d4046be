package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/scholarhub/backend/core/class"
	"github.com/scholarhub/backend/core/report"
	"github.com/scholarhub/backend/core/view"
)

type classApi struct {
	svc   *class.Service
	views *view.Views
}

func registerClassAPI(g *echo.Group, svc *class.Service, views *view.Views) {
	api := classApi{svc: svc, views: views}

	cg := g.Group("/classes")
	cg.GET("", api.query)
	cg.POST("", api.create)

	// detail endpoints
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.GET("/:id/gradebook.xlsx", api.gradebook)
	cg.PUT("/:id/students/:studentId", api.enroll)
	cg.DELETE("/:id/students/:studentId", api.unenroll)
}

// Handlers

func (api *classApi) query(ctx echo.Context) error {
	classes, err := api.svc.GetAll(ctx.Request().Context())
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
	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	c, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting class")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) update(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	var data class.UpdateClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) destroy(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	c, err := api.svc.Delete(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) membership(ctx echo.Context, change func(ctx echo.Context, id, studentID int) (class.Class, error)) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	studentID, err := idParam(ctx, "studentId")
	if err != nil {
		return err
	}
	c, err := change(ctx, id, studentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *classApi) enroll(ctx echo.Context) error {
	return api.membership(ctx, func(ctx echo.Context, id, studentID int) (class.Class, error) {
		c, err := api.svc.Enroll(ctx.Request().Context(), id, studentID)
		return c, errors.Wrap(err, "enrolling student")
	})
}

func (api *classApi) unenroll(ctx echo.Context) error {
	return api.membership(ctx, func(ctx echo.Context, id, studentID int) (class.Class, error) {
		c, err := api.svc.Unenroll(ctx.Request().Context(), id, studentID)
		return c, errors.Wrap(err, "unenrolling student")
	})
}

func (api *classApi) gradebook(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	gb, err := api.views.Gradebook(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "loading gradebook")
	}
	attachment(ctx, mimeXLSX, fmt.Sprintf("gradebook-%d.xlsx", id))
	return report.WriteGradebookXLSX(ctx.Response(), gb)
}
