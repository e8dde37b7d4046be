package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/scholarhub/backend/core/attendance"
	"github.com/scholarhub/backend/core/student"
	"github.com/scholarhub/backend/core/view"
)

type viewApi struct {
	views *view.Views
}

func registerViewAPI(g *echo.Group, views *view.Views) {
	api := viewApi{views: views}

	vg := g.Group("/views")
	vg.GET("/dashboard", api.dashboard)
	vg.GET("/students", api.students)
	vg.GET("/classes", api.classes)
	vg.GET("/grades", api.grades)
	vg.PUT("/grades/score", api.setScore)
	vg.GET("/attendance", api.attendance)
	vg.PUT("/attendance/mark", api.mark)
}

// render loads the page and writes its data.
func render[T any](ctx echo.Context, page *view.Page[T]) error {
	data, err := page.Load(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading page")
	}
	return ctx.JSON(http.StatusOK, data)
}

func (api *viewApi) dashboard(ctx echo.Context) error {
	return render(ctx, api.views.DashboardPage())
}

func (api *viewApi) students(ctx echo.Context) error {
	filter, err := bindStudentQuery(ctx)
	if err != nil {
		return err
	}
	var ord Ordering
	ord.Bind(ctx, student.OrderingFields)
	return render(ctx, api.views.StudentsPage(filter, ord.Orderings))
}

func (api *viewApi) classes(ctx echo.Context) error {
	return render(ctx, api.views.ClassesPage())
}

func (api *viewApi) grades(ctx echo.Context) error {
	classID, err := intQuery(ctx, "class_id")
	if err != nil {
		return err
	}
	return render(ctx, api.views.GradesPage(classID))
}

func (api *viewApi) attendance(ctx echo.Context) error {
	classID, err := intQuery(ctx, "class_id")
	if err != nil {
		return err
	}
	return render(ctx, api.views.AttendancePage(classID, ctx.QueryParam("date")))
}

func (api *viewApi) setScore(ctx echo.Context) error {
	var data view.ScoreInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ScoreInput")
	}
	g, err := api.views.SetScore(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *viewApi) mark(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	r, err := api.views.Mark(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}
