package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/scholarhub/backend/core/report"
	"github.com/scholarhub/backend/core/student"
	"github.com/scholarhub/backend/core/view"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type studentApi struct {
	svc   *student.Service
	views *view.Views
}

func registerStudentAPI(g *echo.Group, svc *student.Service, views *view.Views) {
	api := studentApi{svc: svc, views: views}

	sg := g.Group("/students")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.GET("/export.csv", api.exportCSV)
	sg.GET("/export.xlsx", api.exportXLSX)

	// detail endpoints
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

func bindStudentQuery(ctx echo.Context) (*student.QueryFilter, error) {
	filter := new(student.QueryFilter)
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, filter); err != nil {
		return nil, err
	}
	filter.Clean()
	return filter, nil
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	filter, err := bindStudentQuery(ctx)
	if err != nil {
		return err
	}
	var ord Ordering
	ord.Bind(ctx, student.OrderingFields)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	s, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	s, err := api.svc.Delete(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.JSON(http.StatusOK, s)
}

// exportedStudents loads the students page rows with the query filters applied.
func (api *studentApi) exportedStudents(ctx echo.Context) ([]student.Student, error) {
	filter, err := bindStudentQuery(ctx)
	if err != nil {
		return nil, err
	}
	var ord Ordering
	ord.Bind(ctx, student.OrderingFields)

	sv, err := api.views.StudentsPage(filter, ord.Orderings).Load(ctx.Request().Context())
	if err != nil {
		return nil, errors.Wrap(err, "loading students page")
	}
	return sv.Students, nil
}

func attachment(ctx echo.Context, mime, filename string) {
	h := ctx.Response().Header()
	h.Set(echo.HeaderContentType, mime)
	h.Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	ctx.Response().WriteHeader(http.StatusOK)
}

func (api *studentApi) exportCSV(ctx echo.Context) error {
	students, err := api.exportedStudents(ctx)
	if err != nil {
		return err
	}
	attachment(ctx, mimeCSV, "students.csv")
	return report.WriteStudentsCSV(ctx.Response(), students)
}

func (api *studentApi) exportXLSX(ctx echo.Context) error {
	students, err := api.exportedStudents(ctx)
	if err != nil {
		return err
	}
	attachment(ctx, mimeXLSX, "students.xlsx")
	return report.WriteStudentsXLSX(ctx.Response(), students)
}
