package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/attendance"
	"github.com/scholarhub/backend/core/grade"
	"github.com/scholarhub/backend/core/report"
	"github.com/scholarhub/backend/core/student"
	"github.com/scholarhub/backend/core/view"
	"github.com/scholarhub/backend/tests"
)

var testConf = &core.Config{
	Env:      "TEST",
	TestMode: true,
	AppName:  "ScholarHub",
	Server:   core.ServerConfig{DisableReqLogs: true},
}

func setup(t *testing.T) (Server, view.Services) {
	svc := testutil.Services(t, true)
	logger := core.NewNopLogger()
	server := NewServer(ServerDeps{
		Conf:     testConf,
		Logger:   logger,
		Services: svc,
		Views:    view.New(svc, logger),
	})
	return server, svc
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app http.Handler, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newRequest(method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestHome(t *testing.T) {
	app, _ := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to ScholarHub API!", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestStudentAPI(t *testing.T) {
	testutil.FreezeTime(t, time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC))
	app, svc := setup(t)

	emma, err := svc.Students.GetByID(context.Background(), 1)
	require.NoError(t, err)
	liam, err := svc.Students.GetByID(context.Background(), 2)
	require.NoError(t, err)

	newStudent := student.Student{
		ID: 7, FirstName: "Mia", LastName: "Lopez", Email: "mia.lopez@school.edu", Grade: "9th",
		StudentID: "STU007", EnrollmentDate: "2024-10-01", Status: student.StatusActive,
	}
	inactiveEmma := emma
	inactiveEmma.Status = student.StatusInactive

	runHTTPTests(t, app, []httpTest{
		{name: "search", path: "/v1/students?search=SMITH", wantCode: http.StatusOK, wantData: marshalObj(t, []student.Student{liam})},
		{
			name: "ordering", path: "/v1/students?search=smith&ordering=-lastName,unknown", wantCode: http.StatusOK,
			wantData: marshalObj(t, []student.Student{liam}),
		},
		{name: "retrieve", path: "/v1/students/1", wantCode: http.StatusOK, wantData: marshalObj(t, emma)},
		{name: "retrieve unknown", path: "/v1/students/99", wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "student not found"})},
		{name: "retrieve bad id", path: "/v1/students/abc", wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "not found"})},
		{
			name: "create invalid", method: http.MethodPost, path: "/v1/students", body: []byte(`{"firstName": "  ", "email": "nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"firstName": "this field is required",
				"lastName":  "this field is required",
				"email":     "please enter a valid email",
				"grade":     "this field is required",
				"studentId": "this field is required",
			}),
		},
		{
			name: "create", method: http.MethodPost, path: "/v1/students",
			body:     []byte(`{"firstName": " Mia", "lastName": "Lopez", "email": "Mia.Lopez@school.edu", "grade": "9th", "studentId": "STU007"}`),
			wantCode: http.StatusCreated, wantData: marshalObj(t, newStudent),
		},
		{
			name: "update keeps omitted fields", method: http.MethodPut, path: "/v1/students/1", body: []byte(`{"status": "Inactive"}`),
			wantCode: http.StatusOK, wantData: marshalObj(t, inactiveEmma),
		},
		{
			name: "update invalid status", method: http.MethodPut, path: "/v1/students/1", body: []byte(`{"status": "Gone"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"status": "status must be one of Active, Inactive"}),
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/students/7", wantCode: http.StatusOK, wantData: marshalObj(t, newStudent)},
		{name: "delete again", method: http.MethodDelete, path: "/v1/students/7", wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "student not found"})},
	})
}

func TestClassAPI_Membership(t *testing.T) {
	app, svc := setup(t)

	runHTTPTests(t, app, []httpTest{
		{
			name: "enroll", method: http.MethodPut, path: "/v1/classes/1/students/5", wantCode: http.StatusOK,
			wantData: []byte(`{"Id": 1, "name": "Algebra II", "subject": "Mathematics", "period": "1st Period", "studentIds": [1, 2, 3, 5]}`),
		},
		{
			name: "enroll twice", method: http.MethodPut, path: "/v1/classes/1/students/5", wantCode: http.StatusOK,
			wantData: []byte(`{"Id": 1, "name": "Algebra II", "subject": "Mathematics", "period": "1st Period", "studentIds": [1, 2, 3, 5]}`),
		},
		{
			name: "unenroll", method: http.MethodDelete, path: "/v1/classes/1/students/2", wantCode: http.StatusOK,
			wantData: []byte(`{"Id": 1, "name": "Algebra II", "subject": "Mathematics", "period": "1st Period", "studentIds": [1, 3, 5]}`),
		},
		{
			name: "unknown class", method: http.MethodPut, path: "/v1/classes/9/students/1", wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "class not found"}),
		},
		{
			name: "create", method: http.MethodPost, path: "/v1/classes", body: []byte(`{"name": "Art", "studentIds": [4, 4, 6]}`),
			wantCode: http.StatusCreated,
			wantData: []byte(`{"Id": 4, "name": "Art", "subject": "", "period": "", "studentIds": [4, 6]}`),
		},
	})

	// deleting a student keeps the class membership and the grades
	_, err := svc.Students.Delete(context.Background(), 1)
	require.NoError(t, err)
	c, err := svc.Classes.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, c.HasStudent(1))
}

func TestLookups(t *testing.T) {
	app, svc := setup(t)
	ctx := context.Background()

	byAssignment, err := svc.Grades.GetByAssignmentID(ctx, 3)
	require.NoError(t, err)
	byClass, err := svc.Attendance.GetByClassID(ctx, 2)
	require.NoError(t, err)
	byDate, err := svc.Attendance.GetByDate(ctx, "2024-09-17")
	require.NoError(t, err)
	forClass, err := svc.Assignments.GetByClassID(ctx, 1)
	require.NoError(t, err)

	runHTTPTests(t, app, []httpTest{
		{name: "grades by assignment", path: "/v1/grades?assignment_id=3", wantCode: http.StatusOK, wantData: marshalObj(t, byAssignment)},
		{name: "attendance by class", path: "/v1/attendance?class_id=2", wantCode: http.StatusOK, wantData: marshalObj(t, byClass)},
		{name: "attendance by date", path: "/v1/attendance?date=2024-09-17", wantCode: http.StatusOK, wantData: marshalObj(t, byDate)},
		{
			name: "attendance bad date", path: "/v1/attendance?date=17-09-2024", wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"date": "must be a date formatted as YYYY-MM-DD"}),
		},
		{name: "assignments by class", path: "/v1/assignments?class_id=1", wantCode: http.StatusOK, wantData: marshalObj(t, forClass)},
		{
			name: "assignments bad class", path: "/v1/assignments?class_id=x", wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"class_id": "must be a positive integer"}),
		},
	})
}

func TestGradeAPI_ScoreBound(t *testing.T) {
	testutil.FreezeTime(t, time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC))
	app, _ := setup(t)

	runHTTPTests(t, app, []httpTest{
		{
			name: "above total points", method: http.MethodPost, path: "/v1/grades",
			body:     []byte(`{"studentId": 3, "assignmentId": 2, "score": 51}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"score": "must be between 0 and 50"}),
		},
		{
			name: "unknown assignment", method: http.MethodPost, path: "/v1/grades",
			body:     []byte(`{"studentId": 3, "assignmentId": 42, "score": 1}`),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "assignment not found"}),
		},
		{
			name: "create", method: http.MethodPost, path: "/v1/grades",
			body:     []byte(`{"studentId": 3, "assignmentId": 2, "score": 50}`),
			wantCode: http.StatusCreated,
			wantData: marshalObj(t, grade.Grade{ID: 8, StudentID: 3, AssignmentID: 2, Score: 50, SubmittedDate: "2024-10-01"}),
		},
	})
}

func TestViewAPI(t *testing.T) {
	testutil.FreezeTime(t, time.Date(2024, 9, 26, 12, 0, 0, 0, time.UTC))
	app, svc := setup(t)

	runHTTPTests(t, app, []httpTest{
		{
			name: "dashboard", path: "/v1/views/dashboard", wantCode: http.StatusOK,
			wantData: marshalObj(t, report.DashboardStats{TotalStudents: 6, AverageGrade: 77, AttendanceRate: 71, TotalClasses: 3, RecentActivity: 4}),
		},
		{
			name: "grades unknown class", path: "/v1/views/grades?class_id=42", wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "class not found"}),
		},
		{
			name: "set score", method: http.MethodPut, path: "/v1/views/grades/score",
			body:     []byte(`{"studentId": 1, "assignmentId": 1, "score": 99}`),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, grade.Grade{ID: 1, StudentID: 1, AssignmentID: 1, Score: 99, SubmittedDate: "2024-09-16"}),
		},
		{
			name: "set score too high", method: http.MethodPut, path: "/v1/views/grades/score",
			body:     []byte(`{"studentId": 1, "assignmentId": 2, "score": 60}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"score": "must be between 0 and 50"}),
		},
		{
			name: "mark", method: http.MethodPut, path: "/v1/views/attendance/mark",
			body:     []byte(`{"studentId": 5, "classId": 2, "date": "2024-09-26", "status": "Present"}`),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, attendance.Record{ID: 8, StudentID: 5, ClassID: 2, Date: "2024-09-26", Status: "Present"}),
		},
		{
			name: "mark again", method: http.MethodPut, path: "/v1/views/attendance/mark",
			body:     []byte(`{"studentId": 5, "classId": 2, "date": "2024-09-26", "status": "Tardy"}`),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, attendance.Record{ID: 8, StudentID: 5, ClassID: 2, Date: "2024-09-26", Status: "Tardy"}),
		},
		{
			name: "mark invalid", method: http.MethodPut, path: "/v1/views/attendance/mark",
			body:     []byte(`{"studentId": 5, "classId": 2, "date": "2024-09-26", "status": "Late"}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"status": "status must be one of Present, Absent, Tardy"}),
		},
	})

	records, err := svc.Attendance.Query(context.Background(), &attendance.QueryFilter{StudentID: 5, ClassID: 2, Date: "2024-09-26"})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	req, rec := newRequest(http.MethodGet, "/v1/views/attendance?class_id=2")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var av view.AttendanceView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &av))
	assert.Equal(t, "2024-09-26", av.Date)
	require.Len(t, av.Rows, 3)
	assert.Equal(t, "Ava", av.Rows[2].Student.FirstName)
	assert.Equal(t, "Tardy", av.Rows[2].Status)
	assert.Equal(t, []string{"", "", "", "Tardy", ""}, av.Rows[2].Week)
}

func TestExports(t *testing.T) {
	app, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/v1/students/export.csv?status=Inactive")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, mimeCSV, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "students.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, []string{
		"First Name,Last Name,Email,Grade,Student ID,Enrollment Date,Status",
		"Ethan,Martinez,ethan.martinez@school.edu,12th,STU006,2021-08-30,Inactive",
	}, lines)

	req, rec = newRequest(http.MethodGet, "/v1/students/export.xlsx")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	assert.Len(t, rows, 7)
	_ = f.Close()

	req, rec = newRequest(http.MethodGet, "/v1/classes/1/gradebook.xlsx")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "gradebook-1.xlsx")
	f, err = excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	rows, err = f.GetRows("Algebra II")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	_ = f.Close()

	runHTTPTests(t, app, []httpTest{
		{name: "gradebook unknown class", path: "/v1/classes/9/gradebook.xlsx", wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "class not found"})},
	})
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := setup(t)
	req, rec := newRequest(http.MethodGet, "/v1/views/classes")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req, rec = newRequest(http.MethodGet, "/metrics")
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `scholarhub_http_requests_total{code="200",method="GET",route="/v1/views/classes"}`)
}

func TestAppHTTPErrorHandler(t *testing.T) {
	var shutdownCalled bool
	handler := newAppHTTPErrorHandler(core.NewNopLogger(), func() { shutdownCalled = true })
	e := echo.New()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantData string
	}{
		{name: "not found", err: errors.Wrap(student.ErrNotFound, "getting student"), wantCode: http.StatusNotFound, wantData: `{"error": "student not found"}`},
		{
			name: "validation", err: core.NewValidationError(nil, core.FieldError{Field: "score", Error: "too high"}),
			wantCode: http.StatusBadRequest, wantData: `{"score": "too high"}`,
		},
		{
			name:     "backend failure",
			err:      errors.Wrap(core.NewBackendError("student.createRecord", "record rejected", core.RecordFailure{Message: "invalid", Fields: []core.FieldError{{Field: "Email", Error: "is taken"}}}), "creating student"),
			wantCode: http.StatusBadGateway,
			wantData: `{"error": "student.createRecord: record rejected (1 failed records)", "details": ["Email: is taken", "invalid"]}`,
		},
		{name: "http error", err: echo.NewHTTPError(http.StatusTeapot, "short and stout"), wantCode: http.StatusTeapot, wantData: `{"error": "short and stout"}`},
		{name: "server error", err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantData: `{"error": "Internal Server Error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, "/")
			handler(tt.err, e.NewContext(req, rec))
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: []byte(tt.wantData)}, rec)
		})
	}
	assert.False(t, shutdownCalled)

	req, rec := newRequest(http.MethodGet, "/")
	handler(core.NewShutdownError("integrity issue"), e.NewContext(req, rec))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, shutdownCalled)
}
