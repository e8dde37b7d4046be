package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/assignment"
	"github.com/scholarhub/backend/core/class"
	"github.com/scholarhub/backend/core/grade"
	"github.com/scholarhub/backend/core/student"
)

// fakeBackend serves the record operations over in-memory tables.
type fakeBackend struct {
	mu      sync.Mutex
	tables  map[string][]map[string]interface{}
	reject  map[string]string // table -> field label whose writes fail
	headers http.Header
	calls   []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{tables: make(map[string][]map[string]interface{}), reject: make(map[string]string)}
}

func (fb *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.headers = r.Header.Clone()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/") // tables/{table}/{op}
	if len(parts) != 3 || parts[0] != "tables" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	table, op := parts[1], parts[2]
	fb.calls = append(fb.calls, table+"."+op)

	var body map[string]json.RawMessage
	_ = json.NewDecoder(r.Body).Decode(&body)
	rows := fb.tables[table]

	var resp map[string]interface{}
	switch op {
	case opFetch:
		var where []Condition
		_ = json.Unmarshal(body["where"], &where)
		var paging PagingInfo
		_ = json.Unmarshal(body["pagingInfo"], &paging)
		data := make([]map[string]interface{}, 0)
		for _, row := range rows {
			if matches(row, where) {
				data = append(data, row)
			}
		}
		if paging.Offset > len(data) {
			paging.Offset = len(data)
		}
		data = data[paging.Offset:]
		if paging.Limit > 0 && len(data) > paging.Limit {
			data = data[:paging.Limit]
		}
		resp = map[string]interface{}{"success": true, "data": data}
	case opGet:
		var id float64
		_ = json.Unmarshal(body["id"], &id)
		resp = map[string]interface{}{"success": true, "data": nil}
		for _, row := range rows {
			if row["Id"] == id {
				resp["data"] = row
			}
		}
	case opCreate, opUpdate:
		var records []map[string]interface{}
		_ = json.Unmarshal(body["records"], &records)
		results := make([]map[string]interface{}, 0, len(records))
		for _, rec := range records {
			if label, ok := fb.reject[table]; ok {
				results = append(results, map[string]interface{}{
					"success": false,
					"message": "validation failed",
					"errors":  []map[string]string{{"fieldLabel": label, "message": "is invalid"}},
				})
				continue
			}
			if op == opCreate {
				rec["Id"] = float64(len(rows) + 1)
				rows = append(rows, rec)
			} else {
				for i, row := range rows {
					if row["Id"] == rec["Id"] {
						rows[i] = rec
					}
				}
			}
			results = append(results, map[string]interface{}{"success": true, "data": rec})
		}
		fb.tables[table] = rows
		resp = map[string]interface{}{"success": true, "results": results}
	case opDelete:
		var ids []float64
		_ = json.Unmarshal(body["RecordIds"], &ids)
		kept := rows[:0]
		for _, row := range rows {
			if row["Id"] != ids[0] {
				kept = append(kept, row)
			}
		}
		fb.tables[table] = kept
		resp = map[string]interface{}{"success": true, "results": []map[string]interface{}{{"success": true}}}
	default:
		resp = map[string]interface{}{"success": false, "message": "unknown operation " + op}
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func matches(row map[string]interface{}, where []Condition) bool {
	for _, cond := range where {
		want, _ := json.Marshal(cond.Values[0])
		got, _ := json.Marshal(row[cond.FieldName])
		if string(want) != string(got) {
			return false
		}
	}
	return true
}

func setup(t *testing.T) (*fakeBackend, *Client) {
	t.Helper()
	fb := newFakeBackend()
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	client := NewClient(core.BackendConfig{
		URL: srv.URL + "/", ProjectID: "proj-1", PublicKey: "pk-1", Timeout: 5 * time.Second,
	}, core.NewNopLogger())
	return fb, client
}

func TestClassRepository_FieldMapping(t *testing.T) {
	fb, client := setup(t)
	fb.tables["class"] = []map[string]interface{}{
		{"Id": float64(1), "Name": "Algebra", "subject": "Math", "period": "1st", "studentIds": "1, 3,x,"},
		{"Id": float64(2), "Name": "Biology", "subject": "Science", "period": "2nd", "studentIds": ""},
	}
	repo := NewClassRepository(client)
	ctx := context.Background()

	classes, err := repo.QueryClasses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []class.Class{
		{ID: 1, Name: "Algebra", Subject: "Math", Period: "1st", StudentIDs: []int{1, 3}},
		{ID: 2, Name: "Biology", Subject: "Science", Period: "2nd", StudentIDs: []int{}},
	}, classes)

	created, err := repo.CreateClass(ctx, class.Class{Name: "History", StudentIDs: []int{2, 5}})
	require.NoError(t, err)
	assert.Equal(t, 3, created.ID)
	assert.Equal(t, []int{2, 5}, created.StudentIDs)
	assert.Equal(t, "2,5", fb.tables["class"][2]["studentIds"])
	assert.Equal(t, "History", fb.tables["class"][2]["Name"])

	assert.Equal(t, "proj-1", fb.headers.Get("X-Project-Id"))
	assert.Equal(t, "pk-1", fb.headers.Get("X-Public-Key"))
}

func TestStudentRepository_CRUD(t *testing.T) {
	fb, client := setup(t)
	svc := student.NewService(NewStudentRepository(client))
	ctx := context.Background()

	s, err := svc.Create(ctx, student.NewStudent{
		FirstName: "Emma", LastName: "Johnson", Email: "emma@school.edu", Grade: "10th", StudentID: "STU001",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.ID)
	assert.Equal(t, student.StatusActive, s.Status)

	status := student.StatusInactive
	updated, err := svc.Update(ctx, s.ID, student.UpdateStudent{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Emma", updated.FirstName)
	assert.Equal(t, student.StatusInactive, updated.Status)

	found, err := svc.Query(ctx, &student.QueryFilter{Search: "john"}, nil)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	removed, err := svc.Delete(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, removed)
	assert.Empty(t, fb.tables["student"])

	_, err = svc.GetByID(ctx, s.ID)
	assert.Equal(t, student.ErrNotFound, err)
}

func TestGradeRepository_Lookups(t *testing.T) {
	fb, client := setup(t)
	fb.tables["grade"] = []map[string]interface{}{
		{"Id": float64(1), "studentId": float64(1), "assignmentId": float64(1), "score": 95.5, "submittedDate": "2024-09-16"},
		{"Id": float64(2), "studentId": float64(2), "assignmentId": float64(1), "score": 80.0, "submittedDate": "2024-09-16"},
		{"Id": float64(3), "studentId": float64(1), "assignmentId": float64(2), "score": 70.0, "submittedDate": "2024-09-17"},
	}
	svc := grade.NewService(NewGradeRepository(client))

	byStudent, err := svc.GetByStudentID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []grade.Grade{
		{ID: 1, StudentID: 1, AssignmentID: 1, Score: 95.5, SubmittedDate: "2024-09-16"},
		{ID: 3, StudentID: 1, AssignmentID: 2, Score: 70, SubmittedDate: "2024-09-17"},
	}, byStudent)

	byAssignment, err := svc.GetByAssignmentID(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, byAssignment, 2)
}

func TestClient_RecordFailures(t *testing.T) {
	fb, client := setup(t)
	fb.reject["class"] = "Name"

	_, err := NewClassRepository(client).CreateClass(context.Background(), class.Class{Name: "x"})
	require.Error(t, err)
	assert.True(t, core.IsBackendError(err))

	var be *core.BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "class.createRecord", be.Op)
	assert.Equal(t, []string{"Name: is invalid", "validation failed"}, be.Messages())
}

func TestClient_UnsuccessfulResponse(t *testing.T) {
	_, client := setup(t)
	_, err := client.call(context.Background(), "class", "dropTable", map[string]interface{}{})
	require.Error(t, err)
	assert.True(t, core.IsBackendError(err))
	assert.Contains(t, err.Error(), "unknown operation dropTable")
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()
	client := NewClient(core.BackendConfig{URL: srv.URL, Timeout: time.Second}, core.NewNopLogger())

	_, err := NewStudentRepository(client).QueryStudents(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, core.IsBackendError(err))
}

func TestClient_FetchPages(t *testing.T) {
	fb, client := setup(t)
	rows := make([]map[string]interface{}, 0, pageSize+5)
	for i := 1; i <= pageSize+5; i++ {
		rows = append(rows, map[string]interface{}{"Id": float64(i), "studentId": float64(1), "classId": float64(1), "date": "2024-09-16", "status": "Present"})
	}
	fb.tables["attendance"] = rows

	records, err := NewAttendanceRepository(client).QueryRecords(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, records, pageSize+5)
	assert.Equal(t, []string{"attendance.fetchRecords", "attendance.fetchRecords"}, fb.calls)
}

// cannedBackend answers every call with the same status and body.
func cannedBackend(t *testing.T, status int, body string) (*Client, *atomic.Int32) {
	t.Helper()
	calls := new(atomic.Int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(core.BackendConfig{URL: srv.URL, Timeout: time.Second}, core.NewNopLogger()), calls
}

func TestClient_Mutate(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantData string
		wantErr  string
	}{
		{name: "success without data", body: `{"success":true,"results":[{"success":true}]}`},
		{name: "success with null data", body: `{"success":true,"results":[{"success":true,"data":null}]}`},
		{name: "success with data", body: `{"success":true,"results":[{"success":true,"data":{"Id":4}}]}`, wantData: `{"Id":4}`},
		{name: "partial success", body: `{"success":true,"results":[{"success":false,"message":"dup"},{"success":true,"data":{"Id":5}}]}`, wantData: `{"Id":5}`},
		{name: "no results field", body: `{"success":true}`},
		{name: "empty results", body: `{"success":true,"results":[]}`, wantErr: "class.deleteRecord: no record processed"},
		{name: "all rejected", body: `{"success":true,"results":[{"success":false,"message":"locked"}]}`, wantErr: "class.deleteRecord: record rejected (1 failed records)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := cannedBackend(t, http.StatusOK, tt.body)
			data, err := client.mutate(context.Background(), "class", opDelete, map[string]interface{}{"RecordIds": []int{1}})
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantData == "" {
				assert.Nil(t, data)
				return
			}
			assert.JSONEq(t, tt.wantData, string(data))
		})
	}
}

func TestClient_SaveRequiresRecord(t *testing.T) {
	client, _ := cannedBackend(t, http.StatusOK, `{"success":true,"results":[{"success":true}]}`)
	_, err := NewClassRepository(client).CreateClass(context.Background(), class.Class{Name: "x"})
	assert.EqualError(t, err, "class.createRecord: no record returned")
}

func TestRepositories_Delete(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		table  string
		row    map[string]interface{}
		remove func(*Client) (interface{}, error)
		want   interface{}
	}{
		{
			name:  "class",
			table: "class",
			row:   map[string]interface{}{"Id": float64(1), "Tags": "honors", "Name": "Algebra", "subject": "Math", "period": "1st", "studentIds": "1,2"},
			remove: func(client *Client) (interface{}, error) {
				return class.NewService(NewClassRepository(client)).Delete(ctx, 1)
			},
			want: class.Class{ID: 1, Tags: "honors", Name: "Algebra", Subject: "Math", Period: "1st", StudentIDs: []int{1, 2}},
		},
		{
			name:  "assignment",
			table: "assignment",
			row:   map[string]interface{}{"Id": float64(1), "Name": "Quiz 1", "classId": float64(1), "totalPoints": float64(20)},
			remove: func(client *Client) (interface{}, error) {
				return assignment.NewService(NewAssignmentRepository(client)).Delete(ctx, 1)
			},
			want: assignment.Assignment{ID: 1, Name: "Quiz 1", ClassID: 1, TotalPoints: 20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, client := setup(t)
			fb.tables[tt.table] = []map[string]interface{}{tt.row}

			removed, err := tt.remove(client)
			require.NoError(t, err)
			assert.Equal(t, tt.want, removed)
			assert.Empty(t, fb.tables[tt.table])
			assert.Equal(t, []string{tt.table + "." + opGet, tt.table + "." + opDelete}, fb.calls)
		})
	}
}

func TestClassRepository_KeepsTagsOnUpdate(t *testing.T) {
	fb, client := setup(t)
	fb.tables["class"] = []map[string]interface{}{
		{"Id": float64(1), "Tags": "honors", "Name": "Algebra", "subject": "Math", "period": "1st", "studentIds": "1"},
	}
	svc := class.NewService(NewClassRepository(client))

	name := "Algebra II"
	updated, err := svc.Update(context.Background(), 1, class.UpdateClass{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Algebra II", updated.Name)
	assert.Equal(t, "honors", fb.tables["class"][0]["Tags"])
	assert.Equal(t, "Algebra II", fb.tables["class"][0]["Name"])

	payload, err := json.Marshal(updated)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "honors")
}

func TestClient_FetchIgnoredOffset(t *testing.T) {
	rows := make([]map[string]interface{}, pageSize)
	for i := range rows {
		rows[i] = map[string]interface{}{"Id": i + 1, "Name": "Quiz", "classId": 1, "totalPoints": 10}
	}
	body, err := json.Marshal(map[string]interface{}{"success": true, "data": rows})
	require.NoError(t, err)
	client, calls := cannedBackend(t, http.StatusOK, string(body))

	assignments, err := NewAssignmentRepository(client).QueryAssignments(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, assignments, pageSize)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_GetMissingRecord(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "empty success", status: http.StatusOK, body: `{"success":true,"data":null}`, wantErr: student.ErrNotFound},
		{name: "unsuccessful answer", status: http.StatusOK, body: `{"success":false,"message":"Record not found"}`, wantErr: student.ErrNotFound},
		{name: "not found status", status: http.StatusNotFound, body: "no such record", wantErr: student.ErrNotFound},
		{name: "server error", status: http.StatusInternalServerError, body: `{"success":false,"message":"database unavailable"}`},
		{name: "forbidden", status: http.StatusForbidden, body: `{"success":false,"message":"invalid public key"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := cannedBackend(t, tt.status, tt.body)
			_, err := student.NewService(NewStudentRepository(client)).GetByID(context.Background(), 7)
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			assert.True(t, core.IsBackendError(err))
		})
	}
}
