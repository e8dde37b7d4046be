package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/assignment"
	"github.com/scholarhub/backend/core/attendance"
	"github.com/scholarhub/backend/core/class"
	"github.com/scholarhub/backend/core/grade"
	"github.com/scholarhub/backend/core/student"
)

func seedStudents(t *testing.T, db *DB, ids ...int) {
	t.Helper()
	for _, id := range ids {
		db.student.load(student.Student{ID: id, FirstName: "First", LastName: "Last", Email: "s@x.io", Status: student.StatusActive})
	}
}

func TestStudentRepository_CreateAssignsGreaterID(t *testing.T) {
	db := Open()
	seedStudents(t, db, 3, 7, 5)
	repo := NewStudentRepository(db)

	s, err := repo.CreateStudent(context.Background(), student.Student{FirstName: "New"})
	require.NoError(t, err)
	assert.Equal(t, 8, s.ID)

	all, err := repo.QueryStudents(context.Background(), nil, nil)
	require.NoError(t, err)
	for _, other := range all[:len(all)-1] {
		assert.Greater(t, s.ID, other.ID)
	}
}

func TestStudentRepository_CreateOnEmpty(t *testing.T) {
	repo := NewStudentRepository(Open())
	s, err := repo.CreateStudent(context.Background(), student.Student{FirstName: "New"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.ID)
}

func TestStudentService_UpdatePreservesOmittedFields(t *testing.T) {
	db := Open()
	seedStudents(t, db, 1)
	svc := student.NewService(NewStudentRepository(db))

	email := "new@x.io"
	updated, err := svc.Update(context.Background(), 1, student.UpdateStudent{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, student.Student{
		ID: 1, FirstName: "First", LastName: "Last", Email: email, Status: student.StatusActive,
	}, updated)

	got, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestStudentRepository_Delete(t *testing.T) {
	db := Open()
	seedStudents(t, db, 1, 2, 3)
	repo := NewStudentRepository(db)

	removed, err := repo.DeleteStudent(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed.ID)
	assert.Equal(t, 2, db.student.len())

	_, err = repo.GetStudent(context.Background(), 2)
	assert.Equal(t, student.ErrNotFound, err)
}

func TestRepositories_NotFound(t *testing.T) {
	ctx := context.Background()
	db := Open()

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{"get student", func() error { _, err := NewStudentRepository(db).GetStudent(ctx, 9); return err }, student.ErrNotFound},
		{"update student", func() error {
			_, err := NewStudentRepository(db).UpdateStudent(ctx, student.Student{ID: 9})
			return err
		}, student.ErrNotFound},
		{"delete class", func() error { _, err := NewClassRepository(db).DeleteClass(ctx, 9); return err }, class.ErrNotFound},
		{"get assignment", func() error {
			_, err := NewAssignmentRepository(db).GetAssignment(ctx, 9)
			return err
		}, assignment.ErrNotFound},
		{"update grade", func() error { _, err := NewGradeRepository(db).UpdateGrade(ctx, grade.Grade{ID: 9}); return err }, grade.ErrNotFound},
		{"delete attendance", func() error {
			_, err := NewAttendanceRepository(db).DeleteRecord(ctx, 9)
			return err
		}, attendance.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, tt.call())
		})
	}
}

func TestStudentRepository_QueryFilterAndOrdering(t *testing.T) {
	db := Open()
	db.student.load(student.Student{ID: 1, FirstName: "Emma", LastName: "Johnson", StudentID: "STU001", Status: student.StatusActive})
	db.student.load(student.Student{ID: 2, FirstName: "Liam", LastName: "Smith", StudentID: "STU002", Status: student.StatusInactive})
	db.student.load(student.Student{ID: 3, FirstName: "Ava", LastName: "Brown", StudentID: "STU003", Status: student.StatusActive})
	repo := NewStudentRepository(db)

	tests := []struct {
		name     string
		filter   *student.QueryFilter
		ordering []core.DBOrdering
		wantIDs  []int
	}{
		{"all", nil, nil, []int{1, 2, 3}},
		{"search last name", &student.QueryFilter{Search: "SMI"}, nil, []int{2}},
		{"search student code", &student.QueryFilter{Search: "stu00"}, nil, []int{1, 2, 3}},
		{"status", &student.QueryFilter{Status: student.StatusActive}, nil, []int{1, 3}},
		{"first name asc", nil, []core.DBOrdering{{Field: "firstName", Ascending: true}}, []int{3, 1, 2}},
		{"id desc", nil, []core.DBOrdering{{Field: "Id"}}, []int{3, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryStudents(context.Background(), tt.filter, tt.ordering)
			require.NoError(t, err)
			ids := make([]int, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestClassRepository_CopySemantics(t *testing.T) {
	db := Open()
	repo := NewClassRepository(db)
	ctx := context.Background()

	ids := []int{1, 3}
	c, err := repo.CreateClass(ctx, class.Class{Name: "Algebra", StudentIDs: ids})
	require.NoError(t, err)

	ids[0] = 99
	c.StudentIDs[1] = 42
	got, err := repo.GetClass(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, got.StudentIDs)

	got.StudentIDs[0] = 7
	again, err := repo.GetClass(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, again.StudentIDs)
}

func TestAttendanceRepository_Lookups(t *testing.T) {
	db := Open()
	db.attendance.load(attendance.Record{ID: 1, StudentID: 1, ClassID: 1, Date: "2024-01-15", Status: attendance.StatusPresent})
	db.attendance.load(attendance.Record{ID: 2, StudentID: 2, ClassID: 1, Date: "2024-01-15", Status: attendance.StatusAbsent})
	db.attendance.load(attendance.Record{ID: 3, StudentID: 1, ClassID: 2, Date: "2024-01-16", Status: attendance.StatusTardy})
	svc := attendance.NewService(NewAttendanceRepository(db))
	ctx := context.Background()

	byStudent, err := svc.GetByStudentID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)

	byClass, err := svc.GetByClassID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byClass, 2)

	byDate, err := svc.GetByDate(ctx, "2024-01-16")
	require.NoError(t, err)
	if assert.Len(t, byDate, 1) {
		assert.Equal(t, 3, byDate[0].ID)
	}
}

func TestDB_WaitHonorsContext(t *testing.T) {
	db := Open(WithDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGradeRepository(db).QueryGrades(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
