// Package testutil holds helpers shared by the tests of several packages.
package testutil

import (
	"testing"
	"time"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/assignment"
	"github.com/scholarhub/backend/core/attendance"
	"github.com/scholarhub/backend/core/class"
	"github.com/scholarhub/backend/core/grade"
	"github.com/scholarhub/backend/core/student"
	"github.com/scholarhub/backend/core/view"
	"github.com/scholarhub/backend/storage/database/inmem"
	"github.com/scholarhub/backend/storage/database/seed"
)

// Services opens an in-memory store (optionally loaded with the demo data set) and returns its services.
func Services(t *testing.T, withSeed bool) view.Services {
	t.Helper()
	var opts []inmemdb.Option
	if withSeed {
		opts = append(opts, inmemdb.WithData(SeedData(t)))
	}
	db := inmemdb.Open(opts...)
	return view.Services{
		Students:    student.NewService(inmemdb.NewStudentRepository(db)),
		Classes:     class.NewService(inmemdb.NewClassRepository(db)),
		Assignments: assignment.NewService(inmemdb.NewAssignmentRepository(db)),
		Grades:      grade.NewService(inmemdb.NewGradeRepository(db)),
		Attendance:  attendance.NewService(inmemdb.NewAttendanceRepository(db)),
	}
}

func SeedData(t *testing.T) seed.Data {
	t.Helper()
	data, err := seed.Load()
	if err != nil {
		t.Fatalf("seed.Load() failed: %v", err)
	}
	return data
}

// FreezeTime makes core.NowFunc return `now` until the test ends.
func FreezeTime(t *testing.T, now time.Time) {
	t.Helper()
	prev := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = prev })
}
