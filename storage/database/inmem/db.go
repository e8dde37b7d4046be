package inmemdb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scholarhub/backend/core/assignment"
	"github.com/scholarhub/backend/core/attendance"
	"github.com/scholarhub/backend/core/class"
	"github.com/scholarhub/backend/core/grade"
	"github.com/scholarhub/backend/core/student"
	"github.com/scholarhub/backend/storage/database/seed"
)

type (
	DB struct {
		delay time.Duration

		student    *table[student.Student]
		class      *table[class.Class]
		assignment *table[assignment.Assignment]
		grade      *table[grade.Grade]
		attendance *table[attendance.Record]
	}

	// Option configures the DB.
	Option func(*DB)

	table[T any] struct {
		sync.RWMutex
		rows  map[int]T
		idOf  func(T) int
		setID func(*T, int)
	}
)

// WithDelay simulates latency on every repository call.
func WithDelay(d time.Duration) Option {
	return func(db *DB) { db.delay = d }
}

// WithData preloads the tables, keeping the record IDs.
func WithData(data seed.Data) Option {
	return func(db *DB) {
		for _, s := range data.Students {
			db.student.load(s)
		}
		for _, c := range data.Classes {
			db.class.load(clone(c))
		}
		for _, a := range data.Assignments {
			db.assignment.load(a)
		}
		for _, g := range data.Grades {
			db.grade.load(g)
		}
		for _, r := range data.Attendance {
			db.attendance.load(r)
		}
	}
}

func Open(opts ...Option) *DB {
	db := &DB{
		student: newTable(
			func(s student.Student) int { return s.ID },
			func(s *student.Student, id int) { s.ID = id },
		),
		class: newTable(
			func(c class.Class) int { return c.ID },
			func(c *class.Class, id int) { c.ID = id },
		),
		assignment: newTable(
			func(a assignment.Assignment) int { return a.ID },
			func(a *assignment.Assignment, id int) { a.ID = id },
		),
		grade: newTable(
			func(g grade.Grade) int { return g.ID },
			func(g *grade.Grade, id int) { g.ID = id },
		),
		attendance: newTable(
			func(r attendance.Record) int { return r.ID },
			func(r *attendance.Record, id int) { r.ID = id },
		),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// wait simulates the configured latency. It returns early with the context error.
func (db *DB) wait(ctx context.Context) error {
	if db.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(db.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newTable[T any](idOf func(T) int, setID func(*T, int)) *table[T] {
	return &table[T]{rows: make(map[int]T), idOf: idOf, setID: setID}
}

// query returns a copy of the rows passing `keep`, sorted by ID. callers must hold the lock.
func (t *table[T]) query(keep func(T) bool) []T {
	rows := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		if keep == nil || keep(r) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return t.idOf(rows[i]) < t.idOf(rows[j]) })
	return rows
}

// nextID is max(ID)+1. callers must hold the lock.
func (t *table[T]) nextID() int {
	var max int
	for id := range t.rows {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func (t *table[T]) all(keep func(T) bool) []T {
	t.RLock()
	defer t.RUnlock()
	return t.query(keep)
}

func (t *table[T]) get(id int) (T, bool) {
	t.RLock()
	defer t.RUnlock()
	r, ok := t.rows[id]
	return r, ok
}

func (t *table[T]) insert(r T) T {
	t.Lock()
	defer t.Unlock()
	t.setID(&r, t.nextID())
	t.rows[t.idOf(r)] = r
	return r
}

// load inserts `r` keeping its ID.
func (t *table[T]) load(r T) {
	t.Lock()
	defer t.Unlock()
	t.rows[t.idOf(r)] = r
}

func (t *table[T]) replace(r T) bool {
	t.Lock()
	defer t.Unlock()
	if _, ok := t.rows[t.idOf(r)]; !ok {
		return false
	}
	t.rows[t.idOf(r)] = r
	return true
}

func (t *table[T]) remove(id int) (T, bool) {
	t.Lock()
	defer t.Unlock()
	r, ok := t.rows[id]
	if ok {
		delete(t.rows, id)
	}
	return r, ok
}

func (t *table[T]) len() int {
	t.RLock()
	defer t.RUnlock()
	return len(t.rows)
}
