// Package storage selects and opens the configured store backend.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/assignment"
	"github.com/scholarhub/backend/core/attendance"
	"github.com/scholarhub/backend/core/class"
	"github.com/scholarhub/backend/core/grade"
	"github.com/scholarhub/backend/core/student"
	"github.com/scholarhub/backend/core/view"
	"github.com/scholarhub/backend/storage/database"
	inmemdb "github.com/scholarhub/backend/storage/database/inmem"
	"github.com/scholarhub/backend/storage/database/seed"
	sqlxrepos "github.com/scholarhub/backend/storage/database/sqlx"
	"github.com/scholarhub/backend/storage/remote"
)

// Store holds the repositories of the selected backend.
type Store struct {
	Engine string
	Repos  seed.Repositories
	DB     *sqlx.DB // postgres only

	closeFunc func() error
}

// mockable
var (
	createDBFunc = database.CreateIfNotExist
	openDBFunc   = database.Open
	migrateFunc  = database.Migrate
)

// Open opens the store selected by `conf.Store.Engine`.
// The postgres database is created and migrated when needed.
func Open(ctx context.Context, conf *core.Config, logger core.Logger) (*Store, error) {
	switch conf.Store.Engine {
	case core.StoreMemory, "":
		return openMemory(conf)
	case core.StorePostgres:
		return openPostgres(ctx, conf)
	case core.StoreRemote:
		return openRemote(conf, logger)
	}
	return nil, errors.Errorf("unknown store engine %q", conf.Store.Engine)
}

func openMemory(conf *core.Config) (*Store, error) {
	opts := []inmemdb.Option{inmemdb.WithDelay(conf.Store.Delay)}
	if conf.Store.Seed {
		data, err := seed.Load()
		if err != nil {
			return nil, err
		}
		opts = append(opts, inmemdb.WithData(data))
	}

	db := inmemdb.Open(opts...)
	return &Store{
		Engine: core.StoreMemory,
		Repos: seed.Repositories{
			Students:    inmemdb.NewStudentRepository(db),
			Classes:     inmemdb.NewClassRepository(db),
			Assignments: inmemdb.NewAssignmentRepository(db),
			Grades:      inmemdb.NewGradeRepository(db),
			Attendance:  inmemdb.NewAttendanceRepository(db),
		},
	}, nil
}

func openPostgres(ctx context.Context, conf *core.Config) (*Store, error) {
	if err := createDBFunc(ctx, conf); err != nil {
		return nil, err
	}
	db, err := openDBFunc(ctx, conf)
	if err != nil {
		return nil, err
	}
	if err = migrateFunc(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		Engine: core.StorePostgres,
		DB:     db,
		Repos: seed.Repositories{
			Students:    sqlxrepos.NewStudentRepository(db),
			Classes:     sqlxrepos.NewClassRepository(db),
			Assignments: sqlxrepos.NewAssignmentRepository(db),
			Grades:      sqlxrepos.NewGradeRepository(db),
			Attendance:  sqlxrepos.NewAttendanceRepository(db),
		},
		closeFunc: db.Close,
	}, nil
}

func openRemote(conf *core.Config, logger core.Logger) (*Store, error) {
	if conf.Backend.URL == "" || conf.Backend.ProjectID == "" || conf.Backend.PublicKey == "" {
		return nil, errors.New("remote store requires backend.url, backend.projectId and backend.publicKey")
	}

	client := remote.NewClient(conf.Backend, logger)
	return &Store{
		Engine: core.StoreRemote,
		Repos: seed.Repositories{
			Students:    remote.NewStudentRepository(client),
			Classes:     remote.NewClassRepository(client),
			Assignments: remote.NewAssignmentRepository(client),
			Grades:      remote.NewGradeRepository(client),
			Attendance:  remote.NewAttendanceRepository(client),
		},
	}, nil
}

// Services wraps the repositories into the domain services.
func (s *Store) Services() view.Services {
	return view.Services{
		Students:    student.NewService(s.Repos.Students),
		Classes:     class.NewService(s.Repos.Classes),
		Assignments: assignment.NewService(s.Repos.Assignments),
		Grades:      grade.NewService(s.Repos.Grades),
		Attendance:  attendance.NewService(s.Repos.Attendance),
	}
}

func (s *Store) Close() error {
	if s.closeFunc == nil {
		return nil
	}
	return s.closeFunc()
}
