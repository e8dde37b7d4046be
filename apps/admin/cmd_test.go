package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	perrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/core/class"
	"github.com/scholarhub/backend/storage"
	"github.com/scholarhub/backend/storage/database"
)

type memFile struct {
	bytes.Buffer
}

func (f *memFile) Close() error { return nil }

type harness struct {
	cli   *commandLine
	out   *bytes.Buffer
	store *storage.Store
	files map[string]*memFile
}

func setup(t *testing.T, engine string, seeded bool) *harness {
	t.Helper()
	conf := &core.Config{Store: core.StoreConfig{Engine: engine, Seed: seeded}}
	memConf := &core.Config{Store: core.StoreConfig{Engine: core.StoreMemory, Seed: seeded}}

	store, err := storage.Open(context.Background(), memConf, core.NewNopLogger())
	require.NoError(t, err)

	h := &harness{out: new(bytes.Buffer), store: store, files: make(map[string]*memFile)}
	h.cli = &commandLine{
		conf:   conf,
		logger: core.NewNopLogger(),
		out:    h.out,
		openDB: func(context.Context) (*sql.DB, error) {
			// lazily connects; nothing is dialed until the first query
			return sql.Open("postgres", "postgres://app@localhost:1/scholarhub?sslmode=disable")
		},
		openStore: func(context.Context) (*storage.Store, error) { return store, nil },
	}

	prev := createFileFunc
	createFileFunc = func(name string) (io.WriteCloser, error) {
		f := new(memFile)
		h.files[name] = f
		return f, nil
	}
	t.Cleanup(func() { createFileFunc = prev })
	return h
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, perrors.Cause(err))
			case tt.wantErrStr != "":
				assert.EqualError(t, err, tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	h := setup(t, core.StoreMemory, false)
	runCLITests(t, h.cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate without subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "export without subcommand", args: []string{"export"}, wantErr: errHelp},
		{name: "export unknown", args: []string{"export", "teachers"}, wantErr: errHelp},
	})
	assert.Contains(t, h.out.String(), "Usage:")
}

func Test_commandLine_migrate(t *testing.T) {
	defer func() {
		migrateUpFunc = database.Migrate
		migrateDownFunc = database.Rollback
		migrationStatusFunc = database.MigrationStatus
	}()

	var ran []string
	mock := func(name string) func(context.Context, *sql.DB) error {
		return func(context.Context, *sql.DB) error {
			ran = append(ran, name)
			return nil
		}
	}
	migrateUpFunc = mock("up")
	migrateDownFunc = mock("down")
	migrationStatusFunc = mock("status")

	h := setup(t, core.StorePostgres, false)
	runCLITests(t, h.cli, []cliTest{
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: `"lol": no such command`},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
	})
	assert.Equal(t, []string{"up", "down", "status"}, ran)

	migrateUpFunc = func(context.Context, *sql.DB) error { return errors.New("migrating database: boom") }
	runCLITests(t, h.cli, []cliTest{
		{name: "failure", args: []string{"migrate", "up"}, wantErrStr: "migrating database: boom"},
	})

	mem := setup(t, core.StoreMemory, false)
	runCLITests(t, mem.cli, []cliTest{
		{name: "memory store", args: []string{"migrate", "up"}, wantErrStr: `migrations need the postgres store (got "memory")`},
	})
}

func Test_commandLine_seed(t *testing.T) {
	h := setup(t, core.StoreMemory, false)
	runCLITests(t, h.cli, []cliTest{{name: "seed", args: []string{"seed"}}})
	assert.Equal(t, "seeded 6 students, 3 classes, 4 assignments, 7 grades, 7 attendance records into the memory store\n", h.out.String())

	classes, err := h.store.Services().Classes.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, classes, 3)
	assert.Equal(t, []int{1, 2, 3}, classes[0].StudentIDs)
}

func Test_commandLine_exportStudents(t *testing.T) {
	h := setup(t, core.StoreMemory, true)
	runCLITests(t, h.cli, []cliTest{
		{name: "bad format", args: []string{"export", "students", "-format", "pdf"}, wantErr: errHelp},
		{name: "bad flag", args: []string{"export", "students", "-lol"}, wantErr: errHelp},
		{name: "csv", args: []string{"export", "students", "-status", "Active", "-search", "SMITH"}},
		{name: "xlsx", args: []string{"export", "students", "-format", "xlsx", "-o", "all.xlsx"}},
	})

	require.Contains(t, h.files, "students.csv")
	lines := strings.Split(strings.TrimSpace(h.files["students.csv"].String()), "\n")
	assert.Equal(t, []string{
		"First Name,Last Name,Email,Grade,Student ID,Enrollment Date,Status",
		"Liam,Smith,liam.smith@school.edu,10th,STU002,2023-08-28,Active",
	}, lines)

	require.Contains(t, h.files, "all.xlsx")
	f, err := excelize.OpenReader(&h.files["all.xlsx"].Buffer)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	assert.Len(t, rows, 7)

	assert.Contains(t, h.out.String(), "exported 1 of 6 students to students.csv")
	assert.Contains(t, h.out.String(), "exported 6 of 6 students to all.xlsx")
}

func Test_commandLine_exportGradebook(t *testing.T) {
	h := setup(t, core.StoreMemory, true)
	runCLITests(t, h.cli, []cliTest{
		{name: "no class", args: []string{"export", "gradebook"}, wantErr: errHelp},
		{name: "unknown class", args: []string{"export", "gradebook", "-class", "9"}, wantErr: class.ErrNotFound},
		{name: "gradebook", args: []string{"export", "gradebook", "-class", "2"}},
	})

	require.Contains(t, h.files, "gradebook-2.xlsx")
	f, err := excelize.OpenReader(&h.files["gradebook-2.xlsx"].Buffer)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("World History")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Student ID", "Name", "Ancient Civilizations Essay (/100)", "Average", "Letter"}, rows[0])
	assert.Contains(t, h.out.String(), "exported the World History gradebook to gradebook-2.xlsx")
}
