package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/scholarhub/backend/core"
	"github.com/scholarhub/backend/storage/database"
)

// mockable
var (
	migrateUpFunc       = database.Migrate
	migrateDownFunc     = database.Rollback
	migrationStatusFunc = database.MigrationStatus
)

func (cli *commandLine) migrate(ctx context.Context, command string) error {
	run, ok := map[string]func(context.Context, *sql.DB) error{
		"up":     migrateUpFunc,
		"down":   migrateDownFunc,
		"status": migrationStatusFunc,
	}[command]
	if !ok {
		return fmt.Errorf("%q: no such command", command)
	}
	if cli.conf.Store.Engine != core.StorePostgres {
		return fmt.Errorf("migrations need the %s store (got %q)", core.StorePostgres, cli.conf.Store.Engine)
	}

	db, err := cli.openDB(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err = run(ctx, db); err != nil {
		return err
	}
	cli.logger.Info("Migrations done", map[string]interface{}{"command": command})
	return nil
}
