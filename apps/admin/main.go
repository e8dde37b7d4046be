package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/scholarhub/backend/core"
	logsvc "github.com/scholarhub/backend/services/logger"
	"github.com/scholarhub/backend/storage"
	"github.com/scholarhub/backend/storage/database"
)

func main() {
	conf := core.NewConfig()

	zl, err := logsvc.NewZap(conf.LogLevel, conf.Env)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(false)

	var store *storage.Store
	cli := commandLine{
		conf:   conf,
		logger: logger,
		out:    os.Stdout,
		openDB: func(ctx context.Context) (*sql.DB, error) {
			if err := database.CreateIfNotExist(ctx, conf); err != nil {
				return nil, err
			}
			db, err := database.Open(ctx, conf)
			if err != nil {
				return nil, err
			}
			return db.DB, nil
		},
		openStore: func(ctx context.Context) (*storage.Store, error) {
			var err error
			store, err = storage.Open(ctx, conf, logger)
			return store, err
		},
	}

	err = cli.run(os.Args)
	if store != nil {
		_ = store.Close()
	}
	logger.Sync()
	if err != nil {
		if err != errHelp {
			logger.Error("Command failed", err)
		}
		os.Exit(1)
	}
}
