package main

import (
	"context"
	"os"

	"github.com/hetulpatel/spreadarb/internal/logging"
	"github.com/hetulpatel/spreadarb/internal/storage/sqlite"
)

func main() {
	logging.InitFromEnv()
	path := os.Getenv("SQLITE_PATH")
	store, err := sqlite.Open(path)
	if err != nil {
		logging.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	if err := store.CreateTables(context.Background()); err != nil {
		logging.Fatalf("create tables: %v", err)
	}
	logging.Infof("SQLite tables created at %s", store.Path())
}
