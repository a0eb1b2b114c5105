package main

import (
	"context"
	"os"

	"github.com/hetulpatel/spreadarb/internal/logging"
	"github.com/hetulpatel/spreadarb/internal/storage/sqlite"
)

func main() {
	logging.InitFromEnv()
	store, err := sqlite.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		logging.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	if err := store.DropTables(context.Background()); err != nil {
		logging.Fatalf("drop tables: %v", err)
	}
	logging.Infof("SQLite tables dropped at %s", store.Path())
}
