package main

import (
	"context"
	"flag"

	"github.com/Salbajnr/blocktradepro-engine/pkg/config"
	"github.com/Salbajnr/blocktradepro-engine/pkg/logger"
	"github.com/Salbajnr/blocktradepro-engine/pkg/migration"
	"github.com/Salbajnr/blocktradepro-engine/pkg/postgresql"
)

func main() {
	dir := flag.String("dir", "db/migrations", "migration directory")
	flag.Parse()

	cfg := &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}

	log, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()

	db, err := postgresql.NewClient(ctx, cfg.Postgres)
	if err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "connect_postgres"})
		return
	}
	defer db.Close()

	runner := migration.NewRunner(db, migration.Config{
		MigrationDir: *dir,
	})

	if err := runner.Up(ctx); err != nil {
		log.Error(err, logger.Field{Key: "action", Value: "apply_migrations"})
		return
	}

	log.Info("Migrations applied", logger.Field{
		Key:   "dir",
		Value: *dir,
	})
}
