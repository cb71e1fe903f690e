package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	pg "github.com/NordCoder/Netprobe/internal/repository/postgres"
)

func main() {
	down := flag.Bool("down", false, "roll back the latest migration instead")
	status := flag.Bool("status", false, "print migration status and exit")
	flag.Parse()

	dbURL := os.Getenv("NETPROBE_POSTGRES_DSN")
	if dbURL == "" {
		dbURL = os.Getenv("DB_DSN")
	}
	if dbURL == "" {
		log.Fatal("NETPROBE_POSTGRES_DSN is empty")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	goose.SetBaseFS(pg.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("set dialect: %v", err)
	}

	switch {
	case *status:
		err = goose.StatusContext(ctx, db, pg.MigrationsDir)
	case *down:
		err = goose.DownContext(ctx, db, pg.MigrationsDir)
	default:
		err = pg.Up(ctx, db)
	}
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("migrations: OK")
}
