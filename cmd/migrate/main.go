package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/samirrijal/reproj/internal/adapters/postgres"
	"github.com/samirrijal/reproj/internal/adapters/valkey"
	"github.com/samirrijal/reproj/internal/pkg/config"
)

var (
	upFiles = []string{
		"migrations/001_crs_overrides.sql",
	}
	downFiles = []string{
		"migrations/001_crs_overrides.down.sql",
	}
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("reproj-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 1)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	v, err := db.PostGISVersion(ctx)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	fmt.Printf("postgis %s\n", v)

	switch os.Args[1] {
	case "up":
		run(ctx, db, upFiles)
	case "down":
		run(ctx, db, downFiles)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}

	// Override rows feed the registry, so cached conversions may now be wrong.
	if cfg.Valkey.Enabled {
		purgeCache(ctx, cfg.Valkey.Addr)
	}
}

func run(ctx context.Context, db *postgres.DB, files []string) {
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}
		fmt.Printf("OK  %s\n", f)
	}
	log.Println("migrations applied")
}

func purgeCache(ctx context.Context, addr string) {
	cache, err := valkey.New(addr)
	if err != nil {
		log.Printf("cache purge skipped: %v", err)
		return
	}
	defer cache.Close()

	n, err := cache.Purge(ctx)
	if err != nil {
		log.Printf("cache purge: %v", err)
		return
	}
	fmt.Printf("purged %d cached conversions\n", n)
}
