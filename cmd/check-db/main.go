// Package main is a diagnostic tool that checks database connectivity and
// prints row counts of the admin tables. It exits non-zero on any failure so
// it can gate deployments on a reachable, migrated database.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/codecentric/c4-genai-suite/backend/internal/config"
	"github.com/codecentric/c4-genai-suite/backend/internal/db"
)

var tables = []string{
	"configurations",
	"extensions",
	"buckets",
	"files",
	"settings",
	"users",
	"user_groups",
	"audit_log",
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, cfg.Database.GetDSN(), 1, 1)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer database.Close()

	version, dirty, err := db.GetMigrationVersion(database)
	if err != nil {
		log.Fatalf("Failed to read schema version: %v", err)
	}
	fmt.Printf("Schema version: %d (dirty: %v)\n\n", version, dirty)

	for _, table := range tables {
		var count int
		// table names come from the fixed list above
		if err := database.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+table); err != nil { // #nosec G202
			log.Fatalf("Query on %s failed: %v", table, err)
		}
		fmt.Printf("%-16s %d\n", table, count)
	}

	var lastAudit struct {
		EntityType string    `db:"entity_type"`
		Action     string    `db:"action"`
		CreatedAt  time.Time `db:"created_at"`
	}
	err = database.GetContext(ctx, &lastAudit,
		"SELECT entity_type, action, created_at FROM audit_log ORDER BY created_at DESC, id DESC LIMIT 1")
	if err == nil {
		fmt.Printf("\nLast audit entry: %s %s at %s\n", lastAudit.Action, lastAudit.EntityType, lastAudit.CreatedAt.Format(time.RFC3339))
	}
}
