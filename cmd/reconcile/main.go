// Command reconcile repairs one-sided client/user links for the given tenants.
// Usage: go run ./cmd/reconcile <tenant-id> [<tenant-id> ...]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"fieldpilot/internal/config"
	"fieldpilot/internal/repository"
	"fieldpilot/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()
	if flag.NArg() == 0 {
		return errors.New("usage: reconcile <tenant-id> [<tenant-id> ...]")
	}

	tenantIDs := make([]uuid.UUID, 0, flag.NArg())
	for _, arg := range flag.Args() {
		id, err := uuid.Parse(arg)
		if err != nil {
			return fmt.Errorf("invalid tenant id %q: %w", arg, err)
		}
		tenantIDs = append(tenantIDs, id)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()
	repos, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = repos.Close() }()

	total := 0
	for _, tenantID := range tenantIDs {
		repairs, err := service.ReconcileTenantLinks(ctx, repos.Clients, repos.Users, tenantID)
		for _, r := range repairs {
			log.Printf("tenant %s: %s (client=%s user=%s)", tenantID, r.Action, idString(r.ClientID), idString(r.UserID))
		}
		total += len(repairs)
		if err != nil {
			return fmt.Errorf("tenant %s: %w", tenantID, err)
		}
		log.Printf("tenant %s: %d repairs", tenantID, len(repairs))
	}

	log.Printf("reconcile complete: %d repairs across %d tenants", total, len(tenantIDs))
	return nil
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}
