// Command importclients loads clients for one tenant from an XLSX sheet.
// Rows failing the client_import_row schema are reported and skipped, as are
// companies the tenant already has.
// Usage: go run ./cmd/importclients -tenant <uuid> -file clients.xlsx [-dry-run]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"fieldpilot/internal/config"
	"fieldpilot/internal/domain"
	"fieldpilot/internal/export"
	"fieldpilot/internal/repository"
	"fieldpilot/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	tenantFlag := flag.String("tenant", "", "tenant ID to import into")
	file := flag.String("file", "", "path to the XLSX workbook")
	dryRun := flag.Bool("dry-run", false, "validate rows without writing")
	flag.Parse()

	tenantID, err := uuid.Parse(*tenantFlag)
	if err != nil {
		return fmt.Errorf("invalid -tenant: %w", err)
	}
	if *file == "" {
		return errors.New("-file is required")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := export.ReadClientRows(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *file, err)
	}
	log.Printf("read %d client rows from %s", len(rows), *file)

	registry, err := validator.NewDefaultRegistry()
	if err != nil {
		return fmt.Errorf("loading schemas: %w", err)
	}
	v := validator.New(registry)

	ctx := context.Background()
	repos, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = repos.Close() }()

	if _, err := repos.Tenants.GetByID(ctx, tenantID); err != nil {
		return fmt.Errorf("tenant %s: %w", tenantID, err)
	}

	existing, err := repos.Clients.List(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("listing clients: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for i := range existing {
		seen[strings.ToLower(existing[i].CompanyName)] = true
	}

	var created, skipped, invalid int
	for i := range rows {
		row := &rows[i]

		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("line %d: %w", row.Line, err)
		}
		if err := v.Validate(ctx, validator.SchemaClientImportRow, data); err != nil {
			log.Printf("WARN: line %d: %v", row.Line, err)
			invalid++
			continue
		}

		key := strings.ToLower(row.CompanyName)
		if seen[key] {
			log.Printf("line %d: %q already exists, skipping", row.Line, row.CompanyName)
			skipped++
			continue
		}
		seen[key] = true

		if *dryRun {
			created++
			continue
		}

		now := time.Now().UTC()
		client := &domain.Client{
			ID:           uuid.New(),
			TenantID:     tenantID,
			CompanyName:  row.CompanyName,
			ContactName:  row.ContactName,
			ContactEmail: strings.ToLower(row.ContactEmail),
			Phone:        row.Phone,
			Address:      row.Address,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repos.Clients.Create(ctx, client); err != nil {
			return fmt.Errorf("line %d: creating client: %w", row.Line, err)
		}
		created++
	}

	verb := "created"
	if *dryRun {
		verb = "would create"
	}
	log.Printf("import done: %s %d, skipped %d existing, %d invalid", verb, created, skipped, invalid)
	return nil
}
