// Package repository opens the configured entity store and exposes its
// repositories behind the port interfaces.
package repository

import (
	"context"
	"fmt"
	"log"

	"fieldpilot/internal/auth/firebase"
	"fieldpilot/internal/config"
	"fieldpilot/internal/port"
	"fieldpilot/internal/repository/firestore"
	"fieldpilot/internal/repository/postgres"
)

// Set groups every repository of one store backend.
type Set struct {
	Tenants      port.TenantRepository
	Users        port.UserRepository
	Clients      port.ClientRepository
	Jobs         port.JobRepository
	Proposals    port.ProposalRepository
	WorkSessions port.WorkSessionRepository
	Incidents    port.IncidentRepository
	Branding     port.BrandingRepository
	Health       port.HealthChecker

	close func() error
}

// Close releases the underlying connection.
func (s *Set) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to the store selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (*Set, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Printf("repository.Open: using postgres store %s:%d/%s", cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
		return &Set{
			Tenants:      postgres.NewTenantRepo(db),
			Users:        postgres.NewUserRepo(db),
			Clients:      postgres.NewClientRepo(db),
			Jobs:         postgres.NewJobRepo(db),
			Proposals:    postgres.NewProposalRepo(db),
			WorkSessions: postgres.NewWorkSessionRepo(db),
			Incidents:    postgres.NewIncidentRepo(db),
			Branding:     postgres.NewBrandingRepo(db),
			Health:       postgres.NewPinger(db),
			close:        db.Close,
		}, nil

	case config.StoreFirestore:
		app, err := firebase.NewApp(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
		if err != nil {
			return nil, err
		}
		client, err := firestore.NewClient(ctx, app)
		if err != nil {
			return nil, err
		}
		log.Printf("repository.Open: using firestore store (project %q)", cfg.Firestore.ProjectID)
		return &Set{
			Tenants:      firestore.NewTenantRepo(client),
			Users:        firestore.NewUserRepo(client),
			Clients:      firestore.NewClientRepo(client),
			Jobs:         firestore.NewJobRepo(client),
			Proposals:    firestore.NewProposalRepo(client),
			WorkSessions: firestore.NewWorkSessionRepo(client),
			Incidents:    firestore.NewIncidentRepo(client),
			Branding:     firestore.NewBrandingRepo(client),
			Health:       firestore.NewPinger(client),
			close:        client.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
