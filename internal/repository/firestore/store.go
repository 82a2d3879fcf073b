// Package firestore implements the repository ports on Cloud Firestore.
// Tenant data lives under tenants/{tenantID}/{collection}/{id}.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log"

	gcfs "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	colTenants      = "tenants"
	colUsers        = "users"
	colClients      = "clients"
	colJobs         = "jobs"
	colProposals    = "proposals"
	colVersions     = "versions"
	colWorkSessions = "work_sessions"
	colIncidents    = "incident_reports"
	colSettings     = "settings"
	docBranding     = "branding"

	// maxInValues is Firestore's limit on values in an "in" filter.
	maxInValues = 30
)

// NewClient opens a Firestore client from an initialized Firebase app.
func NewClient(ctx context.Context, app *firebase.App) (*gcfs.Client, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firestore client: %w", err)
	}
	log.Printf("firestore.NewClient: connected")
	return client, nil
}

// Pinger reports Firestore reachability for readiness checks.
type Pinger struct {
	client *gcfs.Client
}

// NewPinger wraps a client as a port.HealthChecker.
func NewPinger(client *gcfs.Client) *Pinger {
	return &Pinger{client: client}
}

func (p *Pinger) Ping(ctx context.Context) error {
	iter := p.client.Collection(colTenants).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

func tenantRef(client *gcfs.Client, tenantID uuid.UUID) *gcfs.DocumentRef {
	return client.Collection(colTenants).Doc(tenantID.String())
}

func tenantCol(client *gcfs.Client, tenantID uuid.UUID, name string) *gcfs.CollectionRef {
	return tenantRef(client, tenantID).Collection(name)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// collect drains a query iterator, decoding every document with decode.
func collect[T any](iter *gcfs.DocumentIterator, decode func(*gcfs.DocumentSnapshot) (T, error)) ([]T, error) {
	defer iter.Stop()
	out := []T{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		v, err := decode(snap)
		if err != nil {
			log.Printf("firestore.collect: skipping %s: %v", snap.Ref.Path, err)
			continue
		}
		out = append(out, v)
	}
}

// chunkIDs splits ids into groups small enough for an "in" filter.
func chunkIDs(ids []uuid.UUID, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunk := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			chunk = append(chunk, id.String())
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// listIn runs q once per chunk of ids with field "in" the chunk and merges the results.
func listIn[T any](ctx context.Context, q gcfs.Query, field string, ids []uuid.UUID, decode func(*gcfs.DocumentSnapshot) (T, error)) ([]T, error) {
	out := []T{}
	for _, chunk := range chunkIDs(ids, maxInValues) {
		part, err := collect(q.Where(field, "in", chunk).Documents(ctx), decode)
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func optIDString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseOptID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}
