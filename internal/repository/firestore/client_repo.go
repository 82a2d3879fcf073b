package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	gcfs "cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

type clientDoc struct {
	TenantID     string    `firestore:"tenant_id"`
	CompanyName  string    `firestore:"company_name"`
	ContactName  string    `firestore:"contact_name"`
	ContactEmail string    `firestore:"contact_email"`
	Phone        string    `firestore:"phone"`
	Address      string    `firestore:"address"`
	LinkedUserID *string   `firestore:"linked_user_id"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

func decodeClient(snap *gcfs.DocumentSnapshot) (domain.Client, error) {
	var doc clientDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.Client{}, err
	}
	return domain.Client{
		ID:           parseID(snap.Ref.ID),
		TenantID:     parseID(doc.TenantID),
		CompanyName:  doc.CompanyName,
		ContactName:  doc.ContactName,
		ContactEmail: doc.ContactEmail,
		Phone:        doc.Phone,
		Address:      doc.Address,
		LinkedUserID: parseOptID(doc.LinkedUserID),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

type clientRepo struct {
	client *gcfs.Client
}

// NewClientRepo creates a Firestore-backed ClientRepository.
func NewClientRepo(client *gcfs.Client) port.ClientRepository {
	return &clientRepo{client: client}
}

func (r *clientRepo) clientRef(tenantID, clientID uuid.UUID) *gcfs.DocumentRef {
	return tenantCol(r.client, tenantID, colClients).Doc(clientID.String())
}

func (r *clientRepo) userRef(tenantID, userID uuid.UUID) *gcfs.DocumentRef {
	return tenantCol(r.client, tenantID, colUsers).Doc(userID.String())
}

func (r *clientRepo) Create(ctx context.Context, c *domain.Client) error {
	c.ID = uuid.New()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	doc := clientDoc{
		TenantID:     c.TenantID.String(),
		CompanyName:  c.CompanyName,
		ContactName:  c.ContactName,
		ContactEmail: c.ContactEmail,
		Phone:        c.Phone,
		Address:      c.Address,
		LinkedUserID: optIDString(c.LinkedUserID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.clientRef(c.TenantID, c.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("clientRepo.Create: %w", err)
	}
	return nil
}

func (r *clientRepo) GetByID(ctx context.Context, tenantID, clientID uuid.UUID) (*domain.Client, error) {
	snap, err := r.clientRef(tenantID, clientID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("clientRepo.GetByID: %w", err)
	}
	c, err := decodeClient(snap)
	if err != nil {
		return nil, fmt.Errorf("clientRepo.GetByID decode: %w", err)
	}
	return &c, nil
}

func (r *clientRepo) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Client, error) {
	clients, err := collect(tenantCol(r.client, tenantID, colClients).Documents(ctx), decodeClient)
	if err != nil {
		return nil, fmt.Errorf("clientRepo.List: %w", err)
	}
	sort.SliceStable(clients, func(i, j int) bool {
		return strings.ToLower(clients[i].CompanyName) < strings.ToLower(clients[j].CompanyName)
	})
	return clients, nil
}

func (r *clientRepo) Update(ctx context.Context, c *domain.Client) error {
	c.UpdatedAt = time.Now().UTC()
	_, err := r.clientRef(c.TenantID, c.ID).Update(ctx, []gcfs.Update{
		{Path: "company_name", Value: c.CompanyName},
		{Path: "contact_name", Value: c.ContactName},
		{Path: "contact_email", Value: c.ContactEmail},
		{Path: "phone", Value: c.Phone},
		{Path: "address", Value: c.Address},
		{Path: "updated_at", Value: c.UpdatedAt},
	})
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("clientRepo.Update: %w", err)
	}
	return nil
}

// Delete removes the client and clears the linked user's back pointer atomically.
func (r *clientRepo) Delete(ctx context.Context, tenantID, clientID uuid.UUID) error {
	ref := r.clientRef(tenantID, clientID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfs.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return domain.ErrNotFound
			}
			return err
		}
		c, err := decodeClient(snap)
		if err != nil {
			return err
		}

		var userRef *gcfs.DocumentRef
		if c.LinkedUserID != nil {
			userRef = r.userRef(tenantID, *c.LinkedUserID)
			userSnap, err := tx.Get(userRef)
			if err != nil && !isNotFound(err) {
				return err
			}
			if err != nil || !pointsTo(userSnap, "linked_client_id", clientID) {
				userRef = nil
			}
		}

		if userRef != nil {
			if err := tx.Update(userRef, clearLink("linked_client_id")); err != nil {
				return err
			}
		}
		return tx.Delete(ref)
	})
	return txError("clientRepo.Delete", err)
}

func (r *clientRepo) LinkUser(ctx context.Context, tenantID, clientID, userID uuid.UUID) error {
	cRef := r.clientRef(tenantID, clientID)
	uRef := r.userRef(tenantID, userID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfs.Transaction) error {
		cSnap, err := tx.Get(cRef)
		if err != nil {
			if isNotFound(err) {
				return domain.ErrNotFound
			}
			return err
		}
		uSnap, err := tx.Get(uRef)
		if err != nil {
			if isNotFound(err) {
				return domain.ErrNotFound
			}
			return err
		}
		c, err := decodeClient(cSnap)
		if err != nil {
			return err
		}
		u, err := decodeUser(uSnap)
		if err != nil {
			return err
		}

		if c.LinkedUserID != nil && *c.LinkedUserID != userID {
			return domain.ErrAlreadyLinked
		}
		if u.LinkedClientID != nil && *u.LinkedClientID != clientID {
			return domain.ErrAlreadyLinked
		}

		now := time.Now().UTC()
		if err := tx.Update(cRef, []gcfs.Update{
			{Path: "linked_user_id", Value: userID.String()},
			{Path: "updated_at", Value: now},
		}); err != nil {
			return err
		}
		return tx.Update(uRef, []gcfs.Update{
			{Path: "linked_client_id", Value: clientID.String()},
			{Path: "updated_at", Value: now},
		})
	})
	return txError("clientRepo.LinkUser", err)
}

func (r *clientRepo) UnlinkUser(ctx context.Context, tenantID, clientID uuid.UUID) error {
	cRef := r.clientRef(tenantID, clientID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfs.Transaction) error {
		cSnap, err := tx.Get(cRef)
		if err != nil {
			if isNotFound(err) {
				return domain.ErrNotFound
			}
			return err
		}
		c, err := decodeClient(cSnap)
		if err != nil {
			return err
		}
		if c.LinkedUserID == nil {
			return domain.ErrClientNotLinked
		}

		// Only clear the user side if it still points back at this client.
		uRef := r.userRef(tenantID, *c.LinkedUserID)
		uSnap, err := tx.Get(uRef)
		if err != nil && !isNotFound(err) {
			return err
		}
		clearUser := err == nil && pointsTo(uSnap, "linked_client_id", clientID)

		if err := tx.Update(cRef, clearLink("linked_user_id")); err != nil {
			return err
		}
		if clearUser {
			return tx.Update(uRef, clearLink("linked_client_id"))
		}
		return nil
	})
	return txError("clientRepo.UnlinkUser", err)
}

func (r *clientRepo) ClearUserLink(ctx context.Context, tenantID, userID uuid.UUID) error {
	_, err := r.userRef(tenantID, userID).Update(ctx, clearLink("linked_client_id"))
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("clientRepo.ClearUserLink: %w", err)
	}
	return nil
}

func (r *clientRepo) ClearClientLink(ctx context.Context, tenantID, clientID uuid.UUID) error {
	_, err := r.clientRef(tenantID, clientID).Update(ctx, clearLink("linked_user_id"))
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("clientRepo.ClearClientLink: %w", err)
	}
	return nil
}

func clearLink(field string) []gcfs.Update {
	return []gcfs.Update{
		{Path: field, Value: nil},
		{Path: "updated_at", Value: time.Now().UTC()},
	}
}

// pointsTo reports whether the snapshot's string field holds id.
func pointsTo(snap *gcfs.DocumentSnapshot, field string, id uuid.UUID) bool {
	v, err := snap.DataAt(field)
	if err != nil {
		return false
	}
	s, ok := v.(string)
	return ok && s == id.String()
}

// txError passes domain sentinels through and wraps everything else.
func txError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		domain.ErrNotFound,
		domain.ErrAlreadyLinked,
		domain.ErrClientNotLinked,
		domain.ErrActiveSessionExists,
		domain.ErrDuplicateEmail,
		domain.ErrProposalExists,
		domain.ErrProposalAlreadyConverted,
		domain.ErrProposalNotApproved,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
