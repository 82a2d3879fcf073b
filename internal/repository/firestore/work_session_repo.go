package firestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	gcfs "cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// Active mirrors end_time == nil so the active-session lookup is a plain equality filter.
type workSessionDoc struct {
	TenantID   string     `firestore:"tenant_id"`
	JobID      string     `firestore:"job_id"`
	OperatorID string     `firestore:"operator_id"`
	Date       time.Time  `firestore:"date"`
	StartTime  time.Time  `firestore:"start_time"`
	EndTime    *time.Time `firestore:"end_time"`
	Active     bool       `firestore:"active"`
	Notes      string     `firestore:"notes"`
	Media      []string   `firestore:"media"`
	CreatedAt  time.Time  `firestore:"created_at"`
}

func decodeWorkSession(snap *gcfs.DocumentSnapshot) (domain.WorkSession, error) {
	var doc workSessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.WorkSession{}, err
	}
	return domain.WorkSession{
		ID:         parseID(snap.Ref.ID),
		TenantID:   parseID(doc.TenantID),
		JobID:      parseID(doc.JobID),
		OperatorID: parseID(doc.OperatorID),
		Date:       doc.Date,
		StartTime:  doc.StartTime,
		EndTime:    doc.EndTime,
		Notes:      doc.Notes,
		Media:      domain.StringList(doc.Media),
		CreatedAt:  doc.CreatedAt,
	}, nil
}

type workSessionRepo struct {
	client *gcfs.Client
}

// NewWorkSessionRepo creates a Firestore-backed WorkSessionRepository.
func NewWorkSessionRepo(client *gcfs.Client) port.WorkSessionRepository {
	return &workSessionRepo{client: client}
}

func (r *workSessionRepo) col(tenantID uuid.UUID) *gcfs.CollectionRef {
	return tenantCol(r.client, tenantID, colWorkSessions)
}

func (r *workSessionRepo) activeQuery(tenantID, operatorID uuid.UUID) gcfs.Query {
	return r.col(tenantID).
		Where("operator_id", "==", operatorID.String()).
		Where("active", "==", true)
}

// Start checks for an open session and creates the new one in the same transaction.
func (r *workSessionRepo) Start(ctx context.Context, s *domain.WorkSession) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now().UTC()
	if s.Media == nil {
		s.Media = domain.StringList{}
	}

	ref := r.col(s.TenantID).Doc(s.ID.String())
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfs.Transaction) error {
		open, err := tx.Documents(r.activeQuery(s.TenantID, s.OperatorID).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(open) > 0 {
			return domain.ErrActiveSessionExists
		}
		return tx.Create(ref, workSessionDoc{
			TenantID:   s.TenantID.String(),
			JobID:      s.JobID.String(),
			OperatorID: s.OperatorID.String(),
			Date:       s.Date,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			Active:     s.EndTime == nil,
			Notes:      s.Notes,
			Media:      []string(s.Media),
			CreatedAt:  s.CreatedAt,
		})
	})
	return txError("workSessionRepo.Start", err)
}

func (r *workSessionRepo) GetByID(ctx context.Context, tenantID, sessionID uuid.UUID) (*domain.WorkSession, error) {
	snap, err := r.col(tenantID).Doc(sessionID.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("workSessionRepo.GetByID: %w", err)
	}
	s, err := decodeWorkSession(snap)
	if err != nil {
		return nil, fmt.Errorf("workSessionRepo.GetByID decode: %w", err)
	}
	return &s, nil
}

func (r *workSessionRepo) GetActive(ctx context.Context, tenantID, operatorID uuid.UUID) (*domain.WorkSession, error) {
	sessions, err := collect(r.activeQuery(tenantID, operatorID).Limit(1).Documents(ctx), decodeWorkSession)
	if err != nil {
		return nil, fmt.Errorf("workSessionRepo.GetActive: %w", err)
	}
	if len(sessions) == 0 {
		return nil, domain.ErrNotFound
	}
	return &sessions[0], nil
}

func (r *workSessionRepo) List(ctx context.Context, tenantID uuid.UUID, f port.WorkSessionFilter) ([]domain.WorkSession, error) {
	if f.JobIDs != nil && len(f.JobIDs) == 0 {
		return []domain.WorkSession{}, nil
	}

	q := r.col(tenantID).Query
	if f.OperatorID != nil {
		q = q.Where("operator_id", "==", f.OperatorID.String())
	}
	if f.JobID != nil {
		q = q.Where("job_id", "==", f.JobID.String())
	}
	if f.ActiveOnly {
		q = q.Where("active", "==", true)
	}
	if f.From != nil {
		q = q.Where("start_time", ">=", *f.From)
	}
	if f.To != nil {
		q = q.Where("start_time", "<", *f.To)
	}

	var sessions []domain.WorkSession
	var err error
	if f.JobIDs != nil {
		sessions, err = listIn(ctx, q, "job_id", f.JobIDs, decodeWorkSession)
	} else {
		sessions, err = collect(q.Documents(ctx), decodeWorkSession)
	}
	if err != nil {
		return nil, fmt.Errorf("workSessionRepo.List: %w", err)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartTime.After(sessions[j].StartTime)
	})
	return sessions, nil
}

func (r *workSessionRepo) Update(ctx context.Context, s *domain.WorkSession) error {
	media := []string(s.Media)
	if media == nil {
		media = []string{}
	}
	_, err := r.col(s.TenantID).Doc(s.ID.String()).Update(ctx, []gcfs.Update{
		{Path: "end_time", Value: s.EndTime},
		{Path: "active", Value: s.EndTime == nil},
		{Path: "notes", Value: s.Notes},
		{Path: "media", Value: media},
	})
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("workSessionRepo.Update: %w", err)
	}
	return nil
}
