package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fieldpilot/internal/config"
	"fieldpilot/internal/domain"
	"fieldpilot/internal/port"
)

// MediaUploadInput is the DTO for attaching an uploaded file to an entity.
type MediaUploadInput struct {
	Owner   domain.MediaOwner
	OwnerID uuid.UUID
	File    multipart.File
	Header  *multipart.FileHeader
}

// MediaObject is a stored media key plus a short-lived download URL.
type MediaObject struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// MediaService defines media upload and download for job entities.
type MediaService interface {
	Upload(ctx context.Context, actor Actor, input MediaUploadInput) (*MediaObject, error)
	DownloadURL(ctx context.Context, actor Actor, key string) (string, error)
}

type mediaService struct {
	storage   port.MediaStorage
	sessions  WorkSessionService
	incidents IncidentService
	proposals ProposalService
	cfg       *config.S3Config
}

// NewMediaService creates a new MediaService implementation. Attachment goes
// through the owning entity's service so its access rules apply.
func NewMediaService(
	storage port.MediaStorage,
	sessions WorkSessionService,
	incidents IncidentService,
	proposals ProposalService,
	cfg *config.S3Config,
) MediaService {
	return &mediaService{
		storage:   storage,
		sessions:  sessions,
		incidents: incidents,
		proposals: proposals,
		cfg:       cfg,
	}
}

func (s *mediaService) Upload(ctx context.Context, actor Actor, input MediaUploadInput) (*MediaObject, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if input.Header.Size > s.cfg.MaxFileSizeMB*1024*1024 {
		return nil, domain.ErrFileTooLarge
	}

	// Magic-byte sniffing; the extension alone is not trusted.
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	contentType := http.DetectContentType(buf[:n])
	if _, ok := domain.AllowedContentTypes[contentType]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	// Read access first so nothing is written for entities the actor cannot see.
	if _, err := s.mediaKeys(ctx, actor, input.Owner, input.OwnerID); err != nil {
		return nil, err
	}

	key := mediaKey(actor.TenantID, input.Owner, input.OwnerID, ext)
	err = s.storage.Put(ctx, port.PutObjectInput{
		Key:         key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Printf("mediaService.Upload: storage put failed for %s: %v", key, err)
		return nil, domain.ErrUploadFailed
	}

	if err := s.attach(ctx, actor, input.Owner, input.OwnerID, key); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			log.Printf("WARNING: mediaService.Upload: orphaned object %s: %v", key, delErr)
		}
		return nil, err
	}
	log.Printf("mediaService.Upload: %s (%s, %d bytes) attached to %s %s by %s",
		key, contentType, input.Header.Size, input.Owner, input.OwnerID, actor.UserID)

	url, err := s.storage.PresignGet(ctx, key, s.expiry())
	if err != nil {
		log.Printf("mediaService.Upload: presign failed for %s: %v", key, err)
		url = ""
	}
	return &MediaObject{Key: key, ContentType: contentType, URL: url}, nil
}

// DownloadURL presigns a key after checking the actor can see the entity it
// belongs to.
func (s *mediaService) DownloadURL(ctx context.Context, actor Actor, key string) (string, error) {
	owner, ownerID, err := parseMediaKey(actor.TenantID, key)
	if err != nil {
		return "", err
	}
	keys, err := s.mediaKeys(ctx, actor, owner, ownerID)
	if err != nil {
		return "", err
	}
	for _, k := range keys {
		if k == key {
			return s.storage.PresignGet(ctx, key, s.expiry())
		}
	}
	return "", domain.ErrNotFound
}

// mediaKeys loads the owning entity with the actor's read access and returns
// the keys already attached to it.
func (s *mediaService) mediaKeys(ctx context.Context, actor Actor, owner domain.MediaOwner, ownerID uuid.UUID) ([]string, error) {
	switch owner {
	case domain.MediaOwnerWorkSession:
		ws, err := s.sessions.GetByID(ctx, actor, ownerID)
		if err != nil {
			return nil, err
		}
		return ws.Media, nil
	case domain.MediaOwnerIncident:
		inc, err := s.incidents.GetByID(ctx, actor, ownerID)
		if err != nil {
			return nil, err
		}
		return inc.Photos, nil
	case domain.MediaOwnerProposal:
		p, err := s.proposals.GetByID(ctx, actor, ownerID)
		if err != nil {
			return nil, err
		}
		return p.Images, nil
	default:
		return nil, fmt.Errorf("%w: unknown media owner %q", domain.ErrInvalidInput, owner)
	}
}

func (s *mediaService) attach(ctx context.Context, actor Actor, owner domain.MediaOwner, ownerID uuid.UUID, key string) error {
	switch owner {
	case domain.MediaOwnerWorkSession:
		_, err := s.sessions.AddMedia(ctx, actor, ownerID, key)
		return err
	case domain.MediaOwnerIncident:
		inc, err := s.incidents.GetByID(ctx, actor, ownerID)
		if err != nil {
			return err
		}
		photos := append(append([]string{}, inc.Photos...), key)
		_, err = s.incidents.Edit(ctx, actor, ownerID, EditIncidentInput{Photos: photos})
		return err
	case domain.MediaOwnerProposal:
		p, err := s.proposals.GetByID(ctx, actor, ownerID)
		if err != nil {
			return err
		}
		images := append(append([]string{}, p.Images...), key)
		_, err = s.proposals.Edit(ctx, actor, ownerID, EditProposalInput{Images: images})
		return err
	default:
		return fmt.Errorf("%w: unknown media owner %q", domain.ErrInvalidInput, owner)
	}
}

func (s *mediaService) expiry() time.Duration {
	return time.Duration(s.cfg.PresignExpiry) * time.Second
}

// mediaKey builds tenants/{tenant}/{owner}/{ownerID}/{random}.{ext}.
func mediaKey(tenantID uuid.UUID, owner domain.MediaOwner, ownerID uuid.UUID, ext string) string {
	return fmt.Sprintf("tenants/%s/%s/%s/%s.%s", tenantID, owner, ownerID, uuid.New(), ext)
}

func parseMediaKey(tenantID uuid.UUID, key string) (domain.MediaOwner, uuid.UUID, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 5 || parts[0] != "tenants" || parts[1] != tenantID.String() {
		return "", uuid.Nil, domain.ErrNotFound
	}
	ownerID, err := uuid.Parse(parts[3])
	if err != nil {
		return "", uuid.Nil, domain.ErrNotFound
	}
	return domain.MediaOwner(parts[2]), ownerID, nil
}
