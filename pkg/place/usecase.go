package place

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MinDescriptionLength mirrors the create/update validation applied at
// the HTTP boundary.
const MinDescriptionLength = 5

// UseCase encapsulates place CRUD with ownership enforcement.
type UseCase interface {
	Create(ctx context.Context, creatorID uuid.UUID, title, description string, loc Location, address, imageRef string) (Place, error)
	GetByID(ctx context.Context, id uuid.UUID) (Place, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Place, error)
	Update(ctx context.Context, identity, id uuid.UUID, title, description string) (Place, error)
	Delete(ctx context.Context, identity, id uuid.UUID) error
}

type service struct {
	repo  Repository
	users UserDirectory
	blobs BlobStore
}

// NewService returns the default implementation of UseCase.
func NewService(repo Repository, users UserDirectory, blobs BlobStore) UseCase {
	return &service{repo: repo, users: users, blobs: blobs}
}

func (s *service) Create(ctx context.Context, creatorID uuid.UUID, title, description string, loc Location, address, imageRef string) (Place, error) {
	title = strings.TrimSpace(title)
	address = strings.TrimSpace(address)
	if title == "" || address == "" || len(description) < MinDescriptionLength {
		return Place{}, ErrInvalidInput
	}
	ok, err := s.users.Exists(ctx, creatorID)
	if err != nil {
		return Place{}, err
	}
	if !ok {
		return Place{}, ErrUserNotFound
	}
	p := Place{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		ImageRef:    imageRef,
		Location:    loc,
		Address:     address,
		CreatorID:   creatorID,
		CreatedAt:   time.Now().UTC(),
	}
	// Place row and the owner's PlaceIDs entry commit together or not
	// at all; the repository runs both writes in one transaction.
	if err := s.repo.Create(ctx, p); err != nil {
		return Place{}, err
	}
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (Place, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Place, error) {
	places, err := s.repo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, ErrNotFound
	}
	return places, nil
}

func (s *service) Update(ctx context.Context, identity, id uuid.UUID, title, description string) (Place, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(description) < MinDescriptionLength {
		return Place{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Place{}, err
	}
	if p.CreatorID != identity {
		return Place{}, ErrForbidden
	}
	p.Title = title
	p.Description = description
	if err := s.repo.Update(ctx, p); err != nil {
		return Place{}, err
	}
	return p, nil
}

func (s *service) Delete(ctx context.Context, identity, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.CreatorID != identity {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, p); err != nil {
		return err
	}
	// The image lives outside the transactional store; removal after
	// commit is best effort only.
	if p.ImageRef != "" {
		if err := s.blobs.Remove(p.ImageRef); err != nil {
			log.Printf("remove place image %s: %v", p.ImageRef, err)
		}
	}
	return nil
}
