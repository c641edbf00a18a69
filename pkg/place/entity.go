package place

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Place describes a user-submitted point of interest. CreatorID is the
// place side of the user/place relationship; the owning user's PlaceIDs
// always agrees with it after a committed write.
type Place struct {
	ID          uuid.UUID
	Title       string
	Description string
	ImageRef    string
	Location    Location
	Address     string
	CreatorID   uuid.UUID
	CreatedAt   time.Time
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Repository is the persistence port for places. Create and Delete
// also maintain the owner's PlaceIDs in the same store transaction, so
// readers never observe one half of the relationship.
type Repository interface {
	Create(ctx context.Context, p Place) error
	GetByID(ctx context.Context, id uuid.UUID) (Place, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Place, error)
	Update(ctx context.Context, p Place) error
	Delete(ctx context.Context, p Place) error
}

// UserDirectory confirms a creator exists before a place is attached.
type UserDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// BlobStore removes stored image files. Removal failures are never
// surfaced to clients; an orphaned blob is acceptable.
type BlobStore interface {
	Remove(path string) error
}
