package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a domain entity representing a registered account.
// PlaceIDs is the owner side of the user/place relationship; it is only
// ever changed together with the matching place row inside one store
// transaction.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	ImageRef     string
	PlaceIDs     []uuid.UUID
	CreatedAt    time.Time
}
