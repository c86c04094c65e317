package domain

import (
	"time"

	"github.com/google/uuid"
)

// Family is a botanical family, a stable reference entity plants point at.
// Names are unique.
type Family struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attribute is a reusable plant trait tag, unique by name.
type Attribute struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
