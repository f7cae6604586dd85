package model

import "time"

// ExternalProject represents a project registered by a partner system.
// The ID is client-supplied and globally unique; every project belongs
// to exactly one owner.
type ExternalProject struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
