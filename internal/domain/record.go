package domain

import "time"

// Record carries the identity and lifecycle timestamps shared by persisted entities.
type Record struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (r *Record) InitTimestamps(now time.Time) {
	r.CreatedAt = now
	r.UpdatedAt = now
}

// Touch records a modification at now.
func (r *Record) Touch(now time.Time) {
	r.UpdatedAt = now
}

// IsDeleted returns true if the entity has been soft-deleted.
func (r *Record) IsDeleted() bool {
	return r.DeletedAt != nil
}

// MarkDeleted soft-deletes the entity at now.
func (r *Record) MarkDeleted(now time.Time) {
	r.DeletedAt = &now
	r.UpdatedAt = now
}
