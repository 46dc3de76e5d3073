// Package search provides the Bleve-backed user directory search.
package search

import (
	"github.com/streakboard/streakboard-server/internal/domain"
)

// UserDocument is the indexed form of a user.
type UserDocument struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"created_at"` // Unix millis
}

// UserToDocument converts a user to its search document.
func UserToDocument(u *domain.User) *UserDocument {
	return &UserDocument{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UnixMilli(),
	}
}

// ToMap returns the document keyed by mapped field names.
func (d *UserDocument) ToMap() map[string]any {
	return map[string]any{
		"id":         d.ID,
		"name":       d.Name,
		"username":   d.Username,
		"email":      d.Email,
		"created_at": float64(d.CreatedAt),
	}
}
