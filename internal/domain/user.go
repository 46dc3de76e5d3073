package domain

import "time"

// User is a registered account.
type User struct {
	Record
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	Name            string     `json:"name"`
	PasswordHash    string     `json:"-"`
	StreakCount     int        `json:"streak_count"`
	StreakUpdatedAt *time.Time `json:"streak_updated_at,omitempty"`
}

// DisplayName returns the first non-empty of name, username and email.
func (u *User) DisplayName() string {
	return u.Identity().DisplayName()
}

// Identity returns the presentation fields used by leaderboards and search.
func (u *User) Identity() Identity {
	return Identity{Name: u.Name, Username: u.Username, Email: u.Email}
}

// Identity is the set of fields a user can be presented by.
type Identity struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DisplayName picks name, then username, then email.
func (i Identity) DisplayName() string {
	switch {
	case i.Name != "":
		return i.Name
	case i.Username != "":
		return i.Username
	default:
		return i.Email
	}
}

// PublicUser is the user shape exposed to other users.
type PublicUser struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	AvatarColor string    `json:"avatar_color"`
	StreakCount int       `json:"streak_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Streak is the persisted streak counter.
type Streak struct {
	Count     int        `json:"count"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Profile is a user's profile with social counters.
type Profile struct {
	ID             string    `json:"id"`
	Email          string    `json:"email,omitempty"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	DisplayName    string    `json:"display_name"`
	AvatarColor    string    `json:"avatar_color"`
	Streak         Streak    `json:"streak"`
	FollowerCount  int       `json:"follower_count"`
	FollowingCount int       `json:"following_count"`
	CompletedToday int       `json:"completed_today"`
	CreatedAt      time.Time `json:"created_at"`
}
