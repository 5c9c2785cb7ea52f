package profile

import (
	"time"

	"github.com/pictocat/pictocat/internal/userdata"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Profile is a registered user together with their game document.
type Profile struct {
	ID         string            `json:"id"`
	Username   string            `json:"username"`
	Data       userdata.UserData `json:"data"`
	Role       string            `json:"role"`
	IsVerified bool              `json:"isVerified"`
	Version    int64             `json:"version"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// SignupEvent is the payload the identity provider posts when an account is
// confirmed.
type SignupEvent struct {
	Event string `json:"event"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SaveResult reports whether a save replaced the stored document.
type SaveResult struct {
	Applied bool  `json:"applied"`
	Version int64 `json:"version"`
}

// PublicUser is what user search exposes about a profile.
type PublicUser struct {
	Username   string `json:"username"`
	IsVerified bool   `json:"isVerified"`
}
