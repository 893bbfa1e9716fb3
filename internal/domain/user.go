package domain

import (
	"context"
	"time"
)

// User is the club's identity record. A user may additionally hold a Player
// profile; the IsPlayer flag is the sole trigger for that profile's lifecycle.
type User struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Name      string    `bson:"name" json:"name"`
	Gender    string    `bson:"gender" json:"gender"`
	Role      string    `bson:"role" json:"role"`
	IsPlayer  bool      `bson:"is_player" json:"is_player"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Role constants
const (
	RoleMember  = "member"
	RoleCaptain = "captain"
	RoleGuest   = "guest"
	RoleAdmin   = "admin" // staff identity, never rostered
)

// CanHoldPlayerProfile reports whether the user's role allows a player profile.
// Guests and staff accounts cannot be promoted.
func (u *User) CanHoldPlayerProfile() bool {
	return u.Role == RoleMember || u.Role == RoleCaptain
}

// UserRepository defines operations for managing users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	SetPlayerFlag(ctx context.Context, id string, isPlayer bool) error
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]*User, error)
}
