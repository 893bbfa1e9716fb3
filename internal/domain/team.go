package domain

import (
	"context"
	"time"
)

// Team carries a name and competition level only. Rosters are never stored on
// the team document: membership is always derived by querying players whose
// TeamIDs contains the team's id.
type Team struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Level     string    `bson:"level" json:"level"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TeamRepository defines operations for managing teams
type TeamRepository interface {
	Create(ctx context.Context, team *Team) error
	GetByID(ctx context.Context, id string) (*Team, error)
	GetAll(ctx context.Context) ([]*Team, error)
	Delete(ctx context.Context, id string) error
}
