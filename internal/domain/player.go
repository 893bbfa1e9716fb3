package domain

import (
	"context"
	"time"
)

// Ranking bounds. Rankings outside this range are clamped at the store boundary.
const (
	MinRanking = 0
	MaxRanking = 5000
)

// Player is a user's sports profile. Exactly one player exists per user with
// IsPlayer set, and they are created and destroyed together.
//
// TeamIDs is the only stored membership edge in the system: teams never
// persist rosters, and matches only hold references that must stay consistent
// with this field.
type Player struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	UserID         string    `bson:"user_id" json:"user_id"`
	TeamIDs        []string  `bson:"team_ids" json:"team_ids"`
	SinglesRanking int       `bson:"singles_ranking" json:"singles_ranking"`
	DoublesRanking int       `bson:"doubles_ranking" json:"doubles_ranking"`
	IsActivePlayer bool      `bson:"is_active_player" json:"is_active_player"`
	PhotoURL       string    `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// HasTeam reports whether the player is a member of the given team.
func (p *Player) HasTeam(teamID string) bool {
	for _, id := range p.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// PlayerDetail is a display-ready player record joined with the owning user.
type PlayerDetail struct {
	PlayerID       string `bson:"player_id" json:"player_id"`
	UserID         string `bson:"user_id" json:"user_id"`
	Name           string `bson:"name" json:"name"`
	Gender         string `bson:"gender" json:"gender"`
	SinglesRanking int    `bson:"singles_ranking" json:"singles_ranking"`
	DoublesRanking int    `bson:"doubles_ranking" json:"doubles_ranking"`
}

// PlayerBatchUpdate describes one heterogeneous batch update call. Nil pointer
// fields are absent. If an offset and its absolute counterpart are both set,
// the offset wins and the absolute value is ignored for that call.
type PlayerBatchUpdate struct {
	IsActivePlayer       *bool    `json:"is_active_player,omitempty"`
	SinglesRanking       *int     `json:"singles_ranking,omitempty"`
	DoublesRanking       *int     `json:"doubles_ranking,omitempty"`
	SinglesRankingOffset *int     `json:"singles_ranking_offset,omitempty"`
	DoublesRankingOffset *int     `json:"doubles_ranking_offset,omitempty"`
	AddToTeams           []string `json:"add_to_teams,omitempty"`
	RemoveFromTeams      []string `json:"remove_from_teams,omitempty"`
}

// HasFieldChanges reports whether the update carries any field set or increment.
func (u PlayerBatchUpdate) HasFieldChanges() bool {
	return u.IsActivePlayer != nil ||
		u.SinglesRanking != nil || u.DoublesRanking != nil ||
		u.SinglesRankingOffset != nil || u.DoublesRankingOffset != nil
}

// HasTeamChanges reports whether the update carries any team membership change.
func (u PlayerBatchUpdate) HasTeamChanges() bool {
	return len(u.AddToTeams) > 0 || len(u.RemoveFromTeams) > 0
}

// BulkUpdateResult reports the outcome of a store-level batch update.
// TargetCount is the number of supplied ids that resolved to target documents;
// malformed or unknown ids never count as work done. ModifiedCount is only
// meaningful when FieldOps is true: the atomic team set operators do not
// reliably report per-document modification counts.
type BulkUpdateResult struct {
	FieldOps      bool
	ModifiedCount int64
	TargetCount   int64
}

// PlayerRepository defines operations for managing players
type PlayerRepository interface {
	Create(ctx context.Context, player *Player) error
	GetByID(ctx context.Context, id string) (*Player, error)
	GetByUserID(ctx context.Context, userID string) (*Player, error)
	Delete(ctx context.Context, id string) error

	// Membership. AddToTeam is a set-union insert: calling it any number of
	// times leaves the team present exactly once.
	AddToTeam(ctx context.Context, playerID, teamID string) error
	FindByTeam(ctx context.Context, teamID string) ([]*Player, error)

	// Batched reads joining the owning user. Unresolvable ids are omitted
	// from the result, never reported as errors.
	GetDetailsByIDs(ctx context.Context, ids []string) ([]*PlayerDetail, error)
	GetTeamRoster(ctx context.Context, teamID string) ([]*PlayerDetail, error)

	BulkUpdate(ctx context.Context, ids []string, update PlayerBatchUpdate) (*BulkUpdateResult, error)
	SetPhotoURL(ctx context.Context, id, url string) error
}
