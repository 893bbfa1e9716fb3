package domain

import (
	"context"
	"reflect"
	"time"
)

// Position identifies one lineup slot group in an interclub match.
type Position string

// Lineup positions in fixture order.
const (
	PositionMensSingles1   Position = "mens_singles_1"
	PositionMensSingles2   Position = "mens_singles_2"
	PositionWomensSingles1 Position = "womens_singles_1"
	PositionWomensSingles2 Position = "womens_singles_2"
	PositionMensDoubles1   Position = "mens_doubles_1"
	PositionMensDoubles2   Position = "mens_doubles_2"
	PositionWomensDoubles1 Position = "womens_doubles_1"
	PositionMixedDoubles1  Position = "mixed_doubles_1"
)

var positions = []Position{
	PositionMensSingles1,
	PositionMensSingles2,
	PositionWomensSingles1,
	PositionWomensSingles2,
	PositionMensDoubles1,
	PositionMensDoubles2,
	PositionWomensDoubles1,
	PositionMixedDoubles1,
}

// Positions returns the canonical ordered list of lineup positions.
func Positions() []Position {
	out := make([]Position, len(positions))
	copy(out, positions)
	return out
}

// Lineup is the canonical lineup encoding: every known position maps to an
// ordered list of player ids. It is the only lineup shape that circulates
// past NormalizeLineup.
type Lineup map[Position][]string

// PopulatedLineup is a lineup hydrated into display-ready player records.
type PopulatedLineup map[Position][]PlayerDetail

// Match status constants. Overdue scheduled matches are promoted by a
// separate periodic job outside this core.
const (
	MatchStatusScheduled = "scheduled"
	MatchStatusCompleted = "completed"
)

// Match references its home team by id and draws its lineup from players.
// Player references held here are not authoritative: a reference is valid only
// while the player's TeamIDs still contains HomeTeamID, and the consistency
// engine cascades broken references out.
type Match struct {
	ID                 string    `bson:"_id,omitempty" json:"id"`
	HomeTeamID         string    `bson:"home_team_id" json:"home_team_id"`
	OpponentName       string    `bson:"opponent_name" json:"opponent_name"`
	Date               time.Time `bson:"date" json:"date"`
	Status             string    `bson:"status" json:"status"`
	Lineup             Lineup    `bson:"lineup" json:"lineup"`
	UnavailablePlayers []string  `bson:"unavailable_players" json:"unavailable_players"`
	CreatedAt          time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updated_at"`
}

// MatchRepository defines operations for managing matches
type MatchRepository interface {
	Create(ctx context.Context, match *Match) error
	GetByID(ctx context.Context, id string) (*Match, error)
	FindByHomeTeam(ctx context.Context, teamID string) ([]*Match, error)
	GetAll(ctx context.Context) ([]*Match, error)
	SetLineup(ctx context.Context, matchID string, lineup Lineup) error
	SetUnavailablePlayers(ctx context.Context, matchID string, playerIDs []string) error
	Delete(ctx context.Context, id string) error
}

// NormalizeLineup converts any accepted lineup encoding to the canonical one.
// Callers historically supplied either an array per position or a legacy
// single-reference-or-null value; both are accepted here and nowhere else.
// The result always covers every known position, unknown keys are dropped.
func NormalizeLineup(raw any) Lineup {
	out := make(Lineup, len(positions))
	for _, p := range positions {
		out[p] = []string{}
	}

	assign := func(key string, value any) {
		p := Position(key)
		if _, known := out[p]; !known {
			return
		}
		out[p] = normalizeRefs(value)
	}

	switch v := raw.(type) {
	case nil:
	case Lineup:
		for p, ids := range v {
			assign(string(p), ids)
		}
	case map[Position][]string:
		for p, ids := range v {
			assign(string(p), ids)
		}
	case map[string][]string:
		for k, ids := range v {
			assign(k, ids)
		}
	case map[string]any:
		for k, val := range v {
			assign(k, val)
		}
	default:
		// bson decodes maps to named map types; fall back to reflection so
		// callers never have to convert first.
		rv := reflect.ValueOf(raw)
		if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
			for _, key := range rv.MapKeys() {
				assign(key.String(), rv.MapIndex(key).Interface())
			}
		}
	}
	return out
}

// normalizeRefs coerces one position's value to an ordered id list.
func normalizeRefs(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case string:
		if v == "" {
			return []string{}
		}
		return []string{v}
	case []string:
		out := make([]string, 0, len(v))
		for _, id := range v {
			if id != "" {
				out = append(out, id)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if id, ok := e.(string); ok && id != "" {
				out = append(out, id)
			}
		}
		return out
	}

	// Named slice types (primitive.A and friends).
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice {
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if id, ok := rv.Index(i).Interface().(string); ok && id != "" {
				out = append(out, id)
			}
		}
		return out
	}
	return []string{}
}
