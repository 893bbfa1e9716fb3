package domain

import "context"

// CascadeRunner executes the two-write cascades that keep match references
// consistent with Player.TeamIDs. Implementations commit both writes in one
// multi-document transaction when the store supports it; otherwise the writes
// are issued sequentially, a failed membership write always propagates, and a
// match cleanup failure after the membership write committed is logged, never
// surfaced to the caller.
type CascadeRunner interface {
	// RemovePlayerFromTeam removes teamID from the player's membership set,
	// then strips the player's id from every match whose home team is teamID
	// (all lineup positions and the unavailable set).
	RemovePlayerFromTeam(ctx context.Context, playerID, teamID string) error

	// DeletePlayer strips the player's references from every match, team
	// scoped or not, then deletes the player document.
	DeletePlayer(ctx context.Context, playerID string) error
}

// PhotoStore persists player photos on object storage.
type PhotoStore interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
	Delete(ctx context.Context, filename string) error
}
