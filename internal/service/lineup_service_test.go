package service

import (
	"context"
	"testing"

	"github.com/courtside/clubroster/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detailFor(id, name string) *domain.PlayerDetail {
	return &domain.PlayerDetail{PlayerID: id, UserID: "u-" + id, Name: name}
}

func TestPopulateLineupTotalCoverage(t *testing.T) {
	players := newFakePlayerRepo()
	svc := NewLineupService(players, newFakeMatchRepo())

	populated, err := svc.PopulateLineup(context.Background(), nil)
	require.NoError(t, err)

	assert.Len(t, populated, len(domain.Positions()), "every known position is present")
	for _, pos := range domain.Positions() {
		records, ok := populated[pos]
		require.True(t, ok, "position %s missing", pos)
		assert.Empty(t, records)
	}
	assert.Equal(t, 0, players.detailCalls, "nothing to look up for an empty lineup")
}

func TestPopulateLineupRoundTripPreservesOrder(t *testing.T) {
	players := newFakePlayerRepo()
	players.details["p1"] = detailFor("p1", "Anna")
	players.details["p2"] = detailFor("p2", "Ben")
	players.details["p3"] = detailFor("p3", "Carla")
	svc := NewLineupService(players, newFakeMatchRepo())

	raw := map[string]any{
		"mens_doubles_1":   []string{"p2", "p1"},
		"womens_singles_1": []string{"p3"},
	}
	populated, err := svc.PopulateLineup(context.Background(), raw)
	require.NoError(t, err)

	// Extracting the raw ids back out reconstructs the original lists.
	extract := func(pos domain.Position) []string {
		ids := []string{}
		for _, d := range populated[pos] {
			ids = append(ids, d.PlayerID)
		}
		return ids
	}
	assert.Equal(t, []string{"p2", "p1"}, extract(domain.PositionMensDoubles1))
	assert.Equal(t, []string{"p3"}, extract(domain.PositionWomensSingles1))
	assert.Equal(t, 1, players.detailCalls, "one batched lookup per call")
}

func TestPopulateLineupDropsStaleReference(t *testing.T) {
	players := newFakePlayerRepo()
	players.details["p1"] = detailFor("p1", "Anna")
	players.details["p2"] = detailFor("p2", "Ben")
	// p9 was deleted; its reference lingers in the stored lineup.
	svc := NewLineupService(players, newFakeMatchRepo())

	raw := map[string]any{
		"mens_doubles_1": []string{"p1", "p9", "p2"},
	}
	populated, err := svc.PopulateLineup(context.Background(), raw)
	require.NoError(t, err)

	records := populated[domain.PositionMensDoubles1]
	require.Len(t, records, 2, "exactly the stale reference is dropped")
	assert.Equal(t, "p1", records[0].PlayerID)
	assert.Equal(t, "p2", records[1].PlayerID)
}

func TestPopulateLineupLegacySingleReference(t *testing.T) {
	players := newFakePlayerRepo()
	players.details["p1"] = detailFor("p1", "Anna")
	svc := NewLineupService(players, newFakeMatchRepo())

	populated, err := svc.PopulateLineup(context.Background(), map[string]any{
		"womens_singles_1": "p1",
		"mens_singles_1":   nil,
	})
	require.NoError(t, err)

	require.Len(t, populated[domain.PositionWomensSingles1], 1)
	assert.Equal(t, "Anna", populated[domain.PositionWomensSingles1][0].Name)
	assert.Empty(t, populated[domain.PositionMensSingles1])
}

func TestPopulateManyLineupsSingleLookup(t *testing.T) {
	players := newFakePlayerRepo()
	players.details["p1"] = detailFor("p1", "Anna")
	players.details["p2"] = detailFor("p2", "Ben")
	svc := NewLineupService(players, newFakeMatchRepo())

	matches := []*domain.Match{
		{ID: "m1", Lineup: domain.Lineup{domain.PositionMensSingles1: {"p1"}}},
		{ID: "m2", Lineup: domain.Lineup{domain.PositionMensSingles1: {"p2"}}},
		{ID: "m3", Lineup: domain.Lineup{domain.PositionMensDoubles1: {"p1", "p2"}}},
	}

	populated, err := svc.PopulateManyLineups(context.Background(), matches)
	require.NoError(t, err)

	assert.Equal(t, 1, players.detailCalls, "N matches still mean one player lookup")
	require.Len(t, populated, 3)
	assert.Equal(t, "Anna", populated["m1"][domain.PositionMensSingles1][0].Name)
	assert.Equal(t, "Ben", populated["m2"][domain.PositionMensSingles1][0].Name)
	require.Len(t, populated["m3"][domain.PositionMensDoubles1], 2)
}

func TestSetMatchLineupNormalizesBeforeWrite(t *testing.T) {
	players := newFakePlayerRepo()
	matches := newFakeMatchRepo()
	svc := NewLineupService(players, matches)
	ctx := context.Background()

	match := &domain.Match{HomeTeamID: "team-1"}
	require.NoError(t, matches.Create(ctx, match))

	err := svc.SetMatchLineup(ctx, match.ID, map[string]any{
		"mens_singles_1": "p1", // legacy single reference
		"junior_slot":    []string{"p9"},
	})
	require.NoError(t, err)

	written := matches.lineups[match.ID]
	require.Len(t, written, len(domain.Positions()), "only the canonical encoding is persisted")
	assert.Equal(t, []string{"p1"}, written[domain.PositionMensSingles1])
}

func TestSetMatchLineupUnknownMatch(t *testing.T) {
	svc := NewLineupService(newFakePlayerRepo(), newFakeMatchRepo())

	err := svc.SetMatchLineup(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPopulateManyLineupsEmptyBatch(t *testing.T) {
	players := newFakePlayerRepo()
	svc := NewLineupService(players, newFakeMatchRepo())

	populated, err := svc.PopulateManyLineups(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, populated)
	assert.Equal(t, 0, players.detailCalls)
}
