package service

import (
	"context"
	"fmt"

	"github.com/courtside/clubroster/internal/domain"
)

// LineupService owns lineup reads and writes. Hydration issues exactly one
// batched player lookup whatever the input size; writes pass through
// NormalizeLineup so only the canonical encoding ever reaches the store.
type LineupService struct {
	players domain.PlayerRepository
	matches domain.MatchRepository
}

func NewLineupService(players domain.PlayerRepository, matches domain.MatchRepository) *LineupService {
	return &LineupService{
		players: players,
		matches: matches,
	}
}

// SetMatchLineup replaces the match's lineup. This is the only sanctioned
// lineup write besides the consistency cascades; the input is normalized
// before it is persisted.
func (s *LineupService) SetMatchLineup(ctx context.Context, matchID string, raw any) error {
	return s.matches.SetLineup(ctx, matchID, domain.NormalizeLineup(raw))
}

// PopulateLineup hydrates one raw lineup. The result covers every known
// position, empty positions included. References that no longer resolve
// (deleted players, ids left behind by an interrupted cascade) are dropped
// silently; population is total and drift tolerant.
func (s *LineupService) PopulateLineup(ctx context.Context, raw any) (domain.PopulatedLineup, error) {
	lineup := domain.NormalizeLineup(raw)

	details, err := s.lookupPlayers(ctx, collectIDs(lineup))
	if err != nil {
		return nil, err
	}
	return hydrate(lineup, details), nil
}

// PopulateManyLineups hydrates a batch of matches with a single player lookup
// spanning all of them, keyed by match id.
func (s *LineupService) PopulateManyLineups(ctx context.Context, matches []*domain.Match) (map[string]domain.PopulatedLineup, error) {
	lineups := make(map[string]domain.Lineup, len(matches))
	var ids []string
	seen := make(map[string]bool)

	for _, match := range matches {
		lineup := domain.NormalizeLineup(match.Lineup)
		lineups[match.ID] = lineup
		for _, id := range collectIDs(lineup) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	details, err := s.lookupPlayers(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[string]domain.PopulatedLineup, len(matches))
	for matchID, lineup := range lineups {
		out[matchID] = hydrate(lineup, details)
	}
	return out, nil
}

func (s *LineupService) lookupPlayers(ctx context.Context, ids []string) (map[string]*domain.PlayerDetail, error) {
	index := make(map[string]*domain.PlayerDetail, len(ids))
	if len(ids) == 0 {
		return index, nil
	}

	details, err := s.players.GetDetailsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lineup players: %w", err)
	}
	for _, d := range details {
		index[d.PlayerID] = d
	}
	return index, nil
}

// collectIDs flattens and deduplicates every referenced player id, preserving
// first-seen order.
func collectIDs(lineup domain.Lineup) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, pos := range domain.Positions() {
		for _, id := range lineup[pos] {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// hydrate re-walks the per-position arrays in original order, emitting the
// resolved records and dropping stale references.
func hydrate(lineup domain.Lineup, details map[string]*domain.PlayerDetail) domain.PopulatedLineup {
	out := make(domain.PopulatedLineup, len(lineup))
	for _, pos := range domain.Positions() {
		records := []domain.PlayerDetail{}
		for _, id := range lineup[pos] {
			if d, ok := details[id]; ok {
				records = append(records, *d)
			}
		}
		out[pos] = records
	}
	return out
}
