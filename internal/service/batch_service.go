package service

import (
	"context"

	"github.com/courtside/clubroster/internal/domain"
)

// BatchService applies heterogeneous updates across many players per call.
type BatchService struct {
	players domain.PlayerRepository
}

func NewBatchService(players domain.PlayerRepository) *BatchService {
	return &BatchService{
		players: players,
	}
}

// BatchUpdatePlayers applies the update to every id and returns the modified
// count. An empty id list is valid and returns 0 without touching the store.
//
// When an offset and its absolute counterpart are both present, the offset
// wins and the absolute value is ignored for that call. Team membership
// changes go through atomic set operators which do not report reliable
// per-document counts, so a team-only call reports the number of ids that
// resolved to target documents rather than under-reporting success.
func (s *BatchService) BatchUpdatePlayers(ctx context.Context, playerIDs []string, updates domain.PlayerBatchUpdate) (int64, error) {
	if len(playerIDs) == 0 {
		return 0, nil
	}

	// Offset beats absolute for the same field.
	if updates.SinglesRankingOffset != nil {
		updates.SinglesRanking = nil
	}
	if updates.DoublesRankingOffset != nil {
		updates.DoublesRanking = nil
	}

	if !updates.HasFieldChanges() && !updates.HasTeamChanges() {
		return 0, nil
	}

	result, err := s.players.BulkUpdate(ctx, playerIDs, updates)
	if err != nil {
		return 0, err
	}

	if result.FieldOps {
		return result.ModifiedCount, nil
	}
	return result.TargetCount, nil
}
