package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"

	"github.com/courtside/clubroster/internal/domain"
)

// RosterService owns the club's relationship graph. Player.TeamIDs is the
// single source of truth for membership: teams never store rosters and match
// references are kept consistent by cascading through the CascadeRunner.
type RosterService struct {
	users    domain.UserRepository
	players  domain.PlayerRepository
	teams    domain.TeamRepository
	cascades domain.CascadeRunner
	photos   domain.PhotoStore // optional
}

func NewRosterService(
	users domain.UserRepository,
	players domain.PlayerRepository,
	teams domain.TeamRepository,
	cascades domain.CascadeRunner,
	photos domain.PhotoStore,
) *RosterService {
	return &RosterService{
		users:    users,
		players:  players,
		teams:    teams,
		cascades: cascades,
		photos:   photos,
	}
}

// PlayerStatusOutcome reports one user's result in a bulk status change.
type PlayerStatusOutcome struct {
	UserID string
	Err    error
}

// SetPlayerStatus creates or destroys the user's player profile so it matches
// shouldBePlayer. Calling it with the current state is a no-op. Promotion of
// a guest or staff account fails with ErrRoleIneligible.
func (s *RosterService) SetPlayerStatus(ctx context.Context, userID string, shouldBePlayer bool) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsPlayer == shouldBePlayer {
		return nil
	}

	if shouldBePlayer {
		if !user.CanHoldPlayerProfile() {
			return domain.ErrRoleIneligible
		}
		player := &domain.Player{
			UserID:         userID,
			TeamIDs:        []string{},
			IsActivePlayer: true,
		}
		if err := s.players.Create(ctx, player); err != nil {
			return fmt.Errorf("failed to create player profile: %w", err)
		}
		return s.users.SetPlayerFlag(ctx, userID, true)
	}

	if err := s.deletePlayerForUser(ctx, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return s.users.SetPlayerFlag(ctx, userID, false)
}

// SetPlayerStatusBulk applies SetPlayerStatus per user and never aborts the
// batch: each id's outcome is tracked independently and failures are
// collected alongside the ids that succeeded.
func (s *RosterService) SetPlayerStatusBulk(ctx context.Context, userIDs []string, shouldBePlayer bool) []PlayerStatusOutcome {
	outcomes := make([]PlayerStatusOutcome, 0, len(userIDs))
	for _, userID := range userIDs {
		err := s.SetPlayerStatus(ctx, userID, shouldBePlayer)
		if err != nil {
			log.Printf("bulk status change: user %s failed: %v", userID, err)
		}
		outcomes = append(outcomes, PlayerStatusOutcome{UserID: userID, Err: err})
	}
	return outcomes
}

// AddPlayerToTeam records membership as a set-union insert on the player's
// TeamIDs. The team document is never written.
func (s *RosterService) AddPlayerToTeam(ctx context.Context, playerID, teamID string) error {
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		return err
	}
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return err
	}
	return s.players.AddToTeam(ctx, playerID, teamID)
}

// RemovePlayerFromTeam removes the membership edge and cascades the removal
// into every match of that home team, stripping the player from all lineup
// positions and the unavailable set.
func (s *RosterService) RemovePlayerFromTeam(ctx context.Context, playerID, teamID string) error {
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		return err
	}
	return s.cascades.RemovePlayerFromTeam(ctx, playerID, teamID)
}

// DeletePlayerEntity destroys the user's player profile: the player's
// references are cascaded out of every match (not team scoped), the player
// document is deleted, and the user's flag is lowered.
func (s *RosterService) DeletePlayerEntity(ctx context.Context, userID string) error {
	if err := s.deletePlayerForUser(ctx, userID); err != nil {
		return err
	}
	return s.users.SetPlayerFlag(ctx, userID, false)
}

// DeleteUser removes the user and, when one exists, their player profile with
// the full match cascade.
func (s *RosterService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsPlayer {
		if err := s.deletePlayerForUser(ctx, userID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	return s.users.Delete(ctx, userID)
}

func (s *RosterService) deletePlayerForUser(ctx context.Context, userID string) error {
	player, err := s.players.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.cascades.DeletePlayer(ctx, player.ID); err != nil {
		return err
	}
	if s.photos != nil && player.PhotoURL != "" {
		// Best effort, the profile is already gone.
		if err := s.photos.Delete(ctx, photoKey(player.ID)); err != nil {
			log.Printf("failed to delete photo for player %s: %v", player.ID, err)
		}
	}
	return nil
}

// GetTeamRoster derives the team's roster on read. Rosters are never
// persisted or cached across writes.
func (s *RosterService) GetTeamRoster(ctx context.Context, teamID string) ([]*domain.PlayerDetail, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.players.GetTeamRoster(ctx, teamID)
}

// AttachPlayerPhoto stores the image and records its URL on the player.
func (s *RosterService) AttachPlayerPhoto(ctx context.Context, playerID string, data []byte, contentType string) (string, error) {
	if s.photos == nil {
		return "", fmt.Errorf("photo storage is not configured")
	}
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		return "", err
	}

	url, err := s.photos.Upload(ctx, data, photoKey(playerID), contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload player photo: %w", err)
	}
	if err := s.players.SetPhotoURL(ctx, playerID, url); err != nil {
		return "", err
	}
	return url, nil
}

func photoKey(playerID string) string {
	return path.Join("players", playerID+".jpg")
}
