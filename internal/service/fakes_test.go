package service

import (
	"context"
	"fmt"

	"github.com/courtside/clubroster/internal/domain"
)

// In-memory fakes over the domain interfaces, mirroring the store's set
// semantics where the engine depends on them.

type fakeUserRepo struct {
	users     map[string]*domain.User
	flagCalls []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeUserRepo) SetPlayerFlag(_ context.Context, id string, isPlayer bool) error {
	user, ok := r.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.IsPlayer = isPlayer
	r.flagCalls = append(r.flagCalls, id)
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetAll(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

type fakePlayerRepo struct {
	players map[string]*domain.Player
	details map[string]*domain.PlayerDetail

	detailCalls     int
	bulkCalls       int
	lastBulkIDs     []string
	lastBulkUpdate  domain.PlayerBatchUpdate
	bulkResult      *domain.BulkUpdateResult
	failCreateError error
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{
		players: make(map[string]*domain.Player),
		details: make(map[string]*domain.PlayerDetail),
	}
}

func (r *fakePlayerRepo) Create(_ context.Context, player *domain.Player) error {
	if r.failCreateError != nil {
		return r.failCreateError
	}
	if player.ID == "" {
		player.ID = fmt.Sprintf("player-%d", len(r.players)+1)
	}
	r.players[player.ID] = player
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id string) (*domain.Player, error) {
	player, ok := r.players[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return player, nil
}

func (r *fakePlayerRepo) GetByUserID(_ context.Context, userID string) (*domain.Player, error) {
	for _, p := range r.players {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakePlayerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.players[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.players, id)
	return nil
}

func (r *fakePlayerRepo) AddToTeam(_ context.Context, playerID, teamID string) error {
	player, ok := r.players[playerID]
	if !ok {
		return domain.ErrNotFound
	}
	// set-union, like $addToSet
	if !player.HasTeam(teamID) {
		player.TeamIDs = append(player.TeamIDs, teamID)
	}
	return nil
}

func (r *fakePlayerRepo) FindByTeam(_ context.Context, teamID string) ([]*domain.Player, error) {
	var out []*domain.Player
	for _, p := range r.players {
		if p.HasTeam(teamID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) GetDetailsByIDs(_ context.Context, ids []string) ([]*domain.PlayerDetail, error) {
	r.detailCalls++
	out := []*domain.PlayerDetail{}
	for _, id := range ids {
		if d, ok := r.details[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) GetTeamRoster(_ context.Context, teamID string) ([]*domain.PlayerDetail, error) {
	out := []*domain.PlayerDetail{}
	for _, p := range r.players {
		if p.HasTeam(teamID) {
			if d, ok := r.details[p.ID]; ok {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) BulkUpdate(_ context.Context, ids []string, update domain.PlayerBatchUpdate) (*domain.BulkUpdateResult, error) {
	r.bulkCalls++
	r.lastBulkIDs = ids
	r.lastBulkUpdate = update
	if r.bulkResult != nil {
		return r.bulkResult, nil
	}
	return &domain.BulkUpdateResult{TargetCount: int64(len(ids))}, nil
}

func (r *fakePlayerRepo) SetPhotoURL(_ context.Context, id, url string) error {
	player, ok := r.players[id]
	if !ok {
		return domain.ErrNotFound
	}
	player.PhotoURL = url
	return nil
}

type fakeTeamRepo struct {
	teams map[string]*domain.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[string]*domain.Team)}
}

func (r *fakeTeamRepo) Create(_ context.Context, team *domain.Team) error {
	if team.ID == "" {
		team.ID = fmt.Sprintf("team-%d", len(r.teams)+1)
	}
	r.teams[team.ID] = team
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return team, nil
}

func (r *fakeTeamRepo) GetAll(_ context.Context) ([]*domain.Team, error) {
	out := make([]*domain.Team, 0, len(r.teams))
	for _, t := range r.teams {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.teams[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.teams, id)
	return nil
}

type fakeMatchRepo struct {
	matches map[string]*domain.Match
	lineups map[string]domain.Lineup // captured SetLineup writes
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{
		matches: make(map[string]*domain.Match),
		lineups: make(map[string]domain.Lineup),
	}
}

func (r *fakeMatchRepo) Create(_ context.Context, match *domain.Match) error {
	if match.ID == "" {
		match.ID = fmt.Sprintf("match-%d", len(r.matches)+1)
	}
	r.matches[match.ID] = match
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id string) (*domain.Match, error) {
	match, ok := r.matches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return match, nil
}

func (r *fakeMatchRepo) FindByHomeTeam(_ context.Context, teamID string) ([]*domain.Match, error) {
	var out []*domain.Match
	for _, m := range r.matches {
		if m.HomeTeamID == teamID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) GetAll(_ context.Context) ([]*domain.Match, error) {
	out := make([]*domain.Match, 0, len(r.matches))
	for _, m := range r.matches {
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMatchRepo) SetLineup(_ context.Context, matchID string, lineup domain.Lineup) error {
	match, ok := r.matches[matchID]
	if !ok {
		return domain.ErrNotFound
	}
	match.Lineup = lineup
	r.lineups[matchID] = lineup
	return nil
}

func (r *fakeMatchRepo) SetUnavailablePlayers(_ context.Context, matchID string, playerIDs []string) error {
	match, ok := r.matches[matchID]
	if !ok {
		return domain.ErrNotFound
	}
	match.UnavailablePlayers = playerIDs
	return nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.matches[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.matches, id)
	return nil
}

type cascadeCall struct {
	kind     string // "remove" or "delete"
	playerID string
	teamID   string
}

type fakeCascadeRunner struct {
	players *fakePlayerRepo
	calls   []cascadeCall
	err     error
}

func (c *fakeCascadeRunner) RemovePlayerFromTeam(_ context.Context, playerID, teamID string) error {
	c.calls = append(c.calls, cascadeCall{kind: "remove", playerID: playerID, teamID: teamID})
	if c.err != nil {
		return c.err
	}
	if player, ok := c.players.players[playerID]; ok {
		kept := []string{}
		for _, id := range player.TeamIDs {
			if id != teamID {
				kept = append(kept, id)
			}
		}
		player.TeamIDs = kept
	}
	return nil
}

func (c *fakeCascadeRunner) DeletePlayer(_ context.Context, playerID string) error {
	c.calls = append(c.calls, cascadeCall{kind: "delete", playerID: playerID})
	if c.err != nil {
		return c.err
	}
	delete(c.players.players, playerID)
	return nil
}
