package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/courtside/clubroster/internal/config"
	"github.com/courtside/clubroster/internal/domain"
	"github.com/courtside/clubroster/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// reconcile scans every match for player references whose team membership
// link is broken (the player was deleted, or no longer belongs to the
// match's home team) and prunes them. Such references are the accepted
// leftovers of an interrupted non-transactional cascade; this tool is the
// operator-run repair, there is no automatic compensation.
func main() {
	dryRun := flag.Bool("dry-run", false, "Show what would be pruned without making changes")
	workers := flag.Int("workers", 4, "Concurrent match workers")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)
	playerRepo := repository.NewMongoPlayerRepository(db)
	matchRepo := repository.NewMongoMatchRepository(db)

	fmt.Println("🔍 Loading players...")
	teams, err := loadMembership(ctx, playerRepo, matchRepo)
	if err != nil {
		log.Fatalf("Failed to load players: %v", err)
	}

	matches, err := matchRepo.GetAll(ctx)
	if err != nil {
		log.Fatalf("Failed to load matches: %v", err)
	}
	fmt.Printf("📋 Checking %d matches\n\n", len(matches))

	var pruned, touched atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)
	for _, match := range matches {
		g.Go(func() error {
			lineup, unavailable, stale := pruneMatch(match, teams)
			if stale == 0 {
				return nil
			}
			touched.Add(1)
			pruned.Add(int64(stale))

			if *dryRun {
				fmt.Printf("   🏃 DRY RUN - match %s: would prune %d stale reference(s)\n", match.ID, stale)
				return nil
			}
			if err := matchRepo.SetLineup(gCtx, match.ID, lineup); err != nil {
				return fmt.Errorf("match %s: %w", match.ID, err)
			}
			if err := matchRepo.SetUnavailablePlayers(gCtx, match.ID, unavailable); err != nil {
				return fmt.Errorf("match %s: %w", match.ID, err)
			}
			fmt.Printf("   ✂️  match %s: pruned %d stale reference(s)\n", match.ID, stale)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Reconcile failed: %v", err)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✅ Summary: %d matches touched, %d references pruned\n", touched.Load(), pruned.Load())
	if *dryRun {
		fmt.Println("\n⚠️  This was a dry run. No changes were made.")
	}
}

// loadMembership builds playerID → set of team ids for every existing player.
func loadMembership(ctx context.Context, players *repository.MongoPlayerRepository, matches *repository.MongoMatchRepository) (map[string]map[string]bool, error) {
	all, err := matches.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	teamSeen := make(map[string]bool)
	for _, m := range all {
		teamSeen[m.HomeTeamID] = true
	}

	membership := make(map[string]map[string]bool)
	for teamID := range teamSeen {
		roster, err := players.FindByTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		for _, p := range roster {
			if membership[p.ID] == nil {
				membership[p.ID] = make(map[string]bool)
			}
			membership[p.ID][teamID] = true
		}
	}
	return membership, nil
}

// pruneMatch returns the match's lineup and unavailable set with every broken
// reference removed, plus the number removed.
func pruneMatch(match *domain.Match, membership map[string]map[string]bool) (domain.Lineup, []string, int) {
	stale := 0
	valid := func(playerID string) bool {
		teams, exists := membership[playerID]
		return exists && teams[match.HomeTeamID]
	}

	lineup := domain.Lineup{}
	for _, pos := range domain.Positions() {
		kept := []string{}
		for _, id := range match.Lineup[pos] {
			if valid(id) {
				kept = append(kept, id)
			} else {
				stale++
			}
		}
		lineup[pos] = kept
	}

	unavailable := []string{}
	for _, id := range match.UnavailablePlayers {
		if valid(id) {
			unavailable = append(unavailable, id)
		} else {
			stale++
		}
	}
	return lineup, unavailable, stale
}
