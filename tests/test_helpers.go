package tests

import (
	"context"
	"log"
	"testing"

	"github.com/courtside/clubroster/internal/repository"
	"github.com/courtside/clubroster/internal/service"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupTestDB spins up a fresh MongoDB container and returns the database
// connection along with a cleanup function.
func SetupTestDB(t *testing.T) (*mongo.Database, func()) {
	ctx := context.Background()

	mongodbContainer, err := mongodb.Run(ctx, "mongo:latest")
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	endpoint, err := mongodbContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	return mongoClient.Database("test_db"), func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
		if err := mongodbContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
}

// testApp wires the full roster core against a live database, the same way
// cmd/seed does in production.
type testApp struct {
	users    *repository.MongoUserRepository
	players  *repository.MongoPlayerRepository
	teams    *repository.MongoTeamRepository
	matches  *repository.MongoMatchRepository
	detector *repository.TxDetector

	roster  *service.RosterService
	lineups *service.LineupService
	batches *service.BatchService
}

func newTestApp(db *mongo.Database) *testApp {
	users := repository.NewMongoUserRepository(db)
	players := repository.NewMongoPlayerRepository(db)
	teams := repository.NewMongoTeamRepository(db)
	matches := repository.NewMongoMatchRepository(db)

	detector := repository.NewTxDetector(db.Client(), nil)
	cascades := repository.NewCascadeExecutor(db.Client(), db, detector)

	return &testApp{
		users:    users,
		players:  players,
		teams:    teams,
		matches:  matches,
		detector: detector,
		roster:   service.NewRosterService(users, players, teams, cascades, nil),
		lineups:  service.NewLineupService(players, matches),
		batches:  service.NewBatchService(players),
	}
}
