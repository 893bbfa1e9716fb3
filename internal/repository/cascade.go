package repository

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/courtside/clubroster/internal/domain"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Collection names
const (
	usersCollection   = "users"
	playersCollection = "players"
	teamsCollection   = "teams"
	matchesCollection = "matches"
)

// CascadeOp is one declarative step of a cascade: a target collection, a
// filter, and either an update or a single-document delete. Cascades are
// expressed as op lists so the same plan runs under both execution strategies.
// Primary marks the membership mutation itself; its failure always propagates,
// only cleanup failures may be tolerated on the sequential path.
type CascadeOp struct {
	Collection string
	Filter     bson.M
	Update     bson.M
	Many       bool
	DeleteOne  bool
	Primary    bool
}

// CascadeExecutor implements domain.CascadeRunner against MongoDB. It asks
// the TxDetector per call which strategy to use: commit the whole op list in
// one multi-document transaction, or issue the ops sequentially and tolerate
// a stale reference if a cleanup op fails after the membership write has
// committed. A failed membership write is never tolerated.
type CascadeExecutor struct {
	client   *mongo.Client
	db       *mongo.Database
	detector *TxDetector

	applyFn func(ctx context.Context, op CascadeOp) error
}

func NewCascadeExecutor(client *mongo.Client, db *mongo.Database, detector *TxDetector) *CascadeExecutor {
	e := &CascadeExecutor{
		client:   client,
		db:       db,
		detector: detector,
	}
	e.applyFn = e.apply
	return e
}

// RemovePlayerFromTeam pulls teamID from the player's membership set, then
// strips the player from every match whose home team is teamID.
func (e *CascadeExecutor) RemovePlayerFromTeam(ctx context.Context, playerID, teamID string) error {
	playerOID, err := primitive.ObjectIDFromHex(playerID)
	if err != nil {
		return domain.ErrNotFound
	}

	ops := []CascadeOp{
		{
			Collection: playersCollection,
			Filter:     bson.M{"_id": playerOID},
			Update: bson.M{
				"$pull": bson.M{"team_ids": teamID},
				"$set":  bson.M{"updated_at": time.Now()},
			},
			Primary: true,
		},
		{
			Collection: matchesCollection,
			Filter:     bson.M{"home_team_id": teamID},
			Update:     pullPlayerRefs(playerID),
			Many:       true,
		},
	}
	return e.run(ctx, "cascade.remove_player_from_team", ops)
}

// DeletePlayer strips the player's references from every match, team scoped
// or not, then deletes the player document. No team-side write exists because
// rosters are never persisted.
func (e *CascadeExecutor) DeletePlayer(ctx context.Context, playerID string) error {
	playerOID, err := primitive.ObjectIDFromHex(playerID)
	if err != nil {
		return domain.ErrNotFound
	}

	ops := []CascadeOp{
		{
			Collection: matchesCollection,
			Filter:     bson.M{},
			Update:     pullPlayerRefs(playerID),
			Many:       true,
		},
		{
			Collection: playersCollection,
			Filter:     bson.M{"_id": playerOID},
			DeleteOne:  true,
			Primary:    true,
		},
	}
	return e.run(ctx, "cascade.delete_player", ops)
}

// pullPlayerRefs builds the single update that removes a player id from every
// lineup position and from the unavailable set.
func pullPlayerRefs(playerID string) bson.M {
	pull := bson.M{"unavailable_players": playerID}
	for _, pos := range domain.Positions() {
		pull["lineup."+string(pos)] = playerID
	}
	return bson.M{
		"$pull": pull,
		"$set":  bson.M{"updated_at": time.Now()},
	}
}

func (e *CascadeExecutor) run(ctx context.Context, name string, ops []CascadeOp) error {
	opID := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()

	tracer := otel.Tracer("cascade")
	ctx, span := tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("cascade.op_id", opID),
			attribute.Int("cascade.steps", len(ops)),
		),
	)
	defer span.End()

	if e.detector.SupportsTransactions(ctx) {
		span.SetAttributes(attribute.String("cascade.strategy", "transactional"))
		return e.runTransactional(ctx, ops)
	}
	span.SetAttributes(attribute.String("cascade.strategy", "sequential"))
	return e.runSequential(ctx, span, opID, ops)
}

// runTransactional commits all ops together or not at all. Any failure aborts
// the session; the caller may retry, nothing is retried here.
func (e *CascadeExecutor) runTransactional(ctx context.Context, ops []CascadeOp) error {
	session, err := e.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, op := range ops {
			if err := e.applyFn(sc, op); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: %v", domain.ErrTransactionAborted, err)
	}
	return nil
}

// runSequential issues the ops one by one with no wrapping transaction. A
// failure of the primary membership write propagates whatever its position,
// as does any failure before the first op has committed; only a match cleanup
// failure after earlier ops committed is logged and swallowed. The stale match
// reference it leaves behind is tolerated by the lineup populator's drop rule
// and can be repaired with the reconcile command.
func (e *CascadeExecutor) runSequential(ctx context.Context, span trace.Span, opID string, ops []CascadeOp) error {
	for i, op := range ops {
		err := e.applyFn(ctx, op)
		if err == nil {
			continue
		}
		if op.Primary || i == 0 {
			return err
		}
		log.Printf("cascade %s: step %d/%d on %s failed after prior writes committed, stale match references may remain: %v",
			opID, i+1, len(ops), op.Collection, err)
		span.AddEvent("cascade.partial_drift", trace.WithAttributes(
			attribute.String("cascade.op_id", opID),
			attribute.Int("cascade.failed_step", i+1),
			attribute.String("cascade.collection", op.Collection),
		))
	}
	return nil
}

func (e *CascadeExecutor) apply(ctx context.Context, op CascadeOp) error {
	coll := e.db.Collection(op.Collection)

	if op.DeleteOne {
		result, err := coll.DeleteOne(ctx, op.Filter)
		if err != nil {
			return fmt.Errorf("cascade delete on %s: %w", op.Collection, err)
		}
		if result.DeletedCount == 0 {
			return domain.ErrNotFound
		}
		return nil
	}

	if op.Many {
		if _, err := coll.UpdateMany(ctx, op.Filter, op.Update); err != nil {
			return fmt.Errorf("cascade update on %s: %w", op.Collection, err)
		}
		return nil
	}

	result, err := coll.UpdateOne(ctx, op.Filter, op.Update)
	if err != nil {
		return fmt.Errorf("cascade update on %s: %w", op.Collection, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
