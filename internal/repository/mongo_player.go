package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/courtside/clubroster/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPlayerRepository implements domain.PlayerRepository
type MongoPlayerRepository struct {
	collection *mongo.Collection
}

func NewMongoPlayerRepository(db *mongo.Database) *MongoPlayerRepository {
	coll := db.Collection(playersCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// One player per user; team membership queries are the hot path.
	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "team_ids", Value: 1}}},
	})

	return &MongoPlayerRepository{
		collection: coll,
	}
}

func (r *MongoPlayerRepository) Create(ctx context.Context, player *domain.Player) error {
	userOID, err := primitive.ObjectIDFromHex(player.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	player.CreatedAt = time.Now()
	player.UpdatedAt = time.Now()
	objID := primitive.NewObjectID()
	player.ID = objID.Hex()

	if player.TeamIDs == nil {
		player.TeamIDs = []string{}
	}

	doc := bson.M{
		"_id":              objID,
		"user_id":          userOID,
		"team_ids":         player.TeamIDs,
		"singles_ranking":  clampRanking(player.SinglesRanking),
		"doubles_ranking":  clampRanking(player.DoublesRanking),
		"is_active_player": player.IsActivePlayer,
		"created_at":       player.CreatedAt,
		"updated_at":       player.UpdatedAt,
	}
	if player.PhotoURL != "" {
		doc["photo_url"] = player.PhotoURL
	}

	_, err = r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *MongoPlayerRepository) GetByID(ctx context.Context, id string) (*domain.Player, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return mapBsonToPlayer(raw), nil
}

func (r *MongoPlayerRepository) GetByUserID(ctx context.Context, userID string) (*domain.Player, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"user_id": userOID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get player by user: %w", err)
	}
	return mapBsonToPlayer(raw), nil
}

func (r *MongoPlayerRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddToTeam inserts teamID into the player's membership set. $addToSet keeps
// the insert idempotent no matter how often it is called.
func (r *MongoPlayerRepository) AddToTeam(ctx context.Context, playerID, teamID string) error {
	objID, err := primitive.ObjectIDFromHex(playerID)
	if err != nil {
		return domain.ErrNotFound
	}

	update := bson.M{
		"$addToSet": bson.M{"team_ids": teamID},
		"$set":      bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to add player to team: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoPlayerRepository) FindByTeam(ctx context.Context, teamID string) ([]*domain.Player, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"team_ids": teamID})
	if err != nil {
		return nil, fmt.Errorf("failed to list players by team: %w", err)
	}
	defer cursor.Close(ctx)

	var players []*domain.Player
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		players = append(players, mapBsonToPlayer(raw))
	}
	return players, nil
}

// GetDetailsByIDs fetches display records for a set of player ids in one
// aggregation joining the owning users. Ids that do not resolve (malformed or
// deleted) are simply absent from the result.
func (r *MongoPlayerRepository) GetDetailsByIDs(ctx context.Context, ids []string) ([]*domain.PlayerDetail, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue // stale or garbage reference, tolerated
		}
		objIDs = append(objIDs, oid)
	}
	if len(objIDs) == 0 {
		return []*domain.PlayerDetail{}, nil
	}

	pipeline := detailPipeline(bson.M{"_id": bson.M{"$in": objIDs}})
	return r.aggregateDetails(ctx, pipeline)
}

// GetTeamRoster derives a team's roster on read: players whose team_ids
// contains the team, joined with the owning user. Nothing is persisted.
func (r *MongoPlayerRepository) GetTeamRoster(ctx context.Context, teamID string) ([]*domain.PlayerDetail, error) {
	pipeline := detailPipeline(bson.M{"team_ids": teamID})
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}})
	return r.aggregateDetails(ctx, pipeline)
}

func detailPipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "owner",
		}}},
		{{Key: "$unwind", Value: "$owner"}},
		{{Key: "$project", Value: bson.M{
			"_id":             1,
			"user_id":         1,
			"name":            "$owner.name",
			"gender":          "$owner.gender",
			"singles_ranking": 1,
			"doubles_ranking": 1,
		}}},
	}
}

func (r *MongoPlayerRepository) aggregateDetails(ctx context.Context, pipeline mongo.Pipeline) ([]*domain.PlayerDetail, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate player details: %w", err)
	}
	defer cursor.Close(ctx)

	details := []*domain.PlayerDetail{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		details = append(details, mapBsonToPlayerDetail(raw))
	}
	return details, nil
}

// BulkUpdate applies one heterogeneous update to many players. Field sets and
// increments run as a single UpdateMany (a pipeline update when increments are
// present, so rankings are clamped server side); team membership changes run
// as atomic $addToSet / $pullAll write models and never report a reliable
// per-document count.
func (r *MongoPlayerRepository) BulkUpdate(ctx context.Context, ids []string, update domain.PlayerBatchUpdate) (*domain.BulkUpdateResult, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, oid)
	}

	result := &domain.BulkUpdateResult{TargetCount: int64(len(objIDs))}
	if len(objIDs) == 0 {
		return result, nil
	}
	filter := bson.M{"_id": bson.M{"$in": objIDs}}
	now := time.Now()

	if update.HasFieldChanges() {
		set := bson.M{"updated_at": now}
		if update.IsActivePlayer != nil {
			set["is_active_player"] = *update.IsActivePlayer
		}
		if update.SinglesRanking != nil {
			set["singles_ranking"] = clampRanking(*update.SinglesRanking)
		}
		if update.DoublesRanking != nil {
			set["doubles_ranking"] = clampRanking(*update.DoublesRanking)
		}

		var updateDoc interface{} = bson.M{"$set": set}
		if update.SinglesRankingOffset != nil || update.DoublesRankingOffset != nil {
			// Increments need a pipeline update so the result can be clamped
			// to the ranking bounds in the same write.
			if update.SinglesRankingOffset != nil {
				set["singles_ranking"] = clampedIncrement("$singles_ranking", *update.SinglesRankingOffset)
			}
			if update.DoublesRankingOffset != nil {
				set["doubles_ranking"] = clampedIncrement("$doubles_ranking", *update.DoublesRankingOffset)
			}
			updateDoc = bson.A{bson.M{"$set": set}}
		}

		res, err := r.collection.UpdateMany(ctx, filter, updateDoc)
		if err != nil {
			return nil, fmt.Errorf("failed to bulk update players: %w", err)
		}
		result.FieldOps = true
		result.ModifiedCount = res.ModifiedCount
	}

	if update.HasTeamChanges() {
		var models []mongo.WriteModel
		if len(update.AddToTeams) > 0 {
			models = append(models, mongo.NewUpdateManyModel().
				SetFilter(filter).
				SetUpdate(bson.M{
					"$addToSet": bson.M{"team_ids": bson.M{"$each": update.AddToTeams}},
					"$set":      bson.M{"updated_at": now},
				}))
		}
		if len(update.RemoveFromTeams) > 0 {
			models = append(models, mongo.NewUpdateManyModel().
				SetFilter(filter).
				SetUpdate(bson.M{
					"$pullAll": bson.M{"team_ids": update.RemoveFromTeams},
					"$set":     bson.M{"updated_at": now},
				}))
		}
		if _, err := r.collection.BulkWrite(ctx, models); err != nil {
			return nil, fmt.Errorf("failed to bulk update team membership: %w", err)
		}
	}

	return result, nil
}

func (r *MongoPlayerRepository) SetPhotoURL(ctx context.Context, id, url string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"photo_url":  url,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to set photo url: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func clampRanking(v int) int {
	if v < domain.MinRanking {
		return domain.MinRanking
	}
	if v > domain.MaxRanking {
		return domain.MaxRanking
	}
	return v
}

// clampedIncrement builds the aggregation expression
// min(MaxRanking, max(MinRanking, field + offset)).
func clampedIncrement(field string, offset int) bson.M {
	return bson.M{"$min": bson.A{
		domain.MaxRanking,
		bson.M{"$max": bson.A{
			domain.MinRanking,
			bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{field, 0}}, offset}},
		}},
	}}
}

func mapBsonToPlayer(raw bson.M) *domain.Player {
	player := &domain.Player{TeamIDs: []string{}}
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		player.ID = oid.Hex()
	}
	if uid, ok := raw["user_id"].(primitive.ObjectID); ok {
		player.UserID = uid.Hex()
	}
	if teams, ok := raw["team_ids"].(primitive.A); ok {
		for _, t := range teams {
			if id, ok := t.(string); ok {
				player.TeamIDs = append(player.TeamIDs, id)
			}
		}
	}
	player.SinglesRanking = bsonInt(raw["singles_ranking"])
	player.DoublesRanking = bsonInt(raw["doubles_ranking"])
	if active, ok := raw["is_active_player"].(bool); ok {
		player.IsActivePlayer = active
	}
	if url, ok := raw["photo_url"].(string); ok {
		player.PhotoURL = url
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		player.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		player.UpdatedAt = updated.Time()
	}
	return player
}

func mapBsonToPlayerDetail(raw bson.M) *domain.PlayerDetail {
	detail := &domain.PlayerDetail{}
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		detail.PlayerID = oid.Hex()
	}
	if uid, ok := raw["user_id"].(primitive.ObjectID); ok {
		detail.UserID = uid.Hex()
	}
	if name, ok := raw["name"].(string); ok {
		detail.Name = name
	}
	if gender, ok := raw["gender"].(string); ok {
		detail.Gender = gender
	}
	detail.SinglesRanking = bsonInt(raw["singles_ranking"])
	detail.DoublesRanking = bsonInt(raw["doubles_ranking"])
	return detail
}

func bsonInt(v interface{}) int {
	switch n := v.(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
