package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/courtside/clubroster/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoMatchRepository implements domain.MatchRepository
type MongoMatchRepository struct {
	collection *mongo.Collection
}

func NewMongoMatchRepository(db *mongo.Database) *MongoMatchRepository {
	coll := db.Collection(matchesCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "home_team_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}}},
	})

	return &MongoMatchRepository{
		collection: coll,
	}
}

func (r *MongoMatchRepository) Create(ctx context.Context, match *domain.Match) error {
	match.CreatedAt = time.Now()
	match.UpdatedAt = time.Now()
	objID := primitive.NewObjectID()
	match.ID = objID.Hex()

	if match.Status == "" {
		match.Status = domain.MatchStatusScheduled
	}
	match.Lineup = domain.NormalizeLineup(match.Lineup)
	if match.UnavailablePlayers == nil {
		match.UnavailablePlayers = []string{}
	}

	doc := bson.M{
		"_id":                 objID,
		"home_team_id":        match.HomeTeamID,
		"opponent_name":       match.OpponentName,
		"date":                match.Date,
		"status":              match.Status,
		"lineup":              lineupToBson(match.Lineup),
		"unavailable_players": match.UnavailablePlayers,
		"created_at":          match.CreatedAt,
		"updated_at":          match.UpdatedAt,
	}

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *MongoMatchRepository) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return mapBsonToMatch(raw), nil
}

func (r *MongoMatchRepository) FindByHomeTeam(ctx context.Context, teamID string) ([]*domain.Match, error) {
	return r.find(ctx, bson.M{"home_team_id": teamID})
}

func (r *MongoMatchRepository) GetAll(ctx context.Context) ([]*domain.Match, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoMatchRepository) find(ctx context.Context, filter bson.M) ([]*domain.Match, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer cursor.Close(ctx)

	var matches []*domain.Match
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		matches = append(matches, mapBsonToMatch(raw))
	}
	return matches, nil
}

// SetLineup is the one sanctioned lineup write outside the cascade engine.
func (r *MongoMatchRepository) SetLineup(ctx context.Context, matchID string, lineup domain.Lineup) error {
	objID, err := primitive.ObjectIDFromHex(matchID)
	if err != nil {
		return domain.ErrNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"lineup":     lineupToBson(domain.NormalizeLineup(lineup)),
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to set lineup: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoMatchRepository) SetUnavailablePlayers(ctx context.Context, matchID string, playerIDs []string) error {
	objID, err := primitive.ObjectIDFromHex(matchID)
	if err != nil {
		return domain.ErrNotFound
	}
	if playerIDs == nil {
		playerIDs = []string{}
	}

	update := bson.M{
		"$set": bson.M{
			"unavailable_players": playerIDs,
			"updated_at":          time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to set unavailable players: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoMatchRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func lineupToBson(lineup domain.Lineup) bson.M {
	doc := bson.M{}
	for pos, ids := range lineup {
		doc[string(pos)] = ids
	}
	return doc
}

func mapBsonToMatch(raw bson.M) *domain.Match {
	match := &domain.Match{UnavailablePlayers: []string{}}
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		match.ID = oid.Hex()
	}
	if teamID, ok := raw["home_team_id"].(string); ok {
		match.HomeTeamID = teamID
	}
	if opponent, ok := raw["opponent_name"].(string); ok {
		match.OpponentName = opponent
	}
	if date, ok := raw["date"].(primitive.DateTime); ok {
		match.Date = date.Time()
	}
	if status, ok := raw["status"].(string); ok {
		match.Status = status
	}

	// Older documents stored a single reference or null per position;
	// NormalizeLineup absorbs every historical shape.
	match.Lineup = domain.NormalizeLineup(raw["lineup"])

	if unavailable, ok := raw["unavailable_players"].(primitive.A); ok {
		for _, p := range unavailable {
			if id, ok := p.(string); ok {
				match.UnavailablePlayers = append(match.UnavailablePlayers, id)
			}
		}
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		match.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		match.UpdatedAt = updated.Time()
	}
	return match
}
