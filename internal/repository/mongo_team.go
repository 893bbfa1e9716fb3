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

// MongoTeamRepository implements domain.TeamRepository. Team documents carry
// no roster field; membership lives on players only.
type MongoTeamRepository struct {
	collection *mongo.Collection
}

func NewMongoTeamRepository(db *mongo.Database) *MongoTeamRepository {
	return &MongoTeamRepository{
		collection: db.Collection(teamsCollection),
	}
}

func (r *MongoTeamRepository) Create(ctx context.Context, team *domain.Team) error {
	team.CreatedAt = time.Now()
	team.UpdatedAt = time.Now()
	objID := primitive.NewObjectID()
	team.ID = objID.Hex()

	doc := bson.M{
		"_id":        objID,
		"name":       team.Name,
		"level":      team.Level,
		"created_at": team.CreatedAt,
		"updated_at": team.UpdatedAt,
	}

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *MongoTeamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return mapBsonToTeam(raw), nil
}

func (r *MongoTeamRepository) GetAll(ctx context.Context) ([]*domain.Team, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer cursor.Close(ctx)

	var teams []*domain.Team
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		teams = append(teams, mapBsonToTeam(raw))
	}
	return teams, nil
}

func (r *MongoTeamRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapBsonToTeam(raw bson.M) *domain.Team {
	team := &domain.Team{}
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		team.ID = oid.Hex()
	}
	if name, ok := raw["name"].(string); ok {
		team.Name = name
	}
	if level, ok := raw["level"].(string); ok {
		team.Level = level
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		team.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		team.UpdatedAt = updated.Time()
	}
	return team
}
