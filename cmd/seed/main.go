package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/courtside/clubroster/internal/config"
	"github.com/courtside/clubroster/internal/domain"
	"github.com/courtside/clubroster/internal/repository"
	"github.com/courtside/clubroster/internal/service"
	"github.com/courtside/clubroster/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

type seedUser struct {
	name   string
	email  string
	gender string
	role   string
	player bool
	teams  []int // indexes into the seeded team list
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Grafana Cloud style OTLP auth: instanceId:apiToken base64 encoded.
	otelHeaders := map[string]string{}
	if cfg.OTEL.InstanceID != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(cfg.OTEL.InstanceID + ":" + cfg.OTEL.Token))
		otelHeaders["Authorization"] = "Basic " + auth
	}

	otelProvider, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.OTEL.ServiceName,
		ServiceVersion: cfg.OTEL.ServiceVersion,
		Environment:    cfg.OTEL.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
		OTLPHeaders:    otelHeaders,
		Enabled:        cfg.OTEL.Enabled,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize OpenTelemetry: %v", err)
	}
	if otelProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			otelProvider.Shutdown(shutdownCtx)
		}()
	}

	mongoOpts := options.Client().ApplyURI(cfg.MongoDB.URI)
	if cfg.OTEL.Enabled {
		mongoOpts.SetMonitor(otelmongo.NewMonitor())
	}
	client, err := mongo.Connect(ctx, mongoOpts)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)

	// Redis backs the transaction capability cache. The seeder works without
	// it, the detector just probes per cascade.
	var cache *repository.RedisCacheRepository
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis unavailable, capability probe will not be cached: %v", err)
	} else {
		cache = repository.NewRedisCacheRepository(redisClient)
	}

	var photos domain.PhotoStore
	if cfg.S3.AccessKey != "" {
		s3Store, err := repository.NewS3PhotoRepository(ctx, cfg.S3)
		if err != nil {
			log.Printf("Warning: photo storage unavailable: %v", err)
		} else {
			photos = s3Store
		}
	}

	userRepo := repository.NewMongoUserRepository(db)
	playerRepo := repository.NewMongoPlayerRepository(db)
	teamRepo := repository.NewMongoTeamRepository(db)
	matchRepo := repository.NewMongoMatchRepository(db)
	detector := repository.NewTxDetector(client, cache)
	cascades := repository.NewCascadeExecutor(client, db, detector)
	roster := service.NewRosterService(userRepo, playerRepo, teamRepo, cascades, photos)

	fmt.Println("🌱 Seeding demo club data...")

	teams := []*domain.Team{
		{Name: "First Team", Level: "division_1"},
		{Name: "Second Team", Level: "division_3"},
	}
	for _, team := range teams {
		if err := teamRepo.Create(ctx, team); err != nil {
			log.Fatalf("Failed to create team %s: %v", team.Name, err)
		}
		fmt.Printf("   🏟️  Team %s (%s)\n", team.Name, team.ID)
	}

	users := []seedUser{
		{name: "Anna Keller", email: "anna@club.test", gender: "female", role: domain.RoleCaptain, player: true, teams: []int{0}},
		{name: "Ben Olsen", email: "ben@club.test", gender: "male", role: domain.RoleMember, player: true, teams: []int{0, 1}},
		{name: "Carla Mota", email: "carla@club.test", gender: "female", role: domain.RoleMember, player: true, teams: []int{1}},
		{name: "Dan Wirth", email: "dan@club.test", gender: "male", role: domain.RoleMember, player: true, teams: []int{0}},
		{name: "Eva Lindt", email: "eva@club.test", gender: "female", role: domain.RoleAdmin},
	}

	playersByEmail := make(map[string]*domain.Player)
	for _, su := range users {
		user := &domain.User{
			Name:   su.name,
			Email:  su.email,
			Gender: su.gender,
			Role:   su.role,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", su.email, err)
		}
		if !su.player {
			fmt.Printf("   👤 %s (%s, no profile)\n", su.name, su.role)
			continue
		}

		if err := roster.SetPlayerStatus(ctx, user.ID, true); err != nil {
			log.Fatalf("Failed to promote %s: %v", su.email, err)
		}
		player, err := playerRepo.GetByUserID(ctx, user.ID)
		if err != nil {
			log.Fatalf("Failed to load player for %s: %v", su.email, err)
		}
		for _, ti := range su.teams {
			if err := roster.AddPlayerToTeam(ctx, player.ID, teams[ti].ID); err != nil {
				log.Fatalf("Failed to add %s to %s: %v", su.email, teams[ti].Name, err)
			}
		}
		playersByEmail[su.email] = player
		fmt.Printf("   🎾 %s → %d team(s)\n", su.name, len(su.teams))
	}

	anna := playersByEmail["anna@club.test"]
	ben := playersByEmail["ben@club.test"]
	dan := playersByEmail["dan@club.test"]

	match := &domain.Match{
		HomeTeamID:   teams[0].ID,
		OpponentName: "Riverside LTC",
		Date:         time.Now().AddDate(0, 0, 14),
		Status:       domain.MatchStatusScheduled,
		Lineup: domain.Lineup{
			domain.PositionMensSingles1:   {ben.ID},
			domain.PositionWomensSingles1: {anna.ID},
			domain.PositionMensDoubles1:   {ben.ID, dan.ID},
		},
	}
	if err := matchRepo.Create(ctx, match); err != nil {
		log.Fatalf("Failed to create match: %v", err)
	}
	fmt.Printf("   📅 Match vs %s (%s)\n", match.OpponentName, match.ID)

	fmt.Println("✅ Seed complete")
}
