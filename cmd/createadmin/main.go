package main

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/BrezzeT/mebel-market-backend/internal/config"
	"github.com/BrezzeT/mebel-market-backend/internal/user"
)

const (
	adminName     = "Admin"
	adminEmail    = "admin@admin.com"
	adminPassword = "admin123"
	adminPhone    = "+1234567890"
)

// Seeds the default administrator account. Safe to run repeatedly: an
// existing account with the same email is left untouched.
func main() {
	cfg := config.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	repo := user.NewMongoRepository(client.Database(cfg.MongoDB))
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure user indexes", zap.Error(err))
	}

	service := user.NewService(repo)
	created, err := service.Register(ctx, user.User{
		Name:     adminName,
		Email:    adminEmail,
		Password: adminPassword,
		Phone:    adminPhone,
		IsAdmin:  true,
	})
	if errors.Is(err, user.ErrEmailExists) {
		logger.Info("admin account already exists", zap.String("email", adminEmail))
		return
	}
	if err != nil {
		logger.Fatal("failed to create admin account", zap.Error(err))
	}

	logger.Info("admin account created",
		zap.String("id", created.ID.Hex()),
		zap.String("email", created.Email))
}
