package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/BrezzeT/mebel-market-backend/internal/auth"
	"github.com/BrezzeT/mebel-market-backend/internal/banner"
	"github.com/BrezzeT/mebel-market-backend/internal/config"
	"github.com/BrezzeT/mebel-market-backend/internal/product"
	"github.com/BrezzeT/mebel-market-backend/internal/upload"
	"github.com/BrezzeT/mebel-market-backend/internal/user"
)

// main wires dependencies and starts the HTTP server. All shared handles
// (database, logger, upload directory) are built here and injected; no package
// keeps process-wide state of its own.
func main() {
	cfg := config.Load()
	logger := mustBuildLogger(cfg)
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	db := mustConnectMongo(cfg, logger)

	userRepo := user.NewMongoRepository(db)
	if err := userRepo.EnsureIndexes(context.Background()); err != nil {
		logger.Warn("failed to ensure user indexes", zap.Error(err))
	}

	saver := upload.NewSaver(cfg.UploadDir, logger)
	tokens := auth.NewTokens(cfg.JWTSecret)
	dev := cfg.IsDevelopment()

	productService := product.NewService(product.NewMongoRepository(db), saver)
	productHandler := product.NewHandler(productService, saver, logger, dev)

	bannerService := banner.NewService(banner.NewMongoRepository(db))
	bannerHandler := banner.NewHandler(bannerService, saver, logger, dev)

	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService, tokens, logger, dev)

	app := fiber.New(fiber.Config{
		BodyLimit: upload.MaxFiles * upload.MaxFileSize,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			body := fiber.Map{"message": "Something went wrong"}
			if dev {
				body["error"] = err.Error()
			}
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(body)
		},
	})

	app.Use(cors.New())
	app.Use(fiberlogger.New())
	app.Static("/uploads", cfg.UploadDir)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "API is running"})
	})

	protect := auth.Protect(cfg.JWTSecret)
	adminOnly := auth.AdminOnly()

	api := app.Group("/api")

	products := api.Group("/products")
	productHandler.RegisterPublicRoutes(products)
	productHandler.RegisterAdminRoutes(
		products.Group("", protect, adminOnly),
		saver.Images("images", "products", upload.MaxFiles),
	)

	banners := api.Group("/banners")
	bannerHandler.RegisterPublicRoutes(banners)
	bannerHandler.RegisterAdminRoutes(
		banners.Group("", protect, adminOnly),
		saver.Images("image", "banners", 1),
	)

	userHandler.RegisterUserRoutes(api.Group("/users"), protect)
	userHandler.RegisterAuthRoutes(api.Group("/auth"), protect, adminOnly)

	logger.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func mustBuildLogger(cfg config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func mustConnectMongo(cfg config.Config, logger *zap.Logger) *mongo.Database {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("failed to ping MongoDB", zap.Error(err))
	}

	logger.Info("MongoDB connected", zap.String("database", cfg.MongoDB))
	return client.Database(cfg.MongoDB)
}
