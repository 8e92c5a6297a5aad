package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/platefeed/api/internal/config"
	"github.com/platefeed/api/internal/database"
	"github.com/platefeed/api/internal/handler"
	"github.com/platefeed/api/internal/jobs"
	"github.com/platefeed/api/internal/middleware"
	"github.com/platefeed/api/internal/repository"
	"github.com/platefeed/api/internal/service"
	"github.com/platefeed/api/pkg/jwt"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	relationRepo := repository.NewRelationRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService: jwtService,
		TokenRepo:  tokenRepo,
	})

	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     userRepo,
		TokenService: tokenService,
	})

	catalogService := service.NewCatalogService(service.CatalogServiceConfig{
		TagRepo:        tagRepo,
		IngredientRepo: ingredientRepo,
	})

	recipeService := service.NewRecipeService(service.RecipeServiceConfig{
		RecipeRepo:     recipeRepo,
		TagRepo:        tagRepo,
		IngredientRepo: ingredientRepo,
		RelationRepo:   relationRepo,
		UserRepo:       userRepo,
	})

	relationService := service.NewRelationService(service.RelationServiceConfig{
		RelationRepo: relationRepo,
		RecipeRepo:   recipeRepo,
		UserRepo:     userRepo,
	})

	userService := service.NewUserService(service.UserServiceConfig{
		UserRepo:     userRepo,
		RelationRepo: relationRepo,
	})

	shoppingListService := service.NewShoppingListService(service.ShoppingListServiceConfig{
		RelationRepo: relationRepo,
		UserRepo:     userRepo,
	})

	adminService := service.NewAdminService(userRepo)

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   100, // 100 requests per minute
		Window: time.Minute,
		Burst:  20, // Allow bursts up to 20
	})
	defer rateLimiter.Stop()

	// Initialize idempotency store
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL:     24 * time.Hour,
		Cleanup: time.Hour,
	})
	defer idempotencyStore.Stop()

	// Start refresh token cleanup job
	tokenCleanup := jobs.NewTokenCleanup(tokenRepo, time.Hour)
	tokenCleanup.Start()
	defer tokenCleanup.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	tagHandler := handler.NewTagHandler(catalogService)
	ingredientHandler := handler.NewIngredientHandler(catalogService)
	recipeHandler := handler.NewRecipeHandler(recipeService, relationService, shoppingListService)
	userHandler := handler.NewUserHandler(userService, relationService)
	adminHandler := handler.NewAdminHandler(adminService)

	// Create router and register routes
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", handler.Health)

	// Auth endpoints (public)
	mux.HandleFunc("POST /v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /v1/auth/refresh", authHandler.Refresh)

	// Create auth middleware
	authMiddleware := middleware.Auth(tokenService)
	optionalAuthMiddleware := middleware.OptionalAuth(tokenService)
	adminMiddleware := middleware.AdminAuth(tokenService)

	// Auth endpoints (authenticated)
	mux.Handle("POST /v1/auth/logout", authMiddleware(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /v1/auth/me", authMiddleware(http.HandlerFunc(authHandler.Me)))
	mux.Handle("POST /v1/auth/password", authMiddleware(http.HandlerFunc(authHandler.ChangePassword)))

	// Catalog endpoints (public, read-only)
	mux.HandleFunc("GET /v1/tags", tagHandler.ListTags)
	mux.HandleFunc("GET /v1/tags/{tagId}", tagHandler.GetTag)
	mux.HandleFunc("GET /v1/ingredients", ingredientHandler.ListIngredients)
	mux.HandleFunc("GET /v1/ingredients/{ingredientId}", ingredientHandler.GetIngredient)

	// Recipe endpoints
	mux.Handle("GET /v1/recipes", optionalAuthMiddleware(http.HandlerFunc(recipeHandler.ListRecipes)))
	mux.Handle("POST /v1/recipes", authMiddleware(http.HandlerFunc(recipeHandler.CreateRecipe)))
	mux.Handle("GET /v1/recipes/download_shopping_cart", authMiddleware(http.HandlerFunc(recipeHandler.DownloadShoppingCart)))
	mux.Handle("GET /v1/recipes/{recipeId}", optionalAuthMiddleware(http.HandlerFunc(recipeHandler.GetRecipe)))
	mux.Handle("PUT /v1/recipes/{recipeId}", authMiddleware(http.HandlerFunc(recipeHandler.ReplaceRecipe)))
	mux.Handle("PATCH /v1/recipes/{recipeId}", authMiddleware(http.HandlerFunc(recipeHandler.UpdateRecipe)))
	mux.Handle("DELETE /v1/recipes/{recipeId}", authMiddleware(http.HandlerFunc(recipeHandler.DeleteRecipe)))

	// Recipe membership toggles
	mux.Handle("POST /v1/recipes/{recipeId}/favorite", authMiddleware(http.HandlerFunc(recipeHandler.AddFavorite)))
	mux.Handle("DELETE /v1/recipes/{recipeId}/favorite", authMiddleware(http.HandlerFunc(recipeHandler.RemoveFavorite)))
	mux.Handle("POST /v1/recipes/{recipeId}/shopping_cart", authMiddleware(http.HandlerFunc(recipeHandler.AddToCart)))
	mux.Handle("DELETE /v1/recipes/{recipeId}/shopping_cart", authMiddleware(http.HandlerFunc(recipeHandler.RemoveFromCart)))

	// User directory and subscriptions
	mux.Handle("GET /v1/users", optionalAuthMiddleware(http.HandlerFunc(userHandler.ListUsers)))
	mux.Handle("PATCH /v1/users/me", authMiddleware(http.HandlerFunc(userHandler.UpdateProfile)))
	mux.Handle("GET /v1/users/subscriptions", authMiddleware(http.HandlerFunc(userHandler.Subscriptions)))
	mux.Handle("GET /v1/users/{userId}", optionalAuthMiddleware(http.HandlerFunc(userHandler.GetUser)))
	mux.Handle("POST /v1/users/{userId}/subscribe", authMiddleware(http.HandlerFunc(userHandler.Subscribe)))
	mux.Handle("DELETE /v1/users/{userId}/subscribe", authMiddleware(http.HandlerFunc(userHandler.Unsubscribe)))

	// Admin endpoints
	mux.Handle("GET /v1/admin/users", adminMiddleware(http.HandlerFunc(adminHandler.ListUsers)))
	mux.Handle("PATCH /v1/admin/users/{userId}/role", adminMiddleware(http.HandlerFunc(adminHandler.UpdateRole)))
	mux.Handle("DELETE /v1/admin/users/{userId}", adminMiddleware(http.HandlerFunc(adminHandler.DeleteUser)))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter),
		middleware.Idempotency(idempotencyStore),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
