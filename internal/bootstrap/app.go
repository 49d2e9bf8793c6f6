package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"contractai-backend/internal/account"
	"contractai-backend/internal/analyses"
	"contractai-backend/internal/clauses"
	"contractai-backend/internal/documents"
	"contractai-backend/internal/shared/apperrors"
	"contractai-backend/internal/shared/auth"
	"contractai-backend/internal/shared/config"
	"contractai-backend/internal/shared/server"
	"contractai-backend/internal/shared/server/middleware"
	"contractai-backend/internal/shared/storage/db"
	"contractai-backend/internal/shared/storage/object"
	localstore "contractai-backend/internal/shared/storage/object/local"
	miniostore "contractai-backend/internal/shared/storage/object/minio"
	s3store "contractai-backend/internal/shared/storage/object/s3"
	"contractai-backend/internal/shared/telemetry"
	"contractai-backend/internal/users"
)

// App holds the wired dependency graph.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Sessions *db.Provider
	Store    object.ObjectStore
	Tokens   *auth.Tokens

	UsersRepo     users.Repo
	DocumentsRepo documents.Repo
	AnalysesRepo  analyses.Repo
	ClausesRepo   clauses.Repo

	DocumentsService *documents.Service
	AccountService   *account.Service
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTAccessTokenExpireMinutes)
	if err != nil {
		return nil, apperrors.Configuration(err.Error(), map[string]any{"algorithm": cfg.JWTAlgorithm})
	}

	database, sessions, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       database,
		Sessions: sessions,
		Store:    store,
		Tokens:   tokens,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Tokens:          tokens,
		APIKeys:         apiKeyLookup(app.UsersRepo),
		UserHandler:     users.NewHandler(app.UsersRepo, tokens),
		DocumentHandler: documents.NewHandler(app.DocumentsService),
		AnalysisHandler: analyses.NewHandler(app.AnalysesRepo, app.DocumentsRepo),
		ClauseHandler:   clauses.NewHandler(app.ClausesRepo, app.DocumentsRepo),
		AccountHandler:  account.NewHandler(app.AccountService),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, *db.Provider, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Environment) {
			telemetry.Warn("bootstrap.db", map[string]any{"msg": "DATABASE_URL empty; using in-memory repositories"})
			return nil, nil, nil
		}
		return nil, nil, apperrors.Configuration("DATABASE_URL is required", nil)
	}

	opts := db.OptionsFromEnv(db.DefaultOptions())
	database, err := db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Environment) {
			telemetry.Warn("bootstrap.db", map[string]any{"msg": "database connect failed; using in-memory repositories", "cause": err.Error()})
			return nil, nil, nil
		}
		return nil, nil, err
	}

	if err := db.Bootstrap(ctx, database, cfg.Environment); err != nil {
		return nil, nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return database, db.NewProvider(database, opts), nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.StorageType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.StorageBucket)
	case "minio":
		return miniostore.New(ctx, miniostore.Config{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.StorageBucket,
			UseSSL:    cfg.StorageUseSSL,
		})
	case "azure":
		return nil, apperrors.Storage("azure storage backend is not supported", map[string]any{"storage_type": cfg.StorageType})
	default:
		return localstore.New(cfg.StorageLocalDir), nil
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
		app.ClausesRepo = &clauses.PGRepo{DB: app.DB}
	} else {
		docRepo := documents.NewMemoryRepo()
		analysisRepo := analyses.NewMemoryRepo()
		clauseRepo := clauses.NewMemoryRepo()
		// Mirror the schema FKs: clauses block document deletion, analyses
		// cascade away with the document.
		docRepo.DeleteBlockers = append(docRepo.DeleteBlockers, func(ctx context.Context, documentID string) (bool, error) {
			existing, err := clauseRepo.ListByDocument(ctx, documentID)
			return len(existing) > 0, err
		})
		docRepo.DeleteCascades = append(docRepo.DeleteCascades, analysisRepo.DeleteByDocument)

		app.UsersRepo = users.NewMemoryRepo()
		app.DocumentsRepo = docRepo
		app.AnalysesRepo = analysisRepo
		app.ClausesRepo = clauseRepo
	}

	app.DocumentsService = &documents.Service{Store: app.Store, Repo: app.DocumentsRepo}
	app.AccountService = account.NewService(app.UsersRepo, app.DocumentsRepo, app.AnalysesRepo, app.ClausesRepo, app.Sessions)
}

// apiKeyLookup authenticates X-API-Key callers against the users table.
func apiKeyLookup(repo users.Repo) middleware.APIKeyLookup {
	return func(c *gin.Context, key string) (middleware.Identity, error) {
		user, err := repo.GetByAPIKey(c, key)
		if err != nil {
			return middleware.Identity{}, err
		}
		if !user.IsActive || !user.APIKeyValid(time.Now().UTC()) {
			return middleware.Identity{}, errors.New("api key inactive or expired")
		}
		return middleware.Identity{ID: user.ID, Email: user.Email, Name: user.FullName}, nil
	}
}

func isDevLike(environment string) bool {
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}
