package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"ingest-backend/internal/convert"
	"ingest-backend/internal/ingest"
	"ingest-backend/internal/shared/auth"
	"ingest-backend/internal/shared/config"
	"ingest-backend/internal/shared/server"
	"ingest-backend/internal/shared/server/middleware"
	"ingest-backend/internal/shared/storage/blob"
	localstore "ingest-backend/internal/shared/storage/blob/local"
	miniostore "ingest-backend/internal/shared/storage/blob/minio"
	s3store "ingest-backend/internal/shared/storage/blob/s3"
	"ingest-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	Store         blob.Store
	Converter     ingest.Converter
	Resolver      auth.SessionResolver
	UploadService *ingest.Service
	UploadHandler *ingest.Handler
}

// Build wires the store, converter and session resolver selected by cfg and
// mounts them on a router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.BlobStore) == "" {
		cfg.BlobStore = config.BlobStoreLocal
	}

	store, localDir, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	converter := buildConverter(cfg)
	resolver := auth.NewJWTResolver(cfg.SessionSecret)

	svc := ingest.NewService(converter, store)
	handler := ingest.NewHandler(svc, cfg.MaxRequestBytes)

	app := &App{
		Config:        cfg,
		Store:         store,
		Converter:     converter,
		Resolver:      resolver,
		UploadService: svc,
		UploadHandler: handler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		Resolver:      resolver,
		UploadHandler: handler,
		RateLimiter:   middleware.NewRateLimiter(nil),
		LocalBlobDir:  localDir,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":        cfg.Env,
		"blob_store": cfg.BlobStore,
		"converter":  cfg.Converter,
	})
	return app, nil
}

func buildStore(ctx context.Context, cfg config.Config) (blob.Store, string, error) {
	switch cfg.BlobStore {
	case config.BlobStoreS3:
		store, err := s3store.New(ctx, s3store.Options{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			KMSKeyID:  cfg.SSEKMSKeyID,
			PublicACL: cfg.S3PublicACL,
			BaseURL:   cfg.PublicBaseURL,
		})
		if err != nil {
			return nil, "", fmt.Errorf("s3 store: %w", err)
		}
		return store, "", nil
	case config.BlobStoreMinio:
		store, err := miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			BaseURL:   cfg.PublicBaseURL,
		})
		if err != nil {
			return nil, "", fmt.Errorf("minio store: %w", err)
		}
		return store, "", nil
	default:
		dir := cfg.LocalStoreDir
		if strings.TrimSpace(dir) == "" {
			dir = "./data/blobs"
		}
		return localstore.New(dir, localBaseURL(cfg)), dir, nil
	}
}

func localBaseURL(cfg config.Config) string {
	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" {
		base = "http://localhost" + server.Addr(cfg.Port)
	}
	return base + server.BlobsPath
}

func buildConverter(cfg config.Config) ingest.Converter {
	if cfg.Converter == config.ConverterLocal {
		return convert.NewLocal()
	}
	return convert.NewRemote(cfg.ConverterURL, cfg.ConverterTimeout)
}
