package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"listingguide/internal/cache"
	"listingguide/internal/config"
	"listingguide/internal/handler"
	"listingguide/internal/repository"
	"listingguide/internal/service"
	"listingguide/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("listing guide starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)
	for _, w := range cfg.Warnings {
		logger.Warn("configuration value ignored", zap.String("detail", w))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.GinMode)
	if err := handler.RegisterValidators(); err != nil {
		return err
	}

	// Database is optional: without it the assistant still works, persistence endpoints answer 503
	var (
		listingStore     service.ListingStore
		descriptionStore service.DescriptionStore
	)
	if cfg.HasDatabase() {
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
			logger.Named("repository"),
		)
		if err != nil {
			return err
		}
		defer repo.Close()

		if cfg.PostgreSQL.MigrateOnStart {
			if err := repo.Migrate(ctx); err != nil {
				return err
			}
		}
		listingStore, descriptionStore = repo, repo
		logger.Info("connected to PostgreSQL")
	} else {
		logger.Warn("PostgreSQL is not configured - listings and descriptions are disabled")
	}

	var analysisCache service.AnalysisCache
	if cfg.Redis.Enabled {
		c, err := cache.NewAnalysisCache(ctx, cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			return err
		}
		defer c.Close()
		analysisCache = c
		logger.Info("analysis cache enabled", zap.Duration("ttl", cfg.Redis.TTL))
	}

	var photoStore service.PhotoStore
	if cfg.Storage.Enabled {
		s, err := storage.NewPhotoStore(storage.Config{
			Endpoint:      cfg.Storage.Endpoint,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			Bucket:        cfg.Storage.Bucket,
			UseSSL:        cfg.Storage.UseSSL,
			PresignExpiry: cfg.Storage.PresignExpiry,
		}, logger.Named("storage"))
		if err != nil {
			return err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return err
		}
		photoStore = s
		logger.Info("photo storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	// Initialize services
	openaiClient := service.NewOpenAIClient(&cfg.OpenAI, logger.Named("openai"))
	if openaiClient.IsEnabled() {
		logger.Info("OpenAI client initialized",
			zap.String("api_base", cfg.OpenAI.APIBase),
			zap.String("vision_model", cfg.OpenAI.VisionModel),
			zap.String("embedding_model", cfg.OpenAI.EmbeddingModel),
		)
	} else {
		logger.Warn("OpenAI is disabled - embeddings and similar listings will not be computed")
	}

	extractor := service.NewFeatureExtractor(service.NewScorer(cfg.Suggest.KeywordMatch), logger.Named("extractor"))
	vision, err := service.NewVisionAnalyzer(ctx, cfg, openaiClient, extractor, logger.Named("vision"))
	if err != nil {
		return err
	}
	catalog, err := service.LoadFieldCatalog(cfg.Suggest.CatalogPath)
	if err != nil {
		return err
	}

	synth := service.NewSynthesizer(logger.Named("synthesis"))
	images := service.NewImageAnalyzer(vision, synth, analysisCache, photoStore, service.ImageAnalyzerOptions{
		Concurrency:       cfg.Vision.Concurrency,
		Timeout:           cfg.Vision.ImageTimeout,
		RequestsPerSecond: cfg.Vision.RequestsPerSecond,
		MaxImages:         cfg.Vision.MaxImages,
		MaxImageBytes:     cfg.Vision.MaxImageBytes,
	}, logger.Named("images"))
	orchestrator := service.NewOrchestrator(
		service.NewIntentParser(extractor, images, logger.Named("intent")),
		catalog,
		service.OrchestratorOptions{
			ConfidenceThreshold: cfg.Suggest.ConfidenceThreshold,
			MaxSuggestions:      cfg.Suggest.MaxSuggestions,
			Locale:              cfg.Suggest.Locale,
		},
		logger.Named("orchestrator"),
	)
	listings := service.NewListingService(listingStore, images, synth, openaiClient, service.DefaultRanker(), logger.Named("listings"))
	descriptions := service.NewDescriptionService(descriptionStore)

	logger.Info("services initialized", zap.String("vision_provider", images.Provider()))

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger.Named("http")))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.Server.AllowedOrigins)
	corsConfig.AllowMethods = splitList(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.Server.AllowedHeaders)
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "healthy",
			"service":         "listing-guide",
			"version":         Version,
			"vision_provider": images.Provider(),
			"database":        listingStore != nil,
			"cache":           analysisCache != nil,
			"storage":         photoStore != nil,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	handler.RegisterRoutes(router.Group("/api/v1"), handler.Handlers{
		Assistant:    handler.NewAssistantHandler(orchestrator),
		Images:       handler.NewImageHandler(images),
		Listings:     handler.NewListingHandler(listings),
		Embeddings:   handler.NewEmbeddingHandler(listings),
		Descriptions: handler.NewDescriptionHandler(descriptions),
	})

	// Serve static files (frontend)
	// This function is implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
