package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/repochat/internal/ai"
	"github.com/xxxsen/repochat/internal/chunker"
	"github.com/xxxsen/repochat/internal/config"
	"github.com/xxxsen/repochat/internal/db"
	"github.com/xxxsen/repochat/internal/filestore"
	"github.com/xxxsen/repochat/internal/github"
	"github.com/xxxsen/repochat/internal/handler"
	"github.com/xxxsen/repochat/internal/job"
	"github.com/xxxsen/repochat/internal/middleware"
	"github.com/xxxsen/repochat/internal/repo"
	"github.com/xxxsen/repochat/internal/schedule"
	"github.com/xxxsen/repochat/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "repochat",
		Short: "repochat backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run repochat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database.ResolveDSN())
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func buildGenerator(cfg config.AIConfig) (ai.IGenerator, error) {
	provider, err := ai.NewProvider(cfg.Provider, cfg.Data)
	if err != nil {
		return nil, err
	}
	primary := ai.NewGenerator(provider, cfg.Model)
	if len(cfg.Fallbacks) == 0 {
		return primary, nil
	}
	entries := []ai.GeneratorEntry{{Name: cfg.Provider, Generator: primary}}
	for _, fb := range cfg.Fallbacks {
		fbProvider, err := ai.NewProvider(fb.Provider, fb.Data)
		if err != nil {
			return nil, fmt.Errorf("init fallback provider %s: %w", fb.Provider, err)
		}
		model := fb.Model
		if model == "" {
			model = cfg.Model
		}
		entries = append(entries, ai.GeneratorEntry{Name: fb.Provider, Generator: ai.NewGenerator(fbProvider, model)})
	}
	return ai.NewGroupGenerator(entries), nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("embed_model", cfg.AI.EmbedModel),
		zap.String("file_store", cfg.FileStore.Type),
	)

	fragmentRepo := repo.NewFragmentRepo(conn)

	generator, err := buildGenerator(cfg.AI)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	embedProvider, err := ai.NewProvider(cfg.AI.EmbedProvider, cfg.AI.EmbedData)
	if err != nil {
		return fmt.Errorf("init embed provider: %w", err)
	}
	embedder := ai.NewEmbedder(embedProvider, cfg.AI.EmbedModel, cfg.AI.EmbedDim)

	fetcher := github.New(github.Config{
		Token:        cfg.Github.Token,
		APIBase:      cfg.Github.APIBase,
		MaxFileBytes: cfg.Ingest.MaxFileBytes,
	})
	splitter := chunker.New(chunker.Config{})

	snapshots, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	ingestService := service.NewIngestService(fetcher, splitter, embedder, fragmentRepo, snapshots, cfg.Ingest.InsertBatchSize)
	queryService := service.NewQueryService(embedder, generator, fragmentRepo, cfg.AI.Model, service.QueryOptions{
		TopK:          cfg.Retrieval.TopK,
		Threshold:     cfg.Retrieval.Threshold,
		FallbackLimit: cfg.Retrieval.FallbackLimit,
		Timeout:       time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	})
	repoService := service.NewRepoService(fragmentRepo)

	deps := handler.RouterDeps{
		Ingest:        handler.NewIngestHandler(ingestService),
		Query:         handler.NewQueryHandler(queryService, repoService),
		Repos:         handler.NewRepoHandler(repoService),
		System:        handler.NewSystemHandler(cfg.AI.Model),
		RateLimitWait: time.Duration(cfg.RateLimitSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewRetentionJob(fragmentRepo, cfg.Retention.MaxAgeDays), cfg.Retention.Cron); err != nil {
		return fmt.Errorf("schedule retention job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
