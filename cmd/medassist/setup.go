package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/medassist/internal/config"
	"github.com/sandevgo/medassist/internal/providers/embed"
	"github.com/sandevgo/medassist/internal/providers/llm"
	"github.com/sandevgo/medassist/internal/providers/search"
	"github.com/sandevgo/medassist/internal/service/command"
	"github.com/sandevgo/medassist/internal/service/memory"
	"github.com/sandevgo/medassist/internal/service/orchestrator"
	"github.com/sandevgo/medassist/internal/service/session"
	"github.com/sandevgo/medassist/internal/service/workflow"
	"github.com/sandevgo/medassist/internal/storage/convfile"
	"github.com/sandevgo/medassist/internal/storage/sqlite"
	"github.com/sandevgo/medassist/internal/transport/cli"
	"github.com/sandevgo/medassist/pkg/log"
	"github.com/sandevgo/medassist/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	searchCfg := config.NewSearchConfig(ctx)
	embedCfg := config.NewEmbedConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	episodesRepo := sqlite.NewEpisodesRepo(db)
	factsRepo := sqlite.NewFactsRepo(db)

	conversations, err := convfile.NewStore(appCfg.GetConversationsPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize conversation store")
	}

	// 3. Providers
	generator, err := llm.NewProvider(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	embedder, err := embed.NewEmbedder(ctx, embedCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedder")
	}

	searchClient := search.NewClient(searchCfg)

	// 4. Memory
	history := memory.NewHistory(appCfg.HistoryWindow, conversations)
	builder := memory.NewBuilder(episodesRepo, factsRepo, embedder, appCfg.EpisodicTopK, float32(appCfg.SimilarityThreshold))
	mem := memory.NewManager(history, episodesRepo, factsRepo, embedder, generator, builder, appCfg.ExtractionInterval)
	services = append(services, srv.NewCleanup(func() error {
		mem.Close()
		return nil
	}))

	// 5. Orchestration
	sessions := session.NewStore()
	conceptSet := workflow.NewConceptSet(searchClient, generator, sessions)
	orch := orchestrator.New(sessions, searchClient, generator, mem, conceptSet, appCfg.ContextTokenBudget)

	// 6. Commands + transport
	router := command.New(command.NewCommands(orch, sessions))

	readline, err := cli.NewReadLine(orch, router, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize CLI")
	}
	services = append(services, readline)

	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
