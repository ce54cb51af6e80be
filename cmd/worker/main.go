package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/whispernotes/insights-ms-go/internal/capability/ffmpeg"
	"github.com/whispernotes/insights-ms-go/internal/capability/llm"
	"github.com/whispernotes/insights-ms-go/internal/capability/whisper"
	"github.com/whispernotes/insights-ms-go/internal/config"
	workerHandler "github.com/whispernotes/insights-ms-go/internal/handler/worker"
	"github.com/whispernotes/insights-ms-go/internal/logger"
	"github.com/whispernotes/insights-ms-go/internal/port"
	"github.com/whispernotes/insights-ms-go/internal/session"
	"github.com/whispernotes/insights-ms-go/internal/storage"
	"github.com/whispernotes/insights-ms-go/internal/task"
	"github.com/whispernotes/insights-ms-go/internal/usecase/pipeline"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	strg := initStorage(cfg)
	store := session.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
	dispatcher := task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword)

	extractSvc := pipeline.NewExtractAudioProcessor(store,
		ffmpeg.NewExtractor(strg, cfg.FfmpegBin, cfg.FfprobeBin), dispatcher)
	transcribeSvc := pipeline.NewTranscribeProcessor(store,
		whisper.NewClient(cfg.WhisperURL, strg), dispatcher)
	insightsSvc := pipeline.NewExtractInsightsProcessor(store,
		llm.NewClient(cfg.LLMAPIBase, cfg.LLMAPIKey, cfg.LLMModel))

	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeExtractAudio, func(ctx context.Context, t *asynq.Task) error {
		msg, err := task.ParseStageMessage(t)
		if err != nil {
			// a payload that never parses will never parse; drop it
			return asynq.SkipRetry
		}
		return workerHandler.ExtractAudioHandler(ctx, msg, extractSvc)
	})
	mux.HandleFunc(task.TypeTranscribe, func(ctx context.Context, t *asynq.Task) error {
		msg, err := task.ParseStageMessage(t)
		if err != nil {
			return asynq.SkipRetry
		}
		return workerHandler.TranscribeHandler(ctx, msg, transcribeSvc)
	})
	mux.HandleFunc(task.TypeInsights, func(ctx context.Context, t *asynq.Task) error {
		msg, err := task.ParseStageMessage(t)
		if err != nil {
			return asynq.SkipRetry
		}
		return workerHandler.ExtractInsightsHandler(ctx, msg, insightsSvc)
	})

	runWorker(ctx, mux, cfg)
}

func initStorage(cfg *config.Settings) port.Storage {
	strg, err := storage.NewStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.Bucket,
		cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Errorf(context.Background(), "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}

	if err := strg.InitBucket(); err != nil {
		logger.Errorf(context.Background(), "❌  Failed to initialize bucket: %v", err)
		os.Exit(1)
	}

	return strg
}

// queuesFor resolves WORKER_STAGE into the queue set this process consumes.
// An empty stage runs every queue in one process, which suits small deploys;
// dedicated deploys run one process per stage so a stuck transcription never
// starves the cheap stages.
func queuesFor(stage string) (map[string]int, error) {
	if stage == "" {
		return map[string]int{
			task.QueueExtract:    1,
			task.QueueTranscribe: 1,
			task.QueueInsights:   1,
		}, nil
	}
	q, err := task.QueueForStage(stage)
	if err != nil {
		return nil, err
	}
	return map[string]int{q: 1}, nil
}

func runWorker(ctx context.Context, mux *asynq.ServeMux, cfg *config.Settings) {
	queues, err := queuesFor(cfg.WorkerStage)
	if err != nil {
		logger.Errorf(ctx, "❌  Invalid WORKER_STAGE: %v", err)
		os.Exit(1)
	}

	// Concurrency 1 keeps the prefetch at a single message so a long
	// transcription never holds a queued session hostage behind it.
	srv := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}, asynq.Config{
		Concurrency: 1,
		Queues:      queues,
	})

	// Run server in background
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Errorf(context.Background(), "❌  Worker failed: %v", err)
			os.Exit(1)
		}
	}()
	if cfg.WorkerStage != "" {
		logger.Infof(ctx, "🚀 Worker started for stage %q", cfg.WorkerStage)
	} else {
		logger.Info(ctx, "🚀 Worker started for all stages")
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// Give Asynq up to 30 sec to finish tasks
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	srv.Shutdown()       // stop accepting new tasks, finish in-flight
	<-shutdownCtx.Done() // either timeout or done

	logger.Info(ctx, "✅  Worker gracefully stopped")
}
