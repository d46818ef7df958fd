package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sportscast/internal/domain"
	"sportscast/internal/infra"
	"sportscast/internal/jobs"
	"sportscast/internal/media"
	"sportscast/internal/pipeline"
	"sportscast/internal/providers/analyze"
	"sportscast/internal/providers/genai"
	"sportscast/internal/providers/prompt"
	"sportscast/internal/providers/research"
	"sportscast/internal/providers/scriptgen"
	"sportscast/internal/providers/search"
	"sportscast/internal/providers/veo"
	"sportscast/internal/storage"
)

const jobPollInterval = 2 * time.Second

type jobWorker struct {
	ctx        context.Context
	repo       *jobs.Repo
	controller *pipeline.Controller
	logger     infra.Logger
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	repo := jobs.NewRepo(runner)

	store, err := storage.NewMediaStore(cfg.MediaDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure media storage")
	}

	controller, err := buildController(cfg, store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure pipeline")
	}

	worker := &jobWorker{
		ctx:        ctx,
		repo:       repo,
		controller: controller,
		logger:     logger,
	}

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func buildController(cfg *infra.Config, store *storage.MediaStore, logger infra.Logger) (*pipeline.Controller, error) {
	httpClient := &http.Client{Timeout: 60 * time.Second}

	geminiClient, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		HTTPClient: httpClient,
		Logger:     &logger,
	})
	if err != nil {
		return nil, err
	}
	hasGemini := cfg.GeminiAPIKey != ""
	if !hasGemini {
		logger.Warn().Str("model", geminiClient.Model()).Msg("worker: gemini api key missing, using static providers")
	}

	creds := make([]veo.Credential, 0, len(cfg.VeoAPIKeys))
	for _, key := range cfg.VeoAPIKeys {
		creds = append(creds, veo.Credential{APIKey: key})
	}
	if len(creds) == 0 {
		// Keyless pools still rotate; every request fails with auth errors
		// that surface as segment failures.
		creds = append(creds, veo.Credential{})
		logger.Warn().Msg("worker: no veo api keys configured")
	}
	veoPool, err := veo.NewPool(creds, func(c veo.Credential) veo.Generator {
		return veo.NewClient(veo.Options{
			APIKey:     c.APIKey,
			BaseURL:    cfg.VeoBaseURL,
			Model:      cfg.VeoModel,
			HTTPClient: &http.Client{Timeout: 120 * time.Second},
			Logger:     &logger,
		})
	})
	if err != nil {
		return nil, err
	}

	var refiner prompt.Refiner = prompt.NewStaticRefiner()
	var analyzer analyze.Analyzer
	if hasGemini {
		refiner = prompt.NewGeminiRefiner(geminiClient)
		analyzer = analyze.NewGeminiAnalyzer(geminiClient)
	}

	poller := veo.Poller{
		Interval: cfg.PollInterval,
		MaxPolls: cfg.MaxPolls,
		Attempts: cfg.RetryAttempts,
	}
	generation := pipeline.NewGenerationPipeline(veoPool, refiner, poller, cfg.StaggerInterval, cfg.RetryAttempts, logger)

	provider := search.NewYouTubeProvider(search.Options{
		APIKey:  cfg.SearchAPIKey,
		BaseURL: cfg.SearchBaseURL,
	})
	encoder := media.NewFFmpeg(cfg.FFmpegBin, logger)
	retrieval := pipeline.NewRetrievalPipeline(provider, search.NewHTTPDownloader(nil), analyzer, encoder, logger)

	coordinator := pipeline.NewCoordinator(generation, retrieval, logger)
	assembler := pipeline.NewAssembler(encoder, store, logger)

	researcher := research.NewGeminiResearcher(geminiClient)
	generator := scriptgen.NewGeminiGenerator(geminiClient, scriptgen.NewStaticGenerator())

	return pipeline.NewController(researcher, generator, coordinator, assembler, store, logger), nil
}

func (w *jobWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		job, err := w.repo.Claim(w.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			if !errors.Is(err, domain.ErrNotFound) {
				w.logger.Error().Err(err).Msg("worker: failed to claim job")
			}
			select {
			case <-time.After(jobPollInterval):
			case <-w.ctx.Done():
				return w.ctx.Err()
			}
			continue
		}

		w.handleJob(job)
	}
}

func (w *jobWorker) handleJob(job *jobs.Job) {
	w.logger.Info().Str("job_id", job.ID).Str("prompt", job.Prompt).Msg("worker: picked job")

	res := w.controller.Run(w.ctx, job.Prompt, job.DurationSeconds)
	result := resultFromRun(res)

	if res.Succeeded() {
		if err := w.repo.Complete(w.ctx, job.ID, result); err != nil {
			w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: record success failed")
		}
		return
	}

	message := string(res.Phase)
	if res.Err != nil {
		message = res.Err.Error()
	}
	if err := w.repo.Fail(w.ctx, job.ID, message, result); err != nil {
		w.logger.Error().Err(err).Str("job_id", job.ID).Msg("worker: record failure failed")
	}
}

func resultFromRun(res pipeline.Result) jobs.Result {
	out := jobs.Result{
		Status:         string(res.Phase),
		FinalMediaPath: res.FinalPath,
		Script:         res.Script,
	}
	for _, f := range res.Failures {
		out.FailedSegments = append(out.FailedSegments, jobs.FailedSegment{Order: f.Order, Error: f.Err.Error()})
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}
