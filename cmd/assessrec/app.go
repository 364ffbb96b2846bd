package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/assessrec/internal/config"
	"github.com/kailas-cloud/assessrec/internal/db"
	dbRedis "github.com/kailas-cloud/assessrec/internal/db/redis"
	"github.com/kailas-cloud/assessrec/internal/domain"
	logpkg "github.com/kailas-cloud/assessrec/internal/logger"
	"github.com/kailas-cloud/assessrec/internal/metrics"
	"github.com/kailas-cloud/assessrec/internal/repository/catalog/csvfile"
	pgcatalog "github.com/kailas-cloud/assessrec/internal/repository/catalog/postgres"
	"github.com/kailas-cloud/assessrec/internal/repository/embcache"
	geminiTransport "github.com/kailas-cloud/assessrec/internal/transport/gemini"
	openaiTransport "github.com/kailas-cloud/assessrec/internal/transport/openai"
	cataloguc "github.com/kailas-cloud/assessrec/internal/usecase/catalog"
	completionuc "github.com/kailas-cloud/assessrec/internal/usecase/completion"
	embeddinguc "github.com/kailas-cloud/assessrec/internal/usecase/embedding"
	extractuc "github.com/kailas-cloud/assessrec/internal/usecase/extract"
	healthuc "github.com/kailas-cloud/assessrec/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/assessrec/internal/usecase/recommend"
	rerankuc "github.com/kailas-cloud/assessrec/internal/usecase/rerank"
	retrieveuc "github.com/kailas-cloud/assessrec/internal/usecase/retrieve"
	traceuc "github.com/kailas-cloud/assessrec/internal/usecase/trace"
)

// application is the composition root shared by all subcommands.
type application struct {
	env      string
	cfg      config.Config
	logger   *zap.Logger
	pipeline *recommenduc.Service
	builder  *cataloguc.Builder
	health   *healthuc.Service
	closers  []func()
}

// newApplication loads config, builds every component and the first corpus snapshot.
// On error everything opened so far is closed.
func newApplication(ctx context.Context, flags *globalFlags) (_ *application, err error) {
	cfg, err := config.Load(flags.env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	logger, err := logpkg.NewLogger(flags.env, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a := &application{env: flags.env, cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterLLMMetrics()
	metrics.RegisterPipelineMetrics()

	store, err := a.openCache(ctx)
	if err != nil {
		return nil, err
	}

	baseEmbedder, err := a.buildBaseEmbedder(ctx)
	if err != nil {
		return nil, err
	}
	docEmbedder := a.buildDocEmbedder(baseEmbedder, store)
	queryEmbedder, err := a.buildQueryEmbedder(docEmbedder)
	if err != nil {
		return nil, err
	}

	completer, err := a.buildCompleter(ctx)
	if err != nil {
		return nil, err
	}

	loader, err := a.buildLoader(ctx)
	if err != nil {
		return nil, err
	}

	recorder, err := a.buildRecorder()
	if err != nil {
		return nil, err
	}

	model := cfg.Embedding.Model
	a.builder = cataloguc.NewBuilder(loader, docEmbedder, model, logger)
	a.pipeline = recommenduc.New(
		extractuc.New(completer, logger),
		retrieveuc.New(queryEmbedder),
		rerankuc.New(completer, logger),
		recorder,
		model,
		recommenduc.Options{
			Budget:          cfg.Pipeline.Budget,
			MaxBudget:       cfg.Pipeline.MaxBudget,
			OverFetchFactor: cfg.Pipeline.OverFetchFactor,
		},
		logger,
	)

	// Pass nil interface (not typed nil pointer) when the cache is disabled.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	a.health = healthuc.New(a.pipeline, cachePinger, newEmbeddingHealthChecker(baseEmbedder))

	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// reload builds a fresh snapshot and swaps it in. The old snapshot stays active on error.
func (a *application) reload(ctx context.Context) error {
	snap, err := a.builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("build corpus: %w", err)
	}
	if _, err := a.pipeline.Swap(snap); err != nil {
		return fmt.Errorf("swap corpus: %w", err)
	}
	a.logger.Info("Corpus loaded",
		zap.Int("records", snap.Len()),
		zap.Int("dims", snap.Dims()),
		zap.String("model", snap.Model()),
	)
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	_ = a.logger.Sync()
}

func (a *application) openCache(ctx context.Context) (db.Store, error) {
	cc := a.cfg.Cache
	if len(cc.Addrs) == 0 {
		return nil, nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cc.Addrs, Password: cc.Password})
	if err != nil {
		return nil, fmt.Errorf("create cache store: %w", err)
	}
	a.closers = append(a.closers, store.Close)

	if err := store.WaitForReady(ctx, time.Duration(cc.ReadinessTimeoutSec)*time.Second); err != nil {
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	a.logger.Info("Connected to embedding cache", zap.Strings("addrs", cc.Addrs))
	return store, nil
}

func (a *application) buildBaseEmbedder(ctx context.Context) (domain.Embedder, error) {
	ec := a.cfg.Embedding
	switch ec.Provider {
	case config.ProviderGemini:
		client, err := geminiTransport.NewClient(ctx, ec.APIKey)
		if err != nil {
			return nil, fmt.Errorf("embedding provider: %w", err)
		}
		return geminiTransport.NewEmbedder(client, geminiTransport.EmbedderConfig{
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			TaskType:   ec.TaskType,
			Logger:     a.logger,
		}), nil
	default:
		return openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			Provider:   ec.Provider,
			Logger:     a.logger,
		}), nil
	}
}

// buildDocEmbedder assembles: provider -> persistent cache -> instrumented.
func (a *application) buildDocEmbedder(base domain.Embedder, store db.Store) domain.Embedder {
	ec := a.cfg.Embedding
	embedder := base
	if store != nil {
		ttl := time.Duration(a.cfg.Cache.TTLHours) * time.Hour
		ns := embcache.Namespace{Model: ec.Model, Dimensions: ec.Dimensions, TaskType: ec.TaskType}
		embedder = embcache.New(base, store, ns, ttl, metrics.EmbeddingCacheTotal, a.logger)
	}
	return embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, embeddinguc.Options{
		ChunkSize: ec.ChunkSize,
		Timeout:   time.Duration(ec.TimeoutSec) * time.Second,
	}, a.logger)
}

// buildQueryEmbedder adds the query instruction and the in-process LRU on top of the
// document chain. The instruction sits inside the LRU so cache keys stay raw queries.
func (a *application) buildQueryEmbedder(doc domain.Embedder) (domain.Embedder, error) {
	embedder := doc
	if instr := a.cfg.Embedding.QueryInstruction; instr != "" {
		embedder = domain.NewInstructionEmbedder(embedder, instr)
	}
	if size := a.cfg.Cache.QueryLRUSize; size > 0 {
		cached, err := embeddinguc.NewQueryCache(embedder, size)
		if err != nil {
			return nil, fmt.Errorf("query cache: %w", err)
		}
		embedder = cached
	}
	return embedder, nil
}

func (a *application) buildCompleter(ctx context.Context) (domain.Completer, error) {
	lc := a.cfg.LLM

	var base domain.Completer
	switch lc.Provider {
	case config.ProviderOpenAI:
		base = openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
			APIKey:      lc.APIKey,
			BaseURL:     lc.BaseURL,
			Model:       lc.Model,
			Temperature: lc.Temperature,
			MaxTokens:   lc.MaxTokens,
		})
	default:
		client, err := geminiTransport.NewClient(ctx, lc.APIKey)
		if err != nil {
			return nil, fmt.Errorf("llm provider: %w", err)
		}
		base = geminiTransport.NewCompleter(client, geminiTransport.CompleterConfig{
			Model:       lc.Model,
			Temperature: lc.Temperature,
			MaxTokens:   lc.MaxTokens,
		})
	}

	return completionuc.NewInstrumentedCompleter(base, lc.Provider, lc.Model, completionuc.Options{
		Timeout:        time.Duration(lc.TimeoutSec) * time.Second,
		RequestsPerSec: lc.RequestsPerSec,
		Burst:          lc.Burst,
	}, a.logger), nil
}

func (a *application) buildLoader(ctx context.Context) (cataloguc.Loader, error) {
	cc := a.cfg.Corpus
	switch cc.Source {
	case config.CorpusSourcePostgres:
		pool, err := pgcatalog.NewPool(ctx, cc.DSN)
		if err != nil {
			return nil, fmt.Errorf("corpus database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		return pgcatalog.New(pool, cc.Table), nil
	default:
		return csvfile.New(cc.Path), nil
	}
}

func (a *application) buildRecorder() (*traceuc.Recorder, error) {
	tc := a.cfg.Trace
	if tc.Disable {
		return traceuc.NewRecorder(a.logger), nil
	}

	var sinks []traceuc.Sink
	if tc.File != "" {
		fs, err := traceuc.NewFileSink(tc.File)
		if err != nil {
			return nil, fmt.Errorf("trace sink: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := fs.Close(); err != nil {
				a.logger.Warn("Failed to close trace file", zap.Error(err))
			}
		})
		sinks = append(sinks, fs)
	}
	if tc.Logger {
		sinks = append(sinks, traceuc.NewLoggerSink(a.logger))
	}
	return traceuc.NewRecorder(a.logger, sinks...), nil
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
// Providers without a health endpoint are reported healthy.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	hc, ok := h.embedder.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("embedding health check: %w", err)
	}
	return nil
}
