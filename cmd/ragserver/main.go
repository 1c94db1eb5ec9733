// Command ragserver runs the small-business advisory engine: it wires the
// router, per-domain hybrid retrievers, generator, evaluator, and
// persistence recorder into one orchestration.Pipeline, then serves it over
// HTTP (POST /chat, POST /chat/stream, GET /chat/ws, GET /health) until it
// receives SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/lookatitude/beluga-ai/cache"
	_ "github.com/lookatitude/beluga-ai/cache/providers/inmemory"
	_ "github.com/lookatitude/beluga-ai/cache/providers/redis"

	"github.com/lookatitude/beluga-ai/config"
	"github.com/lookatitude/beluga-ai/core"
	"github.com/lookatitude/beluga-ai/evaluator"
	"github.com/lookatitude/beluga-ai/generator"
	"github.com/lookatitude/beluga-ai/lexical"
	"github.com/lookatitude/beluga-ai/llm"
	"github.com/lookatitude/beluga-ai/memory"
	meminmemory "github.com/lookatitude/beluga-ai/memory/stores/inmemory"
	_ "github.com/lookatitude/beluga-ai/llm/providers/anthropic"
	_ "github.com/lookatitude/beluga-ai/llm/providers/azure"
	_ "github.com/lookatitude/beluga-ai/llm/providers/bedrock"
	_ "github.com/lookatitude/beluga-ai/llm/providers/bifrost"
	_ "github.com/lookatitude/beluga-ai/llm/providers/cerebras"
	_ "github.com/lookatitude/beluga-ai/llm/providers/cohere"
	_ "github.com/lookatitude/beluga-ai/llm/providers/deepseek"
	_ "github.com/lookatitude/beluga-ai/llm/providers/fireworks"
	_ "github.com/lookatitude/beluga-ai/llm/providers/google"
	_ "github.com/lookatitude/beluga-ai/llm/providers/groq"
	_ "github.com/lookatitude/beluga-ai/llm/providers/huggingface"
	_ "github.com/lookatitude/beluga-ai/llm/providers/litellm"
	_ "github.com/lookatitude/beluga-ai/llm/providers/llama"
	_ "github.com/lookatitude/beluga-ai/llm/providers/mistral"
	_ "github.com/lookatitude/beluga-ai/llm/providers/ollama"
	_ "github.com/lookatitude/beluga-ai/llm/providers/openai"
	_ "github.com/lookatitude/beluga-ai/llm/providers/openrouter"
	_ "github.com/lookatitude/beluga-ai/llm/providers/perplexity"
	_ "github.com/lookatitude/beluga-ai/llm/providers/qwen"
	_ "github.com/lookatitude/beluga-ai/llm/providers/sambanova"
	_ "github.com/lookatitude/beluga-ai/llm/providers/together"
	_ "github.com/lookatitude/beluga-ai/llm/providers/xai"
	"github.com/lookatitude/beluga-ai/o11y"
	"github.com/lookatitude/beluga-ai/orchestration"
	"github.com/lookatitude/beluga-ai/persistence"
	"github.com/lookatitude/beluga-ai/prompt"
	"github.com/lookatitude/beluga-ai/rag/embedding"
	_ "github.com/lookatitude/beluga-ai/rag/embedding/providers/inmemory"
	_ "github.com/lookatitude/beluga-ai/rag/embedding/providers/openai"
	"github.com/lookatitude/beluga-ai/rag/vectorstore"
	_ "github.com/lookatitude/beluga-ai/rag/vectorstore/providers/inmemory"
	_ "github.com/lookatitude/beluga-ai/rag/vectorstore/providers/pgvector"
	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/resilience"
	"github.com/lookatitude/beluga-ai/retriever"
	"github.com/lookatitude/beluga-ai/router"
	"github.com/lookatitude/beluga-ai/schema"
	"github.com/lookatitude/beluga-ai/server"
)

// advisoryPersona is the always-in-context core-memory block describing the
// assistant's identity to itself; it never changes at runtime since
// SelfEditable is false for this deployment.
const advisoryPersona = "소상공인과 스타트업 창업자를 돕는 경영 자문 어시스턴트. 정책자금, 세무, 노무, 상법 4개 분야에 걸쳐 근거 문서에 기반한 답변만 제공한다."

const defaultTemporalTaskQueue = "ragadvisor-persistence"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "ragserver:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg

	logger := o11y.NewLogger(o11y.WithLogLevel("info"), o11y.WithJSON())
	ctx := o11y.WithLogger(context.Background(), logger)

	traceExporter, err := buildTraceExporter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("constructing trace exporter: %w", err)
	}
	shutdownTracer, err := o11y.InitTracer("ragserver", o11y.WithSpanExporter(traceExporter))
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer shutdownTracer()

	meterProvider, err := buildMeterProvider("ragserver")
	if err != nil {
		return fmt.Errorf("initializing meter provider: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	chatModel, err := llm.New(cfg.LLM.Provider, config.ProviderConfig{
		Model:  cfg.LLM.Model,
		APIKey: cfg.LLM.APIKey,
	})
	if err != nil {
		return fmt.Errorf("constructing llm provider %q: %w", cfg.LLM.Provider, err)
	}

	// Generation and judge calls get separate rate-limit/circuit-breaker
	// budgets so a flood of judge retries cannot starve answer generation,
	// and vice versa, even though both hit the same underlying provider.
	genModel := llm.ApplyMiddleware(chatModel,
		llm.WithCircuitBreaker(resilience.NewCircuitBreaker(cfg.CircuitBreaker.FailureThreshold, cfg.CircuitBreaker.ResetTimeout)),
		llm.WithSuspendingRateLimit(resilience.NewRateLimiter(resilience.ProviderLimits{
			RPM:           cfg.RateLimit.Generation.RPM,
			MaxConcurrent: cfg.RateLimit.Generation.MaxConcurrent,
		})),
		llm.WithRetry(resilience.RetryPolicy{MaxAttempts: 2}),
	)
	judgeModel := llm.ApplyMiddleware(chatModel,
		llm.WithCircuitBreaker(resilience.NewCircuitBreaker(cfg.CircuitBreaker.FailureThreshold, cfg.CircuitBreaker.ResetTimeout)),
		llm.WithSuspendingRateLimit(resilience.NewRateLimiter(resilience.ProviderLimits{
			RPM:           cfg.RateLimit.Judge.RPM,
			MaxConcurrent: cfg.RateLimit.Judge.MaxConcurrent,
		})),
		llm.WithRetry(resilience.RetryPolicy{MaxAttempts: 2}),
	)

	embeddingCache, err := buildEmbeddingCache(cfg)
	if err != nil {
		return fmt.Errorf("constructing embedding cache: %w", err)
	}
	baseEmbedder, err := embedding.New(cfg.Embedding.Provider, config.ProviderConfig{
		Model:  cfg.Embedding.Model,
		APIKey: cfg.Embedding.APIKey,
	})
	if err != nil {
		return fmt.Errorf("constructing embedding provider %q: %w", cfg.Embedding.Provider, err)
	}
	embedder := embedding.ApplyMiddleware(baseEmbedder,
		embedding.WithCaching(embeddingCache, 24*time.Hour),
		embedding.WithCircuitBreaker(resilience.NewCircuitBreaker(cfg.CircuitBreaker.FailureThreshold, cfg.CircuitBreaker.ResetTimeout)),
		embedding.WithSuspendingRateLimit(resilience.NewRateLimiter(resilience.ProviderLimits{
			RPM:           cfg.RateLimit.Embedding.RPM,
			MaxConcurrent: cfg.RateLimit.Embedding.MaxConcurrent,
		})),
		embedding.WithRetry(resilience.RetryPolicy{MaxAttempts: 2}),
	)

	domainRetrievers, healthChecks, err := buildDomainRetrievers(cfg, embedder)
	if err != nil {
		return fmt.Errorf("constructing domain retrievers: %w", err)
	}

	longTermMemory, err := buildLongTermMemory(cfg, embedder, logger)
	if err != nil {
		return fmt.Errorf("constructing long-term memory: %w", err)
	}

	retrieverCfg := retriever.DefaultConfig()
	retrieverCfg.KFetch = cfg.Retrieval.KFetch
	retrieverCfg.KRetrieve = cfg.Retrieval.KRetrieve
	retrieverCfg.KContext = cfg.Retrieval.KContext
	retrieverCfg.Gate.MinDocs = cfg.Retrieval.MinDocs
	retrieverCfg.Gate.MinAvgSim = cfg.Retrieval.MinAvgSim
	retrieverCfg.Gate.MinKeywordRatio = cfg.Retrieval.MinKeywordRatio
	engine := retriever.NewEngine(domainRetrievers, retrieverCfg)

	rtr := router.New(genModel)

	promptRegistry := prompt.NewRegistry()
	if err := generator.RegisterTemplates(promptRegistry); err != nil {
		return fmt.Errorf("registering prompt templates: %w", err)
	}
	gen := generator.New(genModel, promptRegistry)

	eval := evaluator.New(judgeModel, embedder)
	rewriter := orchestration.NewQueryRewriter(genModel)

	pipeline := orchestration.New(rtr, engine, gen, eval, rewriter, orchestration.WithDeadline(cfg.Orchestration.Deadline))

	recorder, recorderLifecycle, err := buildRecorder(cfg)
	if err != nil {
		return fmt.Errorf("constructing persistence recorder: %w", err)
	}

	var chatHandler *server.ChatHandler
	if recorder == nil {
		chatHandler = server.NewChatHandler(pipeline, nil, server.WithLongTermMemory(longTermMemory))
	} else {
		chatHandler = server.NewChatHandler(pipeline, recorder, server.WithLongTermMemory(longTermMemory))
	}

	healthHandler := server.NewHealthHandler()
	for name, check := range healthChecks {
		healthHandler.RegisterCollection(name, check)
	}

	adapter, err := server.New("stdlib", server.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
	if err != nil {
		return fmt.Errorf("constructing server adapter: %w", err)
	}
	if err := adapter.RegisterHandler("/metrics", promhttp.Handler()); err != nil {
		return fmt.Errorf("registering metrics handler: %w", err)
	}
	httpServer := server.NewServer(adapter, cfg.Server.Addr, chatHandler, healthHandler,
		server.WithIngressRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

	app := core.NewApp()
	if recorderLifecycle != nil {
		app.Register(recorderLifecycle)
	}
	app.Register(httpServer)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("starting app: %w", err)
	}
	logger.Info(ctx, "ragserver started", "addr", cfg.Server.Addr, "profile", cfg.Profile)

	<-ctx.Done()
	logger.Info(ctx, "ragserver shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

// buildTraceExporter picks the span destination by profile: stdouttrace's
// human-readable JSON for local development, otlptracegrpc to ship real
// traces to a collector everywhere else.
func buildTraceExporter(ctx context.Context, cfg config.Config) (sdktrace.SpanExporter, error) {
	if cfg.Profile == "development" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	return otlptracegrpc.New(ctx)
}

// buildMeterProvider wires a Prometheus-scraped metric reader as the global
// MeterProvider and binds the o11y package's GenAI instruments to it, so
// TokenUsage/OperationDuration/Cost land on GET /metrics.
func buildMeterProvider(serviceName string) (*sdkmetric.MeterProvider, error) {
	exporter, err := otelprometheus.New()
	if err != nil {
		return nil, fmt.Errorf("constructing prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	if err := o11y.InitMeter(serviceName); err != nil {
		return nil, fmt.Errorf("initializing meter instruments: %w", err)
	}
	return mp, nil
}

// buildEmbeddingCache constructs the cache.Cache backing embedding
// memoization, from the same Cache.Provider config used for response
// caching elsewhere, so a single backend choice governs both.
func buildEmbeddingCache(cfg config.Config) (cache.Cache, error) {
	cacheCfg := cache.Config{TTL: 24 * time.Hour}
	if cfg.Cache.Addr != "" {
		cacheCfg.Options = map[string]any{"addr": cfg.Cache.Addr}
	}
	return cache.New(cfg.Cache.Provider, cacheCfg)
}

// buildDomainRetrievers constructs one retriever.DomainRetriever and BM25
// index per ragcore.DomainTag, and one health.CollectionChecker per domain's
// vector collection so GET /health can report per-domain reachability.
func buildDomainRetrievers(cfg config.Config, embedder embedding.Embedder) (map[ragcore.DomainTag]*retriever.DomainRetriever, map[string]server.CollectionChecker, error) {
	breaker := func() vectorstore.Middleware {
		return vectorstore.WithCircuitBreaker(resilience.NewCircuitBreaker(cfg.CircuitBreaker.FailureThreshold, cfg.CircuitBreaker.ResetTimeout))
	}
	retry := func() vectorstore.Middleware {
		return vectorstore.WithRetry(resilience.RetryPolicy{MaxAttempts: 2})
	}
	domains := []ragcore.DomainTag{
		ragcore.DomainStartupFunding,
		ragcore.DomainFinanceTax,
		ragcore.DomainHRLabor,
		ragcore.DomainLawCommon,
	}

	kRRF := retriever.DefaultConfig().KRRF
	retrievers := make(map[ragcore.DomainTag]*retriever.DomainRetriever, len(domains))
	checks := make(map[string]server.CollectionChecker, len(domains))

	for _, domain := range domains {
		rawStore, err := vectorstore.New(cfg.VectorStore.Provider, config.ProviderConfig{
			BaseURL: cfg.VectorStore.ConnectionString,
			Options: map[string]any{"table": string(domain)},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("domain %q: constructing vector store: %w", domain, err)
		}
		store := vectorstore.ApplyMiddleware(rawStore, breaker(), retry())

		dims := embedder.Dimensions()
		retrievers[domain] = retriever.NewDomainRetriever(domain, store, embedder, lexical.New(), kRRF)
		checks[string(domain)] = server.CollectionCheckerFunc(func(ctx context.Context) error {
			_, err := store.Search(ctx, make([]float32, dims), 1)
			return err
		})
	}

	return retrievers, checks, nil
}

// buildLongTermMemory constructs a second, durable memory strategy
// alongside the in-process TurnWindow: a MemGPT-style composite of a core
// persona block, a recall tier over every message ever exchanged, an
// archival tier doing vector search over embedded past turns, and a graph
// tier for entity/relation bookkeeping. Recall and graph run in-process
// (no extra infra to operate); archival shares the configured vector store
// backend and embedder so its storage/search behavior matches the domain
// retrievers'. The whole thing is wrapped with hook-based error logging,
// the same Middleware/hooks shape rag/embedding, rag/vectorstore and llm
// use for their own cross-cutting concerns.
func buildLongTermMemory(cfg config.Config, embedder embedding.Embedder, logger *o11y.Logger) (memory.Memory, error) {
	rawStore, err := vectorstore.New(cfg.VectorStore.Provider, config.ProviderConfig{
		BaseURL: cfg.VectorStore.ConnectionString,
		Options: map[string]any{"table": "archival_memory"},
	})
	if err != nil {
		return nil, fmt.Errorf("constructing archival vector store: %w", err)
	}
	archivalStore := vectorstore.ApplyMiddleware(rawStore,
		vectorstore.WithCircuitBreaker(resilience.NewCircuitBreaker(cfg.CircuitBreaker.FailureThreshold, cfg.CircuitBreaker.ResetTimeout)),
		vectorstore.WithRetry(resilience.RetryPolicy{MaxAttempts: 2}))

	archival, err := memory.NewArchival(memory.ArchivalConfig{VectorStore: archivalStore, Embedder: embedder})
	if err != nil {
		return nil, fmt.Errorf("constructing archival memory: %w", err)
	}

	coreMem := memory.NewCore(memory.CoreConfig{SelfEditable: false})
	if err := coreMem.SetPersona(advisoryPersona); err != nil {
		return nil, fmt.Errorf("setting advisory persona: %w", err)
	}

	composite := memory.NewComposite(
		memory.WithCore(coreMem),
		memory.WithRecall(memory.NewRecall(meminmemory.NewMessageStore())),
		memory.WithArchival(archival),
		memory.WithGraph(meminmemory.NewGraphStore()),
	)

	hooks := memory.Hooks{
		AfterSave: func(ctx context.Context, input, output schema.Message, err error) {
			if err != nil {
				logger.Error(ctx, "long-term memory save failed", "error", err)
			}
		},
		AfterLoad: func(ctx context.Context, query string, msgs []schema.Message, err error) {
			if err != nil {
				logger.Error(ctx, "long-term memory load failed", "error", err)
			}
		},
	}
	return memory.ApplyMiddleware(composite, memory.WithHooks(hooks)), nil
}

// buildRecorder wires the persistence.Recorder against a real Temporal
// client plus a worker running RecordQueryWorkflow whenever a Temporal
// target is configured; development without one runs without persistence,
// so local iteration never needs a Temporal cluster.
func buildRecorder(cfg config.Config) (*persistence.Recorder, core.Lifecycle, error) {
	if cfg.Persistence.TemporalHostPort == "" {
		return nil, nil, nil
	}

	c, err := client.Dial(client.Options{HostPort: cfg.Persistence.TemporalHostPort})
	if err != nil {
		return nil, nil, fmt.Errorf("dialing temporal: %w", err)
	}

	taskQueue := cfg.Persistence.TemporalQueue
	if taskQueue == "" {
		taskQueue = defaultTemporalTaskQueue
	}

	rec, err := persistence.NewRecorder(persistence.Config{Client: c, TaskQueue: taskQueue})
	if err != nil {
		c.Close()
		return nil, nil, err
	}

	store := persistence.NewInMemoryStore()
	activities := &persistence.Activities{Store: store}
	w := worker.New(c, taskQueue, worker.Options{})
	w.RegisterWorkflow(persistence.RecordQueryWorkflow)
	w.RegisterActivity(activities.SaveRecord)

	return rec, &temporalWorkerLifecycle{client: c, worker: w}, nil
}

// temporalWorkerLifecycle adapts a Temporal worker.Worker and its client
// into a core.Lifecycle component so cmd/ragserver can start and stop it
// alongside the HTTP server under one core.App.
type temporalWorkerLifecycle struct {
	client client.Client
	worker worker.Worker
}

func (t *temporalWorkerLifecycle) Start(ctx context.Context) error {
	return t.worker.Start()
}

func (t *temporalWorkerLifecycle) Stop(ctx context.Context) error {
	t.worker.Stop()
	t.client.Close()
	return nil
}

func (t *temporalWorkerLifecycle) Health() core.HealthStatus {
	return core.HealthStatus{Status: core.HealthHealthy, Timestamp: time.Now()}
}
