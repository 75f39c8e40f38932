package tutor

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/redfire-io/pcb-tutor/internal/model"
	"github.com/redfire-io/pcb-tutor/internal/tutor/biz"
	"github.com/redfire-io/pcb-tutor/internal/tutor/handler"
	"github.com/redfire-io/pcb-tutor/internal/tutor/router"
	"github.com/redfire-io/pcb-tutor/internal/tutor/store"
	"github.com/redfire-io/pcb-tutor/pkg/app"
	milvuscomp "github.com/redfire-io/pcb-tutor/pkg/component/milvus"
	rediscomp "github.com/redfire-io/pcb-tutor/pkg/component/redis"
	"github.com/redfire-io/pcb-tutor/pkg/llm"
	"github.com/redfire-io/pcb-tutor/pkg/llm/resilience"
	mcqopts "github.com/redfire-io/pcb-tutor/pkg/options/mcq"
	"github.com/redfire-io/pcb-tutor/pkg/server"
	"github.com/redfire-io/pcb-tutor/pkg/server/middleware"

	// Register LLM providers.
	_ "github.com/redfire-io/pcb-tutor/pkg/llm/groq"
	_ "github.com/redfire-io/pcb-tutor/pkg/llm/huggingface"
	_ "github.com/redfire-io/pcb-tutor/pkg/llm/ollama"
	_ "github.com/redfire-io/pcb-tutor/pkg/llm/openai"
)

// Config is the completed, validated server configuration.
type Config struct {
	Options *ServerOptions
}

// Server is the assembled tutor server.
type Server struct {
	httpServer *server.Server
	service    biz.Service
}

// NewServer builds every component from the configuration.
func (c *Config) NewServer(ctx context.Context) (*Server, error) {
	o := c.Options

	if err := o.Log.Init(); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.Infow("Starting pcb-tutor",
		"version", app.GetVersion(),
		"addr", o.HTTP.Addr,
		"store", o.MCQ.Store,
	)

	vectorStore, err := c.buildVectorStore()
	if err != nil {
		return nil, err
	}

	redisClient := c.buildRedis(ctx)

	embedder, err := c.buildEmbedder(redisClient)
	if err != nil {
		return nil, err
	}
	chat, err := c.buildChat()
	if err != nil {
		return nil, err
	}

	// Collections are created up front so first queries on an empty
	// subject return no content instead of an unknown-collection error.
	for _, subject := range model.Subjects {
		if err := vectorStore.CreateCollection(ctx, &store.CollectionConfig{
			Name:        fmt.Sprintf("%s_%s", o.MCQ.CollectionPrefix, subject),
			Description: fmt.Sprintf("Class 12 %s textbook chunks", subject.Title()),
			Dimension:   o.MCQ.EmbeddingDim,
		}); err != nil {
			return nil, fmt.Errorf("create collection for %s: %w", subject, err)
		}
	}

	datasets, err := store.NewDatasetStore(o.MCQ.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open dataset store: %w", err)
	}

	indexer, err := biz.NewIndexer(embedder, vectorStore, datasets, biz.IndexerConfig{
		ChunkSize:        o.MCQ.ChunkSize,
		ChunkOverlap:     o.MCQ.ChunkOverlap,
		CollectionPrefix: o.MCQ.CollectionPrefix,
		EmbeddingDim:     o.MCQ.EmbeddingDim,
		DataDir:          o.MCQ.DataDir,
	})
	if err != nil {
		return nil, err
	}

	var cache *biz.QueryCache
	if redisClient != nil && o.Cache.Enabled {
		cache = biz.NewQueryCache(redisClient, o.Cache.TTL, o.Cache.KeyPrefix)
	}

	service := biz.NewService(
		biz.NewRetriever(embedder, vectorStore, o.MCQ.CollectionPrefix, o.MCQ.TopK),
		biz.NewTopicValidator(chat, o.MCQ.ValidateTopics),
		biz.NewChapterDetector(chat),
		biz.NewGenerator(chat, o.MCQ.ContextCharLimit),
		indexer,
		cache,
		datasets,
		vectorStore,
		o.MCQ,
	)

	httpServer := server.New(o.HTTP,
		server.WithShutdownTimeout(o.ShutdownTimeout),
		server.WithMiddleware(
			middleware.Recovery(),
			middleware.RequestID(),
			middleware.Logger("/healthz", "/metrics"),
			middleware.CORS(),
		),
	)
	router.Register(httpServer.Engine(),
		handler.NewMCQHandler(service),
		handler.NewHealthHandler(service, o.Chat.Provider, o.Embedding.Provider),
	)

	return &Server{httpServer: httpServer, service: service}, nil
}

// Run serves until ctx is cancelled, then shuts down and releases the
// pipeline.
func (s *Server) Run(ctx context.Context) error {
	err := s.httpServer.Run(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if cerr := s.service.Close(closeCtx); cerr != nil {
		logger.Warnw("Service close failed", "error", cerr.Error())
	}
	return err
}

func (c *Config) buildVectorStore() (store.VectorStore, error) {
	o := c.Options
	if o.MCQ.Store == mcqopts.StoreMemory {
		logger.Infow("Using in-memory vector store")
		return store.NewMemoryStore(), nil
	}

	client, err := milvuscomp.New(o.Milvus)
	if err != nil {
		return nil, fmt.Errorf("connect milvus: %w", err)
	}
	logger.Infow("Connected to Milvus", "address", o.Milvus.Address)
	return store.NewMilvusStore(client), nil
}

// buildRedis connects to Redis. A connection failure disables caching
// instead of failing startup.
func (c *Config) buildRedis(ctx context.Context) *goredis.Client {
	o := c.Options
	if !o.Cache.Enabled {
		return nil
	}

	client, err := rediscomp.New(ctx, o.Cache.Redis)
	if err != nil {
		logger.Warnw("Redis unavailable, caching disabled",
			"addr", o.Cache.Redis.Addr(),
			"error", err.Error(),
		)
		return nil
	}
	logger.Infow("Connected to Redis", "addr", o.Cache.Redis.Addr())
	return client
}

func (c *Config) buildEmbedder(redisClient *goredis.Client) (llm.EmbeddingProvider, error) {
	o := c.Options

	embedder, err := llm.NewEmbeddingProvider(o.Embedding.Provider, o.Embedding.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("create embedding provider: %w", err)
	}

	var wrapped llm.EmbeddingProvider = resilience.NewResilientEmbeddingProvider(
		embedder, resilience.DefaultRetryConfig(), resilience.DefaultCircuitBreakerConfig())

	if redisClient != nil {
		wrapped = llm.NewCachedEmbeddingProvider(wrapped, redisClient, llm.DefaultEmbeddingCacheConfig())
	}

	logger.Infow("Embedding provider ready", "provider", o.Embedding.Provider, "model", o.Embedding.Model)
	return wrapped, nil
}

func (c *Config) buildChat() (llm.ChatProvider, error) {
	o := c.Options

	chat, err := llm.NewChatProvider(o.Chat.Provider, o.Chat.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("create chat provider: %w", err)
	}

	logger.Infow("Chat provider ready", "provider", o.Chat.Provider, "model", o.Chat.Model)
	return resilience.NewResilientChatProvider(
		chat, resilience.DefaultRetryConfig(), resilience.DefaultCircuitBreakerConfig()), nil
}
