// @title           Document Vault API
// @version         1.0
// @description     This API handles asynchronous document chunk processing
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocVault/internal/chunking"
	"github.com/akolanti/DocVault/internal/chunking/llm"
	"github.com/akolanti/DocVault/internal/chunking/llm/gemini"
	"github.com/akolanti/DocVault/internal/chunking/llm/openaiLLM"
	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/internal/data/store"
	"github.com/akolanti/DocVault/internal/domain/chunkModel"
	jobmodel "github.com/akolanti/DocVault/internal/domain/jobModel"
	"github.com/akolanti/DocVault/internal/extraction"
	"github.com/akolanti/DocVault/internal/handlers"
	"github.com/akolanti/DocVault/internal/indexing"
	"github.com/akolanti/DocVault/internal/indexing/embedding/googleEmbedding"
	"github.com/akolanti/DocVault/internal/indexing/qdrantIndex"
	"github.com/akolanti/DocVault/internal/job"
	"github.com/akolanti/DocVault/internal/pipeline"
	"github.com/akolanti/DocVault/internal/server"
	"github.com/akolanti/DocVault/internal/worker"
	"github.com/akolanti/DocVault/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.JobDescriptor, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and stores
	var jobStore jobmodel.JobStore
	var chunkStore chunkModel.ChunkStore
	redisJobStore := store.GetRedisJobStore(serviceContext)
	redisChunkStore := store.GetRedisChunkStore(serviceContext)
	if redisJobStore == nil || redisChunkStore == nil {
		logger.Error("Redis stores are offline, falling back to in-memory stores")
		jobStore = store.InitInMemoryJobStore()
		chunkStore = store.InitInMemoryChunkStore()
	} else {
		jobStore = redisJobStore
		chunkStore = redisChunkStore
	}

	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStore,
		ChunkStore:        chunkStore,
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	//pipeline stages
	poller := extraction.NewPoller(extraction.NewLocalEngine())

	var agentic pipeline.Chunker
	if config.AgenticEnabled() {
		provider := chooseProvider(serviceContext, logger)
		if provider != nil {
			agentic = chunking.NewAgenticChunker(provider, config.ChunkSize(), config.ChunkOverlap())
		} else {
			logger.Error("No language model available, chunking falls back to sliding windows")
		}
	}

	var indexer indexing.Indexer
	if config.IndexingEnabled() {
		vectorDB := qdrantIndex.GetQuadrantClient(serviceContext)
		embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.EmbeddingModelDefault, os.Getenv("GEMINI_API_KEY"))
		if vectorDB == nil || embeddingService == nil {
			logger.Error("Vector indexing requested but unavailable", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil)
		} else {
			indexer = indexing.NewVectorIndexer(embeddingService, vectorDB)
		}
	}

	processor := pipeline.NewPipeline(jobStore, chunkStore, poller, agentic, indexer)

	handlers.InitJobHandler(service)

	//init worker pool
	worker.InitServices(service, processor)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func chooseProvider(ctx context.Context, logger *logger_i.Logger) llm.Provider {
	model := config.AgenticModel()
	switch config.AgenticProvider() {
	case "openai":
		apikey := os.Getenv("OPENAI_API_KEY")
		if apikey == "" {
			logger.Error("OPENAI_API_KEY is not set")
			return nil
		}
		return openaiLLM.GetOpenAIClient(apikey, model)
	default:
		apikey := os.Getenv("GEMINI_API_KEY")
		if apikey == "" {
			logger.Error("GEMINI_API_KEY is not set")
			return nil
		}
		return gemini.GetGeminiClient(ctx, apikey, model)
	}
}
