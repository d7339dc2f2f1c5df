package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//a failed job descriptor is pushed back to the queue until it has been
	//delivered this many times, then it is dead-lettered
	MaxDeliveryAttempts = 3

	//hard ceiling for one delivery, must exceed the extraction max wait
	JobExecutionTimeout = 15 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//upload cap, same as the old synchronous upload path
	MaxUploadBytes = 25 << 20

	//extraction
	OCRMaxWaitDefault     = 600 * time.Second
	OCRPollInterval       = 5 * time.Second
	OCRHeartbeatInterval  = 15 * time.Second
	OCRPageExtractTimeout = 10 * time.Second
	OCRResultPageSize     = 500 //blocks per result page

	//chunking
	ChunkSizeDefault    = 800
	ChunkOverlapDefault = 100

	//agentic chunking
	AgenticEnabledDefault   = true
	AgenticProviderDefault  = "gemini"
	AgenticModelDefault     = "gemini-2.5-flash-lite-preview-09-2025"
	AgenticMaxInputChars    = 20000
	AgenticMaxPropositions  = 1000
	AgenticClusterPropLimit = 200

	//job record hygiene
	JobMessageMaxLen = 1000

	//vector indexing (off unless ENABLE_VECTOR_INDEXING=true)
	IndexingEnabledDefault              = false
	IndexCollection                     = "document-chunks"
	EmbeddingModelDefault               = "gemini-embedding-001"
	EmbeddingOutputDimensionality int32 = 1536
	QdrantHost                          = "localhost"
	QdrantGrpcPort                      = 6334
	QdrantUseTLS                        = false
	QdrantPoolSize                      = 1

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore   = 0
	RedisChunkStore = 1

	//redis timeouts
	RedisJobStoreTTL                 = 7 * 24 * time.Hour
	RedisChunkStoreTTL time.Duration = 0 //chunks do not expire

	//documents land here; job descriptors carry bucket+key relative to it
	DocsDirDefault = "document_vault"
)
