package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Env getters follow the same pattern the store clients use: a constant default,
// overridable at deploy time without rebuilding.

func EnvString(key string, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func EnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func EnvBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return strings.EqualFold(v, "true")
	}
	return fallback
}

func EnvSeconds(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}

func DocsDir() string {
	return EnvString("DOCS_DIR", DocsDirDefault)
}

func OCRMaxWait() time.Duration {
	return EnvSeconds("OCR_MAX_WAIT_SECONDS", OCRMaxWaitDefault)
}

func ChunkSize() int {
	return EnvInt("CHUNK_SIZE", ChunkSizeDefault)
}

func ChunkOverlap() int {
	return EnvInt("CHUNK_OVERLAP", ChunkOverlapDefault)
}

func AgenticEnabled() bool {
	return EnvBool("ENABLE_AGENTIC_CHUNKING", AgenticEnabledDefault)
}

func AgenticProvider() string {
	return EnvString("AGENTIC_LLM_PROVIDER", AgenticProviderDefault)
}

func AgenticModel() string {
	return EnvString("AGENTIC_LLM_MODEL", AgenticModelDefault)
}

func IndexingEnabled() bool {
	return EnvBool("ENABLE_VECTOR_INDEXING", IndexingEnabledDefault)
}

func AuthToken() string {
	return EnvString("API_AUTH_TOKEN", "")
}

// NoAuthBypass is true when no token is configured; dev convenience only.
func NoAuthBypass() bool {
	return AuthToken() == ""
}
