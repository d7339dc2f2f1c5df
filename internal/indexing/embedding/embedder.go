package embedding

import "context"

type Embedder interface {
	BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}
