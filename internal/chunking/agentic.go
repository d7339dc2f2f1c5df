package chunking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/DocVault/internal/chunking/llm"
	"github.com/akolanti/DocVault/internal/config"
	"github.com/akolanti/DocVault/internal/domain/chunkModel"
	"github.com/akolanti/DocVault/pkg/logger_i"
)

const propositionSystemPrompt = "You are an expert at decomposing documents into standalone propositions. " +
	"Each proposition is a single, self-contained statement of fact from the document. " +
	"Respond with JSON only, in the form {\"sentences\": [\"...\", \"...\"]}."

const clusterSystemPrompt = "You are an expert at organizing propositions into topical groups. " +
	"Group the given propositions into between 3 and 12 clusters of related content. " +
	"Respond with JSON only, in the form {\"clusters\": [{\"chunk_id\": \"...\", " +
	"\"title\": \"...\", \"summary\": \"...\", \"propositions\": [\"...\"]}]}. " +
	"Every proposition string must be copied verbatim from the input."

// AgenticChunker produces semantically grouped chunks by asking a language
// model to decompose the document into propositions and cluster them. Any
// failure other than an access denial degrades: a failed proposition stage
// routes to the sliding-window chunker, a failed cluster stage collapses to a
// single catch-all cluster.
type AgenticChunker struct {
	provider llm.Provider
	logger   *logger_i.Logger

	MaxInputChars    int
	MaxPropositions  int
	ClusterPropLimit int
	ChunkSize        int
	Overlap          int
}

func NewAgenticChunker(provider llm.Provider, chunkSize int, overlap int) *AgenticChunker {
	return &AgenticChunker{
		provider:         provider,
		logger:           logger_i.NewLogger("agentic_chunker"),
		MaxInputChars:    config.AgenticMaxInputChars,
		MaxPropositions:  config.AgenticMaxPropositions,
		ClusterPropLimit: config.AgenticClusterPropLimit,
		ChunkSize:        chunkSize,
		Overlap:          overlap,
	}
}

// Chunk runs the proposition/cluster pipeline. A permission error from the
// provider is returned to the caller so the job can surface it; every other
// failure falls back to ChunkWithOffsets on the input lines.
func (a *AgenticChunker) Chunk(ctx context.Context, lines []chunkModel.TextLine) ([]chunkModel.Chunk, error) {
	log := a.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	var parts []string
	for _, line := range lines {
		if strings.TrimSpace(line.Text) != "" {
			parts = append(parts, line.Text)
		}
	}
	fullText := strings.Join(parts, "\n")
	if strings.TrimSpace(fullText) == "" {
		return nil, nil
	}

	propositions, err := a.extractPropositions(ctx, fullText)
	if err != nil {
		if errors.Is(err, llm.ErrPermissionDenied) {
			return nil, err
		}
		log.Warn("Proposition extraction failed, using sliding-window chunks", "error", err)
		return ChunkWithOffsets(lines, a.ChunkSize, a.Overlap), nil
	}
	if len(propositions) == 0 {
		log.Warn("No propositions extracted, using sliding-window chunks")
		return ChunkWithOffsets(lines, a.ChunkSize, a.Overlap), nil
	}

	clusters, err := a.clusterPropositions(ctx, propositions)
	if err != nil {
		if errors.Is(err, llm.ErrPermissionDenied) {
			return nil, err
		}
		log.Warn("Clustering failed, grouping all propositions together", "error", err)
		clusters = generalCluster(propositions)
	}

	var chunks []chunkModel.Chunk
	for i, cluster := range clusters {
		text := strings.TrimSpace(strings.Join(cluster.Propositions, ". "))
		if text == "" {
			continue
		}
		title := cluster.Title
		if title == "" {
			title = fmt.Sprintf("Chunk %d", i+1)
		}
		summary := cluster.Summary
		if summary == "" {
			summary = title
		}
		chunks = append(chunks, chunkModel.Chunk{
			Text:    text,
			Title:   title,
			Summary: summary,
			LocalID: cluster.ChunkID,
		})
	}
	if len(chunks) == 0 {
		log.Warn("Clustering yielded no usable chunks, using sliding-window chunks")
		return ChunkWithOffsets(lines, a.ChunkSize, a.Overlap), nil
	}
	return chunks, nil
}

func (a *AgenticChunker) extractPropositions(ctx context.Context, fullText string) ([]string, error) {
	if len(fullText) > a.MaxInputChars {
		fullText = fullText[:a.MaxInputChars]
	}

	userPrompt := "Decompose the following document into standalone propositions:\n\n" + fullText

	raw, err := a.provider.Complete(ctx, propositionSystemPrompt, userPrompt)
	if err != nil {
		if errors.Is(err, llm.ErrPermissionDenied) {
			return nil, err
		}
		// a failed call yields no propositions at all, the sentence split is
		// reserved for responses that came back but could not be parsed
		a.logger.Warn("Proposition model call failed", "error", err)
		return nil, nil
	}

	var parsed struct {
		Sentences []string `json:"sentences"`
	}
	if !DecodeLenient(raw, &parsed) || len(parsed.Sentences) == 0 {
		a.logger.Warn("Proposition response was not parseable, splitting into sentences")
		return capPropositions(splitSentences(fullText), a.MaxPropositions), nil
	}

	seen := make(map[string]bool)
	var propositions []string
	for _, s := range parsed.Sentences {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		propositions = append(propositions, s)
	}
	return capPropositions(propositions, a.MaxPropositions), nil
}

func (a *AgenticChunker) clusterPropositions(ctx context.Context, propositions []string) ([]chunkModel.PropositionCluster, error) {
	if len(propositions) == 0 {
		return nil, nil
	}

	sample := propositions
	if len(sample) > a.ClusterPropLimit {
		sample = sample[:a.ClusterPropLimit]
	}

	var b strings.Builder
	b.WriteString("Group these propositions into topical clusters:\n\n")
	for i, p := range sample {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}

	raw, err := a.provider.Complete(ctx, clusterSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Clusters []chunkModel.PropositionCluster `json:"clusters"`
	}
	if !DecodeLenient(raw, &parsed) {
		return nil, fmt.Errorf("cluster response was not parseable")
	}

	var clusters []chunkModel.PropositionCluster
	for i, c := range parsed.Clusters {
		if len(c.Propositions) == 0 {
			continue
		}
		if c.ChunkID == "" {
			c.ChunkID = fmt.Sprintf("c%02d", i+1)
		}
		if len(c.ChunkID) > 8 {
			c.ChunkID = c.ChunkID[:8]
		}
		if c.Title == "" {
			c.Title = fmt.Sprintf("Chunk %d", i+1)
		}
		if c.Summary == "" {
			c.Summary = c.Title
		}
		clusters = append(clusters, c)
	}
	if len(clusters) == 0 {
		return generalCluster(propositions), nil
	}
	return clusters, nil
}

func generalCluster(propositions []string) []chunkModel.PropositionCluster {
	return []chunkModel.PropositionCluster{{
		ChunkID:      "c0001",
		Title:        "General",
		Summary:      "General related content",
		Propositions: propositions,
	}}
}

func capPropositions(props []string, max int) []string {
	if len(props) > max {
		return props[:max]
	}
	return props
}

// splitSentences breaks text after runs of sentence punctuation followed by
// whitespace. It is the last-resort source of propositions when the model
// gives nothing usable.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
				i++
				current.WriteRune(runes[i])
			}
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' || runes[i+1] == '\r' {
				s := strings.TrimSpace(current.String())
				if s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
