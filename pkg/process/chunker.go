package process

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// ChunkerConfig holds configuration for the chunker.
type ChunkerConfig struct {
	ChunkSize    int // Maximum chunk size in tokens
	ChunkOverlap int // Overlap between consecutive chunks in tokens
}

// DefaultChunkerConfig returns sensible defaults for RAG chunking.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		ChunkSize:    512,
		ChunkOverlap: 50,
	}
}

// ChunkText splits plain text into token-bounded chunks using recursive
// character splitting. Chunk boundaries prefer paragraph breaks, then line
// breaks, then sentence punctuation, so extracted PDF text keeps its
// structure where possible.
func ChunkText(text string, cfg ChunkerConfig) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(cfg.ChunkSize),
		textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " "}),
		textsplitter.WithLenFunc(CountTokens),
	)

	parts, err := splitter.SplitText(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		chunks = append(chunks, trimmed)
	}
	return chunks, nil
}
