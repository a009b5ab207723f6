// Package chunker splits document text into overlapping fixed-size retrieval
// units. Sizes are expressed as token budgets and approximated on word
// boundaries (1 token ~= 0.75 words for English), so a chunk size compares
// across documents of different density.
package chunker

import (
	"fmt"
	"strings"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
)

// wordsPerToken is the word/token approximation ratio.
const wordsPerToken = 0.75

// Split chunks text for one document. chunkSize is the token budget,
// overlapPercent (0..50) controls how many tokens of chunk i reappear at the
// start of chunk i+1. The final chunk may be shorter than chunkSize; it is
// never dropped. Identical inputs always produce identical output.
func Split(docID, text string, chunkSize, overlapPercent int) ([]domain.Chunk, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	overlapTokens := chunkSize * overlapPercent / 100

	chunkWords := int(float64(chunkSize) * wordsPerToken)
	overlapWords := int(float64(overlapTokens) * wordsPerToken)
	if chunkWords < 1 {
		chunkWords = 1
	}

	step := chunkWords - overlapWords
	if step <= 0 {
		return nil, fmt.Errorf("%w: overlap %d%% of chunk size %d leaves no advance",
			domain.ErrInvalidConfig, overlapPercent, chunkSize)
	}

	var chunks []domain.Chunk
	for start := 0; start < len(words); start += step {
		end := start + chunkWords
		if end > len(words) {
			end = len(words)
		}

		span := words[start:end]
		chunks = append(chunks, domain.Chunk{
			DocID:      docID,
			Seq:        len(chunks),
			Text:       strings.Join(span, " "),
			ChunkSize:  chunkSize,
			TokenCount: estimateTokens(len(span)),
		})

		if end == len(words) {
			break
		}
	}

	return chunks, nil
}

// SplitConfig chunks text using a validated pipeline configuration.
func SplitConfig(docID, text string, cfg domain.Config) ([]domain.Chunk, error) {
	return Split(docID, text, cfg.ChunkSize(), cfg.OverlapPercent())
}

// estimateTokens converts a word count back to an approximate token count.
func estimateTokens(wordCount int) int {
	return int(float64(wordCount)/wordsPerToken + 0.5)
}
