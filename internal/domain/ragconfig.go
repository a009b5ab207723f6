package domain

import "fmt"

// Configuration bounds.
const (
	MinChunkSize      = 128
	MaxChunkSize      = 4096
	MinOverlapPercent = 0
	MaxOverlapPercent = 50
	MinTopK           = 1
	MaxTopK           = 20
	MinTemperature    = 0.0
	MaxTemperature    = 2.0
)

// Config is one immutable pipeline configuration: how documents are chunked,
// how many hits are retrieved, and which model answers.
type Config struct {
	chunkSize      int
	overlapPercent int
	topK           int
	modelName      string
	temperature    float64
}

// NewConfig validates bounds and creates a pipeline configuration.
func NewConfig(chunkSize, overlapPercent, topK int, modelName string, temperature float64) (Config, error) {
	if chunkSize < MinChunkSize || chunkSize > MaxChunkSize {
		return Config{}, fmt.Errorf("%w: chunk_size must be %d..%d, got %d",
			ErrInvalidConfig, MinChunkSize, MaxChunkSize, chunkSize)
	}
	if overlapPercent < MinOverlapPercent || overlapPercent > MaxOverlapPercent {
		return Config{}, fmt.Errorf("%w: overlap_percent must be %d..%d, got %d",
			ErrInvalidConfig, MinOverlapPercent, MaxOverlapPercent, overlapPercent)
	}
	if topK < MinTopK || topK > MaxTopK {
		return Config{}, fmt.Errorf("%w: top_k must be %d..%d, got %d",
			ErrInvalidConfig, MinTopK, MaxTopK, topK)
	}
	if temperature < MinTemperature || temperature > MaxTemperature {
		return Config{}, fmt.Errorf("%w: temperature must be %g..%g, got %g",
			ErrInvalidConfig, MinTemperature, MaxTemperature, temperature)
	}
	return Config{
		chunkSize:      chunkSize,
		overlapPercent: overlapPercent,
		topK:           topK,
		modelName:      modelName,
		temperature:    temperature,
	}, nil
}

// WithChunkSize returns a copy of the configuration with a different chunk size.
func (c Config) WithChunkSize(size int) (Config, error) {
	return NewConfig(size, c.overlapPercent, c.topK, c.modelName, c.temperature)
}

// ChunkSize returns the chunk token budget.
func (c Config) ChunkSize() int { return c.chunkSize }

// OverlapPercent returns the overlap percentage (0..50).
func (c Config) OverlapPercent() int { return c.overlapPercent }

// OverlapTokens returns the overlap in tokens: floor(overlap% * chunk size).
func (c Config) OverlapTokens() int { return c.chunkSize * c.overlapPercent / 100 }

// TopK returns how many hits to retrieve.
func (c Config) TopK() int { return c.topK }

// ModelName returns the generation model name.
func (c Config) ModelName() string { return c.modelName }

// Temperature returns the generation temperature.
func (c Config) Temperature() float64 { return c.temperature }
