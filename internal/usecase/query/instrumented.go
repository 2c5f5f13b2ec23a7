package query

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/raseed-cloud/raseed/internal/metrics"
)

// InstrumentedGenerator wraps a Generator with request metrics and logging.
// Provider transports stay unaware of Prometheus; this layer owns the
// counters.
type InstrumentedGenerator struct {
	inner    Generator
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedGenerator wraps a generator with observability.
func NewInstrumentedGenerator(inner Generator, provider, model string, logger *zap.Logger) *InstrumentedGenerator {
	return &InstrumentedGenerator{
		inner:    inner,
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Generate delegates to the inner generator and records outcome and latency.
func (g *InstrumentedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := g.inner.Generate(ctx, prompt)
	elapsed := time.Since(start)

	metrics.LLMRequestDuration.WithLabelValues(g.provider, g.model).Observe(elapsed.Seconds())
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		g.logger.Warn("llm generation failed",
			zap.String("provider", g.provider),
			zap.String("model", g.model),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", err
	}

	metrics.LLMRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	g.logger.Debug("llm generation completed",
		zap.String("provider", g.provider),
		zap.String("model", g.model),
		zap.Duration("elapsed", elapsed),
		zap.Int("response_chars", len(out)))
	return out, nil
}
