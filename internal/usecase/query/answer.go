package query

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/raseed-cloud/raseed/internal/domain"
	"github.com/raseed-cloud/raseed/internal/domain/notice"
	"github.com/raseed-cloud/raseed/internal/domain/receipt"
	"github.com/raseed-cloud/raseed/internal/logger"
	"github.com/raseed-cloud/raseed/internal/metrics"
)

// synthesizeAnswer renders a natural-language answer strictly from the
// executed result set. A model failure degrades to a count-only answer and is
// never surfaced to the caller.
func (s *Service) synthesizeAnswer(ctx context.Context, question string, recs []receipt.Receipt) string {
	log := logger.FromContext(ctx)

	data, err := json.MarshalIndent(notice.ViewsOf(recs, 0), "", "  ")
	if err != nil {
		log.Error("serializing receipts for answer synthesis", zap.Error(err))
		return fallbackAnswer(len(recs))
	}

	answer, err := s.gen.Generate(ctx, answerPrompt(data, question))
	if err != nil {
		log.Warn("answer synthesis failed, falling back to count answer",
			zap.Error(fmt.Errorf("%w: %v", domain.ErrAnswerSynthesis, err)))
		metrics.QueryFallbacksTotal.WithLabelValues("answer").Inc()
		return fallbackAnswer(len(recs))
	}
	return answer
}

func fallbackAnswer(count int) string {
	return fmt.Sprintf("Found %d receipts matching your query.", count)
}
