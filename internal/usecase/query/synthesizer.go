package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/raseed-cloud/raseed/internal/domain"
	"github.com/raseed-cloud/raseed/internal/domain/query/filter"
	"github.com/raseed-cloud/raseed/internal/domain/receipt"
	"github.com/raseed-cloud/raseed/internal/logger"
	"github.com/raseed-cloud/raseed/internal/metrics"
)

// synthesizeFilter asks the model for a structured filter and parses the
// reply. Any failure falls back to the owner-only filter; synthesis never
// fails the pipeline.
func (s *Service) synthesizeFilter(ctx context.Context, identity, question string) filter.Filter {
	log := logger.FromContext(ctx)

	raw, err := s.gen.Generate(ctx, filterPrompt(identity, question, s.now()))
	if err != nil {
		log.Warn("filter synthesis failed, falling back to owner filter",
			zap.Error(fmt.Errorf("%w: %v", domain.ErrFilterSynthesis, err)))
		metrics.QueryFallbacksTotal.WithLabelValues("filter").Inc()
		return filter.Owner(receipt.FieldUserID, identity)
	}

	obj, err := parseLiteral(stripCodeFence(raw))
	if err != nil {
		log.Warn("filter synthesis produced unparsable output, falling back to owner filter",
			zap.Error(fmt.Errorf("%w: %v", domain.ErrFilterSynthesis, err)),
			zap.String("raw", raw))
		metrics.QueryFallbacksTotal.WithLabelValues("filter").Inc()
		return filter.Owner(receipt.FieldUserID, identity)
	}

	f, droppedOps := filterFromLiteral(obj)
	if len(droppedOps) > 0 {
		log.Warn("dropped unsupported filter operators", zap.Strings("dropped", droppedOps))
		metrics.QueryDroppedClausesTotal.WithLabelValues("parse").Add(float64(len(droppedOps)))
	}

	// First enforcement checkpoint: the model is instructed to include the
	// owner clause but is never trusted to.
	f.Set(receipt.FieldUserID, filter.Literal(identity))
	return f
}

// filterFromLiteral converts a parsed object literal into a filter. Nested
// objects are read as operator clauses; unrecognized operators are dropped
// and reported.
func filterFromLiteral(obj *literalObject) (filter.Filter, []string) {
	f := filter.New()
	var dropped []string

	for _, field := range obj.keys {
		switch v := obj.vals[field].(type) {
		case *literalObject:
			var conds []filter.Condition
			for _, tok := range v.keys {
				op, ok := filter.ParseOp(tok)
				if !ok {
					dropped = append(dropped, field+"."+tok)
					continue
				}
				conds = append(conds, filter.Condition{Op: op, Value: liftLiteral(v.vals[tok])})
			}
			if len(conds) > 0 {
				f.Set(field, filter.Ops(conds...))
			}
		default:
			f.Set(field, filter.Literal(liftLiteral(v)))
		}
	}
	return f, dropped
}

// liftLiteral flattens nested literal objects into plain maps so clause
// values hold only JSON-shaped data.
func liftLiteral(v any) any {
	switch t := v.(type) {
	case *literalObject:
		m := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			m[k] = liftLiteral(t.vals[k])
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = liftLiteral(e)
		}
		return out
	default:
		return v
	}
}
