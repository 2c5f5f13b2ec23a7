package raseed

import (
	"context"
	"fmt"
	"time"
)

// PassService reads wallet passes.
type PassService struct {
	svc passUseCase
	obs *observer
}

// List returns the wallet passes for one identity, newest-first.
func (s *PassService) List(ctx context.Context, userID string) (out []Pass, err error) {
	start := time.Now()
	defer func() { s.obs.observe("passes.list", start, err) }()

	passes, err := s.svc.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	out = make([]Pass, len(passes))
	for i, p := range passes {
		out[i] = fromDomainPass(p)
	}
	return out, nil
}
