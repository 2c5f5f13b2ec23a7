package raseed

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbRedis "github.com/raseed-cloud/raseed/internal/db/redis"
	"github.com/raseed-cloud/raseed/internal/domain/notice"
	"github.com/raseed-cloud/raseed/internal/domain/pass"
	domrcpt "github.com/raseed-cloud/raseed/internal/domain/receipt"
	passrepo "github.com/raseed-cloud/raseed/internal/repository/pass"
	receiptrepo "github.com/raseed-cloud/raseed/internal/repository/receipt"
	batchuc "github.com/raseed-cloud/raseed/internal/usecase/batch"
	"github.com/raseed-cloud/raseed/internal/usecase/embedding"
	healthuc "github.com/raseed-cloud/raseed/internal/usecase/health"
	queryuc "github.com/raseed-cloud/raseed/internal/usecase/query"
	receiptuc "github.com/raseed-cloud/raseed/internal/usecase/receipt"
	walletuc "github.com/raseed-cloud/raseed/internal/usecase/wallet"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces so tests can substitute the use cases.
type receiptUseCase interface {
	Ingest(ctx context.Context, in receiptuc.Input) (domrcpt.Receipt, *pass.Pass, error)
	Get(ctx context.Context, id string) (domrcpt.Receipt, error)
	List(ctx context.Context, userID, cursor string, limit int) ([]domrcpt.Receipt, int, string, error)
}

type batchUseCase interface {
	Ingest(ctx context.Context, items []receiptuc.Input) []batchuc.Result
}

type queryUseCase interface {
	Ask(ctx context.Context, identity, question string, emit func(notice.Notice)) (*queryuc.Result, error)
}

type passUseCase interface {
	ListForUser(ctx context.Context, identity string) ([]pass.Pass, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the raseed SDK entry point.
type Client struct {
	store      *dbRedis.Store
	receiptSvc receiptUseCase
	batchSvc   batchUseCase
	querySvc   queryUseCase
	passSvc    passUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a raseed Client and connects to the database. The provided
// context bounds the initial readiness check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: "raseed:",
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("raseed: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("raseed: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("raseed: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(ctx context.Context, store *dbRedis.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	receiptRepo := receiptrepo.New(store, cfg.keyPrefix)
	passRepo := passrepo.New(store, cfg.keyPrefix)
	if err := receiptRepo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("raseed: create receipt index: %w", err)
	}
	if err := passRepo.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("raseed: create pass index: %w", err)
	}

	// Generator: noop if not configured (ingestion works, queries degrade
	// to owner-scoped fallback filters).
	var gen queryuc.Generator = noopGenerator{}
	if cfg.generator != nil {
		gen = cfg.generator
	}

	walletSvc := walletuc.New(passRepo, cfg.walletIssuerID, cfg.walletClassSuffix)
	receiptSvc := receiptuc.New(receiptRepo, embedding.NewHashEmbedder(), walletSvc)
	batchSvc := batchuc.New(receiptSvc)
	if cfg.maxBatchSize > 0 {
		batchSvc = batchSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}
	querySvc := queryuc.New(gen, receiptRepo)
	healthSvc := healthuc.New(store, nil)

	return &Client{
		store:      store,
		receiptSvc: receiptSvc,
		batchSvc:   batchSvc,
		querySvc:   querySvc,
		passSvc:    walletSvc,
		healthSvc:  healthSvc,
		obs:        obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Receipts returns the receipt service.
func (c *Client) Receipts() *ReceiptService {
	return &ReceiptService{svc: c.receiptSvc, batchSvc: c.batchSvc, obs: c.obs}
}

// Passes returns the wallet pass service.
func (c *Client) Passes() *PassService {
	return &PassService{svc: c.passSvc, obs: c.obs}
}

// noopGenerator fails every generation call (used when no generator is
// configured); the pipeline then falls back to owner-scoped filters.
type noopGenerator struct{}

func (noopGenerator) Generate(_ context.Context, _ string) (string, error) {
	return "", errors.New("raseed: generator not configured (use WithGenerator)")
}
