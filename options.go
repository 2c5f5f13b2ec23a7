package raseed

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Generator produces text completions for the query pipeline.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	keyPrefix string

	generator Generator

	walletIssuerID    string
	walletClassSuffix string

	maxBatchSize int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix namespaces all keys and index names. Default: "raseed:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	})
}

// WithGenerator sets the text generation provider used by Ask.
// Without it, queries run in degraded mode (owner-scoped fallback filter,
// count-style answer).
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithWallet sets the Google Wallet issuer ID and pass class suffix used
// when building save links.
func WithWallet(issuerID, classSuffix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.walletIssuerID = issuerID
		c.walletClassSuffix = classSuffix
	})
}

// WithMaxBatchSize sets the maximum number of receipts per batch ingest.
// Default: 100.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
