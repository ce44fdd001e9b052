// Rr-mdns browses DNS-SD services advertised over multicast DNS.
//
// Usage:
//
//	rr-mdns [command] [flags]
//
// Running without a command explores every service type on every interface.
package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"

	"github.com/haukened/rr-mdns/internal/dns/common/clock"
	"github.com/haukened/rr-mdns/internal/dns/common/log"
	"github.com/haukened/rr-mdns/internal/dns/common/metrics"
	"github.com/haukened/rr-mdns/internal/dns/config"
	"github.com/haukened/rr-mdns/internal/dns/domain"
	"github.com/haukened/rr-mdns/internal/dns/gateways/transport"
	"github.com/haukened/rr-mdns/internal/dns/gateways/wire"
	"github.com/haukened/rr-mdns/internal/dns/repos/ignorelist"
	"github.com/haukened/rr-mdns/internal/dns/repos/ignorelist/bloom"
	"github.com/haukened/rr-mdns/internal/dns/repos/ignorelist/bolt"
	"github.com/haukened/rr-mdns/internal/dns/repos/ignorelist/lru"
	"github.com/haukened/rr-mdns/internal/dns/repos/ignorelist/parsers"
	"github.com/haukened/rr-mdns/internal/dns/services/discovery"
	"github.com/haukened/rr-mdns/internal/dns/services/explorer"
)

const (
	version = "0.1.0-dev"
	appName = "rr-mdns"

	// bloomFPRate is the target false-positive rate of the ignore-list pre-filter.
	bloomFPRate = 0.01
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Application holds the wired components for one CLI invocation.
type Application struct {
	config   *config.AppConfig
	explorer *explorer.Explorer
	ignore   ignorelist.Repository
	metrics  *metrics.Metrics
	logger   log.Logger
	closers  []func() error
}

// Close releases the ignore-list store.
func (app *Application) Close() error {
	var err error
	for _, c := range app.closers {
		err = multierr.Append(err, c())
	}
	return err
}

// appDeps are the network seams; zero values select real sockets and interfaces.
type appDeps struct {
	factory transport.Factory
	lister  explorer.InterfaceLister
}

// buildApplication constructs all components and wires them together.
func buildApplication(cfg *config.AppConfig, logger log.Logger, deps appDeps) (*Application, error) {
	app := &Application{
		config:  cfg,
		metrics: metrics.New(),
		logger:  logger,
	}

	repo, closer, err := buildIgnoreList(cfg, logger, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to build ignore list: %w", err)
	}
	app.ignore = repo
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	factory := deps.factory
	if factory == nil {
		factory = transport.NewFactory(logger)
	}

	app.explorer = explorer.NewExplorer(explorer.Options{
		Domain:     cfg.DomainName(),
		Families:   families(cfg),
		Interfaces: cfg.Interfaces,
		Parallel:   cfg.Parallel,
		Query: discovery.Options{
			Timeout:         cfg.Timeout,
			UnicastResponse: cfg.UnicastResponse,
			Codec:           wire.NewUDPCodec(logger),
			Logger:          logger,
			Clock:           clock.RealClock{},
			Metrics:         app.metrics,
		},
		Ignore:  repo,
		Factory: factory,
		Lister:  deps.lister,
		Logger:  logger,
	})

	logger.Debug(map[string]any{
		"domain":     cfg.Domain,
		"timeout":    cfg.Timeout.String(),
		"ipv4":       cfg.IPv4,
		"ipv6":       cfg.IPv6,
		"interfaces": cfg.Interfaces,
		"parallel":   cfg.Parallel,
	}, "application configured")
	return app, nil
}

func families(cfg *config.AppConfig) []transport.Family {
	var out []transport.Family
	if cfg.IPv4 {
		out = append(out, transport.FamilyIPv4)
	}
	if cfg.IPv6 {
		out = append(out, transport.FamilyIPv6)
	}
	return out
}

// buildIgnoreList loads inline and file rules into a bloom → lru → store
// repository. With no rules configured it returns a repository that keeps everything.
func buildIgnoreList(cfg *config.AppConfig, logger log.Logger, now time.Time) (ignorelist.Repository, func() error, error) {
	rules, err := loadIgnoreRules(cfg, logger, now)
	if err != nil {
		return nil, nil, err
	}
	if len(rules) == 0 && cfg.IgnoreDB == "" {
		return ignorelist.NoopRepository{}, nil, nil
	}

	var (
		store  ignorelist.Store
		closer func() error
	)
	if cfg.IgnoreDB != "" {
		store, err = bolt.New(cfg.IgnoreDB)
		if err != nil {
			return nil, nil, fmt.Errorf("open ignore db %s: %w", cfg.IgnoreDB, err)
		}
		closer = store.Close
	} else {
		store = ignorelist.NewMemoryStore()
	}

	cache, err := lru.New(cfg.IgnoreCacheSize)
	if err != nil {
		if closer != nil {
			err = multierr.Append(err, closer())
		}
		return nil, nil, err
	}

	repo := ignorelist.NewRepository(store, cache, bloom.NewFactory(), bloomFPRate)
	if err := repo.UpdateAll(rules, uint64(now.Unix()), now.Unix()); err != nil {
		if closer != nil {
			err = multierr.Append(err, closer())
		}
		return nil, nil, fmt.Errorf("load ignore rules: %w", err)
	}
	logger.Info(map[string]any{"rules": len(rules), "db": cfg.IgnoreDB}, "ignore list loaded")
	return repo, closer, nil
}

// loadIgnoreRules merges inline patterns with every ignore file.
func loadIgnoreRules(cfg *config.AppConfig, logger log.Logger, now time.Time) ([]domain.IgnoreRule, error) {
	rules, err := parsers.ParsePatterns(cfg.Ignore, "config", now)
	if err != nil {
		return nil, err
	}
	for _, path := range cfg.IgnoreFiles {
		fileRules, err := parseIgnoreFile(path, logger, now)
		if err != nil {
			return nil, err
		}
		rules = append(rules, fileRules...)
	}
	return rules, nil
}

func parseIgnoreFile(path string, logger log.Logger, now time.Time) ([]domain.IgnoreRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ignore file: %w", err)
	}
	defer f.Close()
	return parsers.ParsePlainList(f, path, logger, now)
}
