package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/haukened/rr-mdns/internal/dns/common/log"
	"github.com/haukened/rr-mdns/internal/dns/config"
	"github.com/haukened/rr-mdns/internal/dns/domain"
	"github.com/haukened/rr-mdns/internal/dns/services/explorer"
)

// cli carries flag values and test seams for one command tree.
type cli struct {
	out  io.Writer
	deps appDeps

	configFile  string
	timeout     time.Duration
	domain      string
	interfaces  []string
	ipv4        bool
	ipv6        bool
	parallel    bool
	unicast     bool
	logLevel    string
	ignore      []string
	ignoreDB    string
	jsonOutput  bool
	metricsFile string
}

func newRootCmd(out io.Writer) *cobra.Command {
	return (&cli{out: out}).rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Browse DNS-SD services over multicast DNS",
		Long: `Browse DNS-SD services advertised over multicast DNS (RFC 6762, RFC 6763).

Without a command, every service type is enumerated on every multicast
interface and each type is then browsed for instances.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, modeExplore, nil)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(c.out)

	f := root.PersistentFlags()
	f.StringVar(&c.configFile, "config", "", "config file (yaml, json or toml); defaults to $"+config.FileEnv)
	f.DurationVar(&c.timeout, "timeout", config.DEFAULT_APP_CONFIG.Timeout, "collection window of each query round")
	f.StringVar(&c.domain, "domain", config.DEFAULT_APP_CONFIG.Domain, "domain appended to service types")
	f.StringSliceVarP(&c.interfaces, "interface", "i", nil, "interface to query (repeatable); default all multicast interfaces")
	f.BoolVar(&c.ipv4, "ipv4", true, "query over IPv4")
	f.BoolVar(&c.ipv6, "ipv6", false, "query over IPv6")
	f.BoolVar(&c.parallel, "parallel", false, "query interfaces concurrently")
	f.BoolVar(&c.unicast, "unicast", false, "ask responders to answer by unicast (QU bit)")
	f.StringVar(&c.logLevel, "log-level", config.DEFAULT_APP_CONFIG.LogLevel, "log level: debug, info, warn or error")
	f.StringSliceVar(&c.ignore, "ignore", nil, "service type or instance to hide; prefix with *. to hide everything below it")
	f.StringVar(&c.ignoreDB, "ignore-db", "", "bbolt file holding the ignore rules")
	f.BoolVar(&c.jsonOutput, "json", false, "print JSON instead of text")
	f.StringVar(&c.metricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")

	root.AddCommand(c.exploreCmd(), c.servicesCmd(), c.browseCmd())
	return root
}

func (c *cli) exploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "List every service type and its instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, modeExplore, nil)
		},
	}
}

func (c *cli) servicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List advertised service types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, modeServices, nil)
		},
	}
}

func (c *cli) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <service>",
		Short: "List instances of one service type",
		Example: `  rr-mdns browse _ipp._tcp
  rr-mdns browse _googlecast._tcp --timeout 5s --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := domain.ServiceFromName(args[0])
			if err != nil {
				return fmt.Errorf("invalid service %q: %w", args[0], err)
			}
			if svc.Name.IsRoot() {
				return fmt.Errorf("invalid service %q: empty name", args[0])
			}
			return c.run(cmd, modeBrowse, &svc)
		},
	}
}

// loadConfig layers changed flags over the file/env configuration.
func (c *cli) loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if c.configFile != "" {
		cfg, err = config.LoadFile(c.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.Timeout = c.timeout
	}
	if flags.Changed("domain") {
		cfg.Domain = c.domain
	}
	if flags.Changed("interface") {
		cfg.Interfaces = c.interfaces
	}
	if flags.Changed("ipv4") {
		cfg.IPv4 = c.ipv4
	}
	if flags.Changed("ipv6") {
		cfg.IPv6 = c.ipv6
	}
	if flags.Changed("parallel") {
		cfg.Parallel = c.parallel
	}
	if flags.Changed("unicast") {
		cfg.UnicastResponse = c.unicast
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if flags.Changed("ignore") {
		cfg.Ignore = append(cfg.Ignore, c.ignore...)
	}
	if flags.Changed("ignore-db") {
		cfg.IgnoreDB = c.ignoreDB
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *cli) run(cmd *cobra.Command, mode renderMode, service *domain.Service) error {
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := log.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logging configuration error: %w", err)
	}
	log.SetLogger(logger)

	app, err := buildApplication(cfg, logger, c.deps)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logger.Warn(map[string]any{"error": cerr.Error()}, "error closing application")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reports []explorer.InterfaceReport
	switch mode {
	case modeServices:
		reports, err = app.explorer.Services(ctx)
	case modeBrowse:
		reports, err = app.explorer.Browse(ctx, *service)
	default:
		reports, err = app.explorer.Explore(ctx)
	}

	if rerr := render(c.out, reports, mode, c.jsonOutput); rerr != nil {
		return rerr
	}
	if c.metricsFile != "" {
		if merr := app.metrics.WriteTextfile(c.metricsFile); merr != nil {
			logger.Warn(map[string]any{"error": merr.Error(), "path": c.metricsFile}, "failed to write metrics")
		}
	}
	return outcome(reports, err, logger)
}

// outcome decides the exit status. Interrupts are not failures, and an
// interface that failed is only fatal when every interface failed.
func outcome(reports []explorer.InterfaceReport, err error, logger log.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		logger.Info(nil, "interrupted")
		return nil
	}
	for _, r := range reports {
		if r.Err == nil {
			logger.Warn(map[string]any{"error": err.Error()}, "some interfaces failed")
			return nil
		}
	}
	return err
}
