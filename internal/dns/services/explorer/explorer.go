// Package explorer drives discovery across interfaces: it enumerates service
// types with the DNS-SD meta query and then browses each type in turn.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/haukened/rr-mdns/internal/dns/common/log"
	"github.com/haukened/rr-mdns/internal/dns/domain"
	"github.com/haukened/rr-mdns/internal/dns/gateways/transport"
	"github.com/haukened/rr-mdns/internal/dns/services/discovery"
)

// DefaultMaxParallel caps the interfaces queried at once in parallel mode.
const DefaultMaxParallel = 8

// Explorer runs discovery rounds on every selected interface and family.
type Explorer struct {
	domain      domain.Name
	families    []transport.Family
	interfaces  []string
	parallel    bool
	maxParallel int
	ignore      IgnoreList
	factory     transport.Factory
	lister      InterfaceLister
	round       Round
	logger      log.Logger
}

// Options configures an Explorer. Zero fields take the defaults noted below.
type Options struct {
	// Domain is appended to every service type; domain.LocalDomain when zero.
	Domain domain.Name
	// Families to query on each interface; IPv4 only when empty.
	Families []transport.Family
	// Interfaces restricts discovery to the named interfaces; empty means
	// every interface that is up and multicast capable.
	Interfaces  []string
	Parallel    bool
	MaxParallel int

	Query   discovery.Options
	Ignore  IgnoreList
	Factory transport.Factory
	Lister  InterfaceLister
	Round   Round
	Logger  log.Logger
}

// NewExplorer returns an Explorer over real multicast sockets unless Factory,
// Lister or Round replace them.
func NewExplorer(opts Options) *Explorer {
	e := &Explorer{
		domain:      opts.Domain,
		families:    opts.Families,
		interfaces:  opts.Interfaces,
		parallel:    opts.Parallel,
		maxParallel: opts.MaxParallel,
		ignore:      opts.Ignore,
		factory:     opts.Factory,
		lister:      opts.Lister,
		round:       opts.Round,
		logger:      opts.Logger,
	}
	if e.domain.IsRoot() {
		e.domain = domain.LocalDomain
	}
	if len(e.families) == 0 {
		e.families = []transport.Family{transport.FamilyIPv4}
	}
	if e.maxParallel <= 0 {
		e.maxParallel = DefaultMaxParallel
	}
	if e.logger == nil {
		e.logger = log.NewNoopLogger()
	}
	if e.ignore == nil {
		e.ignore = keepAll{}
	}
	if e.factory == nil {
		e.factory = transport.NewFactory(e.logger)
	}
	if e.lister == nil {
		e.lister = transport.MulticastInterfaces
	}
	if e.round == nil {
		e.round = queryRound(e.domain, opts.Query)
	}
	return e
}

// queryRound adapts discovery.Query to Round.
func queryRound(dom domain.Name, qopts discovery.Options) Round {
	return func(ctx context.Context, tr transport.Transport, service domain.Service) ([]domain.Instance, error) {
		q, err := discovery.NewQuery(service, dom, qopts)
		if err != nil {
			return nil, err
		}
		return q.RunOnce(ctx, tr)
	}
}

// Explore enumerates service types on every interface and browses each one
// that the ignore list keeps.
func (e *Explorer) Explore(ctx context.Context) ([]InterfaceReport, error) {
	return e.run(ctx, func(ctx context.Context, tr transport.Transport, logger log.Logger) ([]ServiceReport, error) {
		services, err := e.serviceTypes(ctx, tr, logger)
		reports := make([]ServiceReport, 0, len(services))
		if err != nil {
			for _, svc := range services {
				reports = append(reports, ServiceReport{Service: svc})
			}
			return reports, err
		}
		for _, svc := range services {
			instances, err := e.instances(ctx, tr, svc, logger)
			reports = append(reports, ServiceReport{Service: svc, Instances: instances})
			if err != nil {
				return reports, err
			}
		}
		return reports, nil
	})
}

// Services enumerates service types only.
func (e *Explorer) Services(ctx context.Context) ([]InterfaceReport, error) {
	return e.run(ctx, func(ctx context.Context, tr transport.Transport, logger log.Logger) ([]ServiceReport, error) {
		services, err := e.serviceTypes(ctx, tr, logger)
		reports := make([]ServiceReport, 0, len(services))
		for _, svc := range services {
			reports = append(reports, ServiceReport{Service: svc})
		}
		return reports, err
	})
}

// Browse queries one service type on every interface. The ignore list is
// applied to instances but not to service itself: asking for it is explicit.
func (e *Explorer) Browse(ctx context.Context, service domain.Service) ([]InterfaceReport, error) {
	return e.run(ctx, func(ctx context.Context, tr transport.Transport, logger log.Logger) ([]ServiceReport, error) {
		instances, err := e.instances(ctx, tr, service, logger)
		return []ServiceReport{{Service: service, Instances: instances}}, err
	})
}

type target struct {
	iface  net.Interface
	family transport.Family
}

type work func(ctx context.Context, tr transport.Transport, logger log.Logger) ([]ServiceReport, error)

// run executes fn once per interface and family. Per-target failures are
// recorded on the report and combined into the returned error; cancellation of
// ctx stops all targets.
func (e *Explorer) run(ctx context.Context, fn work) ([]InterfaceReport, error) {
	ifaces, err := e.lister(e.interfaces)
	if err != nil {
		return nil, err
	}
	targets := make([]target, 0, len(ifaces)*len(e.families))
	for _, ifi := range ifaces {
		for _, fam := range e.families {
			targets = append(targets, target{iface: ifi, family: fam})
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no multicast interfaces available", domain.ErrTransport)
	}

	reports := make([]InterfaceReport, len(targets))
	if e.parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.maxParallel)
		for i, t := range targets {
			g.Go(func() error {
				reports[i] = e.runTarget(gctx, t, fn)
				return ctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return reports, err
		}
	} else {
		for i, t := range targets {
			reports[i] = e.runTarget(ctx, t, fn)
			if err := ctx.Err(); err != nil {
				return reports[:i+1], err
			}
		}
	}

	var errs error
	for _, r := range reports {
		multierr.AppendInto(&errs, r.Err)
	}
	return reports, errs
}

func (e *Explorer) runTarget(ctx context.Context, t target, fn work) (report InterfaceReport) {
	report = InterfaceReport{Interface: t.iface.Name, Family: t.family}
	logger := log.WithFields(e.logger, map[string]any{"iface": t.iface.Name, "family": string(t.family)})

	iface := t.iface
	tr, err := e.factory(t.family, &iface)
	if err != nil {
		logger.Warn(map[string]any{"error": err.Error()}, "transport open failed")
		report.Err = fmt.Errorf("%s/%s: %w", t.iface.Name, t.family, err)
		return report
	}
	defer func() {
		if cerr := tr.Close(); cerr != nil {
			report.Err = multierr.Append(report.Err, fmt.Errorf("%s/%s: close: %w", t.iface.Name, t.family, cerr))
		}
	}()

	logger.Debug(map[string]any{"local": fmt.Sprint(tr.LocalAddr())}, "exploring interface")
	services, err := fn(ctx, tr, logger)
	report.Services = services
	if err != nil && !isContextErr(err) {
		report.Err = fmt.Errorf("%s/%s: %w", t.iface.Name, t.family, err)
	}
	return report
}

// serviceTypes runs the meta query and drops ignored types.
func (e *Explorer) serviceTypes(ctx context.Context, tr transport.Transport, logger log.Logger) ([]domain.Service, error) {
	found, err := e.round(ctx, tr, domain.MetaService())
	services := discovery.ServiceTypes(found)
	kept := services[:0]
	for _, svc := range services {
		if dec := e.ignore.Decide(svc.Name.String()); dec.Ignored {
			logger.Debug(map[string]any{"service": svc.String(), "rule": dec.MatchedRule, "source": dec.Source}, "service ignored")
			continue
		}
		kept = append(kept, svc)
	}
	logger.Debug(map[string]any{"found": len(services), "kept": len(kept)}, "service types discovered")
	return kept, err
}

// instances browses service and drops ignored instances.
func (e *Explorer) instances(ctx context.Context, tr transport.Transport, service domain.Service, logger log.Logger) ([]domain.Instance, error) {
	found, err := e.round(ctx, tr, service)
	kept := found[:0]
	for _, inst := range found {
		if dec := e.ignore.Decide(inst.FullName.String()); dec.Ignored {
			logger.Debug(map[string]any{"instance": inst.FullName.String(), "rule": dec.MatchedRule}, "instance ignored")
			continue
		}
		kept = append(kept, inst)
	}
	return kept, err
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

type keepAll struct{}

func (keepAll) Decide(string) domain.IgnoreDecision { return domain.KeepDecision() }
