package explorer

import (
	"context"
	"net"

	"github.com/haukened/rr-mdns/internal/dns/domain"
	"github.com/haukened/rr-mdns/internal/dns/gateways/transport"
)

// IgnoreList hides service types and instances from reports.
// ignorelist.Repository satisfies it.
type IgnoreList interface {
	Decide(name string) domain.IgnoreDecision
}

// Round runs one query round for service over tr.
// The default implementation builds a discovery.Query per call.
type Round func(ctx context.Context, tr transport.Transport, service domain.Service) ([]domain.Instance, error)

// InterfaceLister resolves the interfaces to query; transport.MulticastInterfaces by default.
type InterfaceLister func(names []string) ([]net.Interface, error)

// ServiceReport lists the instances of one service type.
type ServiceReport struct {
	Service   domain.Service
	Instances []domain.Instance
}

// InterfaceReport is everything discovered through one interface and family.
type InterfaceReport struct {
	Interface string
	Family    transport.Family
	Services  []ServiceReport
	// Err is set when this interface failed part way; Services then holds what
	// was gathered before the failure.
	Err error
}
