package transport

import (
	"fmt"
	"net"

	"github.com/haukened/rr-mdns/internal/dns/common/log"
	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// Factory opens a transport for one interface and family. The explorer takes a
// Factory so tests can substitute scripted transports.
type Factory func(family Family, iface *net.Interface) (Transport, error)

// NewTransport creates a new transport for the given family, scoped to iface.
func NewTransport(family Family, iface *net.Interface, logger log.Logger) (Transport, error) {
	switch family {
	case FamilyIPv4, FamilyIPv6:
		return NewMulticastTransport(Options{
			Family:    family,
			Interface: iface,
			Logger:    logger,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported transport family: %s", domain.ErrTransport, family)
	}
}

// NewFactory binds a logger into a Factory backed by NewTransport.
func NewFactory(logger log.Logger) Factory {
	return func(family Family, iface *net.Interface) (Transport, error) {
		return NewTransport(family, iface, logger)
	}
}

// GetSupportedFamilies returns the families NewTransport accepts.
func GetSupportedFamilies() []Family {
	return []Family{
		FamilyIPv4,
		FamilyIPv6,
	}
}

// IsFamilySupported checks if a given family is currently supported.
func IsFamilySupported(family Family) bool {
	for _, f := range GetSupportedFamilies() {
		if f == family {
			return true
		}
	}
	return false
}
