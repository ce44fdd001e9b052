package domain

import "strings"

// ServiceQuery is the DNS-SD meta service whose PTR answers enumerate every
// service type advertised in a domain (RFC 6763 §9).
const ServiceQuery = "_services._dns-sd._udp"

// LocalDomain is the mDNS link-local domain.
var LocalDomain = MustParseName("local.")

// Service identifies a service type such as "_http._tcp".
// The name may also already carry its domain ("_http._tcp.local."), which is how
// service types come back from the meta query.
type Service struct {
	Name Name
}

// ServiceFromName parses a service type name.
func ServiceFromName(s string) (Service, error) {
	n, err := ParseName(s)
	if err != nil {
		return Service{}, err
	}
	return Service{Name: n}, nil
}

// MustService is ServiceFromName for constants; it panics on error.
func MustService(s string) Service {
	return Service{Name: MustParseName(s)}
}

// MetaService returns the service-type enumeration service.
func MetaService() Service { return MustService(ServiceQuery) }

// IsMeta reports whether s is the service-type enumeration service.
func (s Service) IsMeta() bool {
	return hasPrefix(s.Name, MetaService().Name)
}

// QueryName is the name asked about when querying s in domain.
// A service name that already ends in domain is used as is.
func (s Service) QueryName(domain Name) (Name, error) {
	if !domain.IsRoot() && s.Name.HasSuffix(domain) {
		return s.Name, nil
	}
	return s.Name.Concat(domain)
}

func (s Service) String() string { return s.Name.String() }

// hasPrefix reports whether the leftmost labels of n equal prefix.
func hasPrefix(n, prefix Name) bool {
	if n.Len() < prefix.Len() {
		return false
	}
	for i := 0; i < prefix.Len(); i++ {
		if !strings.EqualFold(n.Label(i), prefix.Label(i)) {
			return false
		}
	}
	return true
}
