package domain

import (
	"fmt"
	"net/netip"
	"sort"
	"strings"
)

// HostAddress is one resolved address of an instance's target host.
type HostAddress struct {
	Host string
	IP   netip.Addr
}

func (h HostAddress) String() string {
	if h.Host == "" {
		return h.IP.String()
	}
	return h.Host + " " + h.IP.String()
}

// Instance is one discovered service endpoint, assembled from the PTR, SRV, TXT
// and address records of a single query round.
//
// Identity is FullName: two instances with equal Key describe the same endpoint.
// An instance whose SRV record never arrived keeps a root Host and a zero Port.
type Instance struct {
	FullName   Name
	Name       string // user-visible label, see PTR.UserVisibleName
	Service    Name   // the name that was queried
	Domain     Name
	Host       Name
	Port       uint16
	Priority   uint16
	Weight     uint16
	Addresses  []HostAddress
	Attributes map[string]string
}

// Key is the case-folded full name used for deduplication.
func (i Instance) Key() string { return i.FullName.Canonical() }

// HasLocation reports whether an SRV record supplied a host and port.
func (i Instance) HasLocation() bool { return !i.Host.IsRoot() }

// AttributeKeys returns the attribute keys in sorted order.
func (i Instance) AttributeKeys() []string {
	keys := make([]string, 0, len(i.Attributes))
	for k := range i.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (i Instance) String() string {
	addrs := make([]string, 0, len(i.Addresses))
	for _, a := range i.Addresses {
		addrs = append(addrs, a.String())
	}
	s := fmt.Sprintf("%s [%s] port %d", i.FullName, strings.Join(addrs, ", "), i.Port)
	if len(i.Attributes) > 0 {
		attrs := make([]string, 0, len(i.Attributes))
		for _, k := range i.AttributeKeys() {
			attrs = append(attrs, k+" = "+i.Attributes[k])
		}
		s += " attributes: " + strings.Join(attrs, ", ")
	}
	return s
}
