package discovery

import (
	"net/netip"
	"sort"

	"github.com/haukened/rr-mdns/internal/dns/domain"
)

// index holds the per-round join tables, keyed by canonical owner name.
type index struct {
	srv   map[string]domain.SRV
	txt   map[string]domain.TXT
	addrs map[string]map[netip.Addr]domain.HostAddress
}

func newIndex() *index {
	return &index{
		srv:   make(map[string]domain.SRV),
		txt:   make(map[string]domain.TXT),
		addrs: make(map[string]map[netip.Addr]domain.HostAddress),
	}
}

func (ix *index) addAddress(owner domain.Name, ip netip.Addr) {
	key := owner.Canonical()
	set, ok := ix.addrs[key]
	if !ok {
		set = make(map[netip.Addr]domain.HostAddress)
		ix.addrs[key] = set
	}
	set[ip] = domain.HostAddress{Host: owner.String(), IP: ip}
}

func (ix *index) addresses(host domain.Name) []domain.HostAddress {
	set := ix.addrs[host.Canonical()]
	if len(set) == 0 {
		return nil
	}
	out := make([]domain.HostAddress, 0, len(set))
	for _, a := range set {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IP.Less(out[j].IP) })
	return out
}

// Aggregate joins the records of one round into instances of the service
// whose query name is question, in domain dom.
//
// PTR records owned by question whose target lies in dom name the instances. SRV and TXT records are
// looked up by instance name, addresses by the SRV target. Withdrawn records
// (TTL 0) and records outside class IN are ignored. When a name repeats, the
// last SRV and TXT seen win and addresses are merged. An instance without SRV
// is still returned, with no host or port.
//
// The result is sorted by full name and does not depend on record order
// beyond the last-write-wins rule.
func Aggregate(question, dom domain.Name, records []domain.Record) []domain.Instance {
	ix := newIndex()
	var (
		targets []domain.Name
		seen    = make(map[string]bool)
	)

	for _, rr := range records {
		if rr.IsGoodbye() || rr.Class != domain.RRClassIN {
			continue
		}
		switch data := rr.Data.(type) {
		case domain.PTR:
			if !rr.Name.Equal(question) || data.Target.IsRoot() || !data.Target.HasSuffix(dom) {
				continue
			}
			key := data.Target.Canonical()
			if !seen[key] {
				seen[key] = true
				targets = append(targets, data.Target)
			}
		case domain.SRV:
			ix.srv[rr.Name.Canonical()] = data
		case domain.TXT:
			ix.txt[rr.Name.Canonical()] = data
		case domain.A:
			ix.addAddress(rr.Name, data.Addr)
		case domain.AAAA:
			ix.addAddress(rr.Name, data.Addr)
		}
	}

	instances := make([]domain.Instance, 0, len(targets))
	for _, target := range targets {
		key := target.Canonical()
		inst := domain.Instance{
			FullName:   target,
			Name:       domain.PTR{Target: target}.UserVisibleName(question),
			Service:    question,
			Domain:     dom,
			Attributes: map[string]string{},
		}
		if srv, ok := ix.srv[key]; ok {
			inst.Host = srv.Target
			inst.Port = srv.Port
			inst.Priority = srv.Priority
			inst.Weight = srv.Weight
			inst.Addresses = ix.addresses(srv.Target)
		}
		if txt, ok := ix.txt[key]; ok {
			inst.Attributes = txt.Attributes()
		}
		instances = append(instances, inst)
	}

	sort.Slice(instances, func(i, j int) bool { return instances[i].Key() < instances[j].Key() })
	return instances
}

// ServiceTypes reads the result of a meta query as service types.
// The meta service itself is dropped if a responder lists it.
func ServiceTypes(instances []domain.Instance) []domain.Service {
	out := make([]domain.Service, 0, len(instances))
	for _, inst := range instances {
		svc := domain.Service{Name: inst.FullName}
		if svc.IsMeta() {
			continue
		}
		out = append(out, svc)
	}
	return out
}
