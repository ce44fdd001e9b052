package transport

import (
	"fmt"
	"net"
)

// interfaceLister is net.Interfaces, swappable in tests.
var interfaceLister = net.Interfaces

// MulticastInterfaces returns the interfaces that are up and multicast capable.
// When names is non-empty only those interfaces are returned, and a name that
// does not exist is an error.
func MulticastInterfaces(names []string) ([]net.Interface, error) {
	all, err := interfaceLister()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	if len(names) > 0 {
		byName := make(map[string]net.Interface, len(all))
		for _, ifi := range all {
			byName[ifi.Name] = ifi
		}
		out := make([]net.Interface, 0, len(names))
		for _, name := range names {
			ifi, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("unknown interface %q", name)
			}
			out = append(out, ifi)
		}
		return out, nil
	}

	var out []net.Interface
	for _, ifi := range all {
		if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagMulticast == 0 {
			continue
		}
		out = append(out, ifi)
	}
	return out, nil
}
