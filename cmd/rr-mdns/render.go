package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/haukened/rr-mdns/internal/dns/domain"
	"github.com/haukened/rr-mdns/internal/dns/services/explorer"
)

type renderMode int

const (
	modeExplore renderMode = iota
	modeServices
	modeBrowse
)

func render(w io.Writer, reports []explorer.InterfaceReport, mode renderMode, asJSON bool) error {
	if asJSON {
		return renderJSON(w, reports)
	}
	return renderText(w, reports, mode)
}

// renderText prints one block per interface:
//
//	Interface eth0 (udp4):
//	Discovered service _ipp._tcp.local.:
//	 - [printer.local. 192.168.1.20] port 631 attributes: rp = ipp/print
func renderText(w io.Writer, reports []explorer.InterfaceReport, mode renderMode) error {
	var b strings.Builder
	for _, r := range reports {
		fmt.Fprintf(&b, "Interface %s (%s):\n", r.Interface, r.Family)
		if r.Err != nil {
			fmt.Fprintf(&b, "  error: %v\n", r.Err)
		}
		if len(r.Services) == 0 && r.Err == nil {
			b.WriteString("  no services found\n")
		}
		for _, s := range r.Services {
			if mode == modeServices {
				fmt.Fprintf(&b, "  %s\n", s.Service)
				continue
			}
			fmt.Fprintf(&b, "Discovered service %s:\n", s.Service)
			for _, inst := range s.Instances {
				b.WriteString(instanceLine(inst))
				b.WriteByte('\n')
			}
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func instanceLine(inst domain.Instance) string {
	addrs := make([]string, 0, len(inst.Addresses))
	for _, a := range inst.Addresses {
		addrs = append(addrs, a.String())
	}
	line := fmt.Sprintf(" - [%s] port %d", strings.Join(addrs, ", "), inst.Port)
	if len(inst.Attributes) > 0 {
		attrs := make([]string, 0, len(inst.Attributes))
		for _, k := range inst.AttributeKeys() {
			attrs = append(attrs, k+" = "+inst.Attributes[k])
		}
		line += " attributes: " + strings.Join(attrs, ", ")
	}
	return line
}

type jsonReport struct {
	Interface string        `json:"interface"`
	Family    string        `json:"family"`
	Error     string        `json:"error,omitempty"`
	Services  []jsonService `json:"services"`
}

type jsonService struct {
	Service   string         `json:"service"`
	Instances []jsonInstance `json:"instances,omitempty"`
}

type jsonInstance struct {
	Name       string            `json:"name"`
	FullName   string            `json:"full_name"`
	Host       string            `json:"host,omitempty"`
	Port       uint16            `json:"port"`
	Priority   uint16            `json:"priority"`
	Weight     uint16            `json:"weight"`
	Addresses  []string          `json:"addresses"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func renderJSON(w io.Writer, reports []explorer.InterfaceReport) error {
	out := make([]jsonReport, 0, len(reports))
	for _, r := range reports {
		jr := jsonReport{Interface: r.Interface, Family: string(r.Family), Services: []jsonService{}}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		for _, s := range r.Services {
			js := jsonService{Service: s.Service.String()}
			for _, inst := range s.Instances {
				ji := jsonInstance{
					Name:       inst.Name,
					FullName:   inst.FullName.String(),
					Port:       inst.Port,
					Priority:   inst.Priority,
					Weight:     inst.Weight,
					Addresses:  make([]string, 0, len(inst.Addresses)),
					Attributes: inst.Attributes,
				}
				if inst.HasLocation() {
					ji.Host = inst.Host.String()
				}
				for _, a := range inst.Addresses {
					ji.Addresses = append(ji.Addresses, a.IP.String())
				}
				js.Instances = append(js.Instances, ji)
			}
			jr.Services = append(jr.Services, js)
		}
		out = append(out, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
