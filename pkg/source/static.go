package source

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"github.com/hostwire/hostarc/pkg/hostent"
)

// StaticRecord is one configured directory entry. Addresses of both
// families may be declared together; they split into per-family records
// at build time.
type StaticRecord struct {
	Name    string
	Aliases []string
	Addrs   []string
}

// Static serves a fixed record set built once from configuration.
type Static struct {
	hosts []hostent.Host
}

func NewStatic(records []StaticRecord) (*Static, error) {
	var hosts []hostent.Host
	for _, r := range records {
		ips := make([]net.IP, 0, len(r.Addrs))
		for _, a := range r.Addrs {
			ip := net.ParseIP(a)
			if ip == nil {
				return nil, fmt.Errorf("record %q: unparsable address %q", r.Name, a)
			}
			ips = append(ips, ip)
		}

		name := strings.ToLower(r.Name)
		aliases := make([]string, len(r.Aliases))
		for i, a := range r.Aliases {
			aliases[i] = strings.ToLower(a)
		}

		for _, family := range []hostent.Family{hostent.FamilyV4, hostent.FamilyV6} {
			if addrs, ok := hostent.AddrsFromIPs(family, ips); ok {
				hosts = append(hosts, hostent.Host{
					Name:    name,
					Aliases: slices.Clone(aliases),
					Addrs:   addrs,
				})
			}
		}
	}
	return &Static{hosts: hosts}, nil
}

func (s *Static) AllHosts() ([]hostent.Host, error) {
	return slices.Clone(s.hosts), nil
}

func (s *Static) HostByName(name string, family hostent.Family) (hostent.Host, bool, error) {
	for _, h := range s.hosts {
		if h.Addrs.Family() != family {
			continue
		}
		if strings.EqualFold(h.Name, name) || slices.ContainsFunc(h.Aliases, func(a string) bool {
			return strings.EqualFold(a, name)
		}) {
			return h, true, nil
		}
	}
	return hostent.Host{}, false, nil
}

func (s *Static) HostByAddr(ip net.IP) (hostent.Host, bool, error) {
	for _, h := range s.hosts {
		for _, candidate := range h.IPs() {
			if candidate.Equal(ip) {
				return h, true, nil
			}
		}
	}
	return hostent.Host{}, false, nil
}
