// Package source provides the lookup backends that produce host
// records. The protocol layer treats a HostSource as a black box
// returning zero, one, or many records.
package source

import (
	"errors"
	"net"

	"github.com/hostwire/hostarc/pkg/hostent"
)

var (
	// ErrTryAgain marks a transient backend failure the caller may
	// retry.
	ErrTryAgain = errors.New("source temporarily unavailable")

	// ErrUnavailable marks a backend that cannot serve lookups at all.
	ErrUnavailable = errors.New("source unavailable")
)

// HostSource produces directory host records.
type HostSource interface {
	// AllHosts returns every record in enumeration order.
	AllHosts() ([]hostent.Host, error)

	// HostByName finds the record whose primary name or alias matches
	// name within the given address family.
	HostByName(name string, family hostent.Family) (hostent.Host, bool, error)

	// HostByAddr finds the record holding the given address.
	HostByAddr(ip net.IP) (hostent.Host, bool, error)
}

// Multi tries each source in order, first match wins. AllHosts
// concatenates in source order.
type Multi []HostSource

func (m Multi) AllHosts() ([]hostent.Host, error) {
	var all []hostent.Host
	for _, src := range m {
		hosts, err := src.AllHosts()
		if err != nil {
			return nil, err
		}
		all = append(all, hosts...)
	}
	return all, nil
}

func (m Multi) HostByName(name string, family hostent.Family) (hostent.Host, bool, error) {
	for _, src := range m {
		h, ok, err := src.HostByName(name, family)
		if err != nil || ok {
			return h, ok, err
		}
	}
	return hostent.Host{}, false, nil
}

func (m Multi) HostByAddr(ip net.IP) (hostent.Host, bool, error) {
	for _, src := range m {
		h, ok, err := src.HostByAddr(ip)
		if err != nil || ok {
			return h, ok, err
		}
	}
	return hostent.Host{}, false, nil
}
