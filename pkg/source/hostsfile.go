package source

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hostwire/hostarc/pkg/hostent"
)

// File serves records out of a hosts(5) format file. Lines of the same
// primary name and family are merged into one record; records keep
// first-appearance order for enumeration. The parsed snapshot is
// guarded for concurrent lookups and replaced wholesale on Reload.
type File struct {
	logger *zap.Logger
	path   string

	mu    sync.RWMutex
	hosts []hostent.Host
}

func NewFile(logger *zap.Logger, path string) (*File, error) {
	f := &File{
		logger: logger,
		path:   path,
	}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Reload re-reads the backing file and swaps in the new snapshot. The
// previous snapshot keeps serving until the parse succeeds.
func (f *File) Reload() error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("opening hosts file: %w", err)
	}
	defer file.Close()

	hosts := f.parse(file)

	f.mu.Lock()
	f.hosts = hosts
	f.mu.Unlock()

	f.logger.Info("hosts file loaded",
		zap.String("path", f.path),
		zap.Int("records", len(hosts)))

	return nil
}

func (f *File) AllHosts() ([]hostent.Host, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.hosts), nil
}

func (f *File) HostByName(name string, family hostent.Family) (hostent.Host, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, h := range f.hosts {
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

func (f *File) HostByAddr(ip net.IP) (hostent.Host, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, h := range f.hosts {
		for _, candidate := range h.IPs() {
			if candidate.Equal(ip) {
				return h, true, nil
			}
		}
	}
	return hostent.Host{}, false, nil
}

func (f *File) parse(file *os.File) []hostent.Host {
	type key struct {
		name   string
		family hostent.Family
	}

	var hosts []hostent.Host
	index := make(map[key]int)

	scanner := bufio.NewScanner(file)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			f.logger.Warn("skipping hosts line without a name",
				zap.String("path", f.path), zap.Int("line", lineno))
			continue
		}

		ip := net.ParseIP(fields[0])
		if ip == nil {
			f.logger.Warn("skipping hosts line with unparsable address",
				zap.String("path", f.path), zap.Int("line", lineno),
				zap.String("addr", fields[0]))
			continue
		}

		family := hostent.FamilyV6
		if ip.To4() != nil {
			family = hostent.FamilyV4
		}

		name := strings.ToLower(fields[1])
		aliases := fields[2:]

		k := key{name: name, family: family}
		if i, ok := index[k]; ok {
			hosts[i] = mergeLine(hosts[i], ip, aliases)
			continue
		}

		h := hostent.Host{Name: name}
		h = mergeLine(h, ip, aliases)
		index[k] = len(hosts)
		hosts = append(hosts, h)
	}
	if err := scanner.Err(); err != nil {
		f.logger.Warn("hosts file truncated mid-scan",
			zap.String("path", f.path), zap.Error(err))
	}

	return hosts
}

// mergeLine folds one parsed line into a record, preserving alias and
// address insertion order and dropping duplicate aliases.
func mergeLine(h hostent.Host, ip net.IP, aliases []string) hostent.Host {
	for _, a := range aliases {
		a = strings.ToLower(a)
		if a != h.Name && !slices.Contains(h.Aliases, a) {
			h.Aliases = append(h.Aliases, a)
		}
	}

	if v4 := ip.To4(); v4 != nil {
		l, _ := h.Addrs.(hostent.V4List)
		h.Addrs = append(l, [4]byte(v4))
	} else {
		l, _ := h.Addrs.(hostent.V6List)
		h.Addrs = append(l, [16]byte(ip.To16()))
	}
	return h
}
