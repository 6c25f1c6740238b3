package nss

import (
	"github.com/hostwire/hostarc/pkg/source"
	"github.com/hostwire/hostarc/pkg/synq"
)

// services maps a registered backend name to its Service. The foreign
// shim resolves its service by the name it was registered under, the
// same convention the exported symbol naming follows.
var services = synq.NewMap[string, *Service]()

// Register binds src under name, replacing any previous registration.
func Register(name string, src source.HostSource) *Service {
	svc := NewService(src)
	services.Store(name, svc)
	return svc
}

// Lookup returns the Service registered under name.
func Lookup(name string) (*Service, bool) {
	return services.Load(name)
}

// Deregister removes the registration for name.
func Deregister(name string) {
	services.Delete(name)
}
