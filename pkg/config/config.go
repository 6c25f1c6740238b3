// Package config loads and validates the daemon configuration.
package config

import (
	"fmt"
	"net"
	"strings"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"
)

// Record declares one static directory entry. Addresses of both
// families may appear together; the source layer splits them.
type Record struct {
	Name    string   `yaml:"name" validate:"required,nul_free"`
	Aliases []string `yaml:"aliases" validate:"dive,nul_free"`
	Addrs   []string `yaml:"addrs" validate:"required,min=1,dive,ip_addr"`
}

// Sources declares where records come from. When both a hosts file and
// static records are configured, the hosts file is consulted first.
type Sources struct {
	HostsFile string   `yaml:"hosts_file"`
	Static    []Record `yaml:"static" validate:"dive"`
}

func (s Sources) IsEmpty() bool {
	return s.HostsFile == "" && len(s.Static) == 0
}

type Config struct {
	// Socket is the unix socket path the lookup server binds.
	Socket string `yaml:"socket" validate:"required"`

	// Status is the listen address for health/metrics; empty disables
	// the status server.
	Status string `yaml:"status"`

	Sources Sources `yaml:"sources"`
}

func (c *Config) SetDefaults() {
	if c.Socket == "" {
		c.Socket = "/run/hostarc.sock"
	}
}

func (c *Config) Validate() error {
	validate := validator.New()

	for name, fn := range map[string]validator.Func{
		"nul_free": validateNulFree,
		"ip_addr":  validateIPAddr,
	} {
		if err := validate.RegisterValidation(name, fn); err != nil {
			return fmt.Errorf("failed to register %s validation: %w", name, err)
		}
	}

	c.SetDefaults()

	if c.Sources.IsEmpty() {
		return fmt.Errorf("no sources configured")
	}

	return validate.Struct(c)
}

// validateNulFree rejects names that cannot round-trip through a
// NUL-terminated representation.
func validateNulFree(fl validator.FieldLevel) bool {
	return !strings.ContainsRune(fl.Field().String(), 0)
}

// validateIPAddr validates that the field parses as an IPv4 or IPv6
// address.
func validateIPAddr(fl validator.FieldLevel) bool {
	return net.ParseIP(fl.Field().String()) != nil
}

func UnmarshalConfig(bytes []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
