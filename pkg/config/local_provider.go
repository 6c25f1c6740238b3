package config

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// LocalProvider loads configuration from a local file and reloads it
// on SIGHUP.
type LocalProvider struct {
	logger     *zap.Logger
	configPath string
	callback   func(*Config) error
	sigChan    chan os.Signal
	done       chan struct{}
	mu         sync.Mutex
}

func NewLocalProvider(logger *zap.Logger, configPath string) *LocalProvider {
	return &LocalProvider{
		logger:     logger,
		configPath: configPath,
		done:       make(chan struct{}),
	}
}

// Start performs the initial load and begins watching for SIGHUP.
func (p *LocalProvider) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.callback == nil {
		return errors.New("no callback registered for config changes")
	}

	if err := p.loadAndNotify(); err != nil {
		return fmt.Errorf("initial config load failed: %w", err)
	}

	p.sigChan = make(chan os.Signal, 1)
	signal.Notify(p.sigChan, syscall.SIGHUP)

	go p.watchSignals()

	return nil
}

func (p *LocalProvider) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sigChan == nil {
		return
	}

	signal.Stop(p.sigChan)
	close(p.done)
	close(p.sigChan)
	p.sigChan = nil
}

// OnConfigChange registers the callback invoked with each loaded
// config, including the initial one.
func (p *LocalProvider) OnConfigChange(callback func(*Config) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callback = callback
}

// Reload forces a configuration reload.
func (p *LocalProvider) Reload() error {
	return p.loadAndNotify()
}

func (p *LocalProvider) watchSignals() {
	for {
		select {
		case <-p.sigChan:
			p.logger.Info("SIGHUP received, reloading configuration")
			if err := p.loadAndNotify(); err != nil {
				p.logger.Error("failed to reload config after SIGHUP", zap.Error(err))
			}
		case <-p.done:
			return
		}
	}
}

func (p *LocalProvider) loadAndNotify() error {
	data, err := os.ReadFile(p.configPath)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	conf, err := UnmarshalConfig(data)
	if err != nil {
		return fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	callback := p.callback

	if callback != nil {
		if err := callback(conf); err != nil {
			return fmt.Errorf("config callback failed: %w", err)
		}
	}

	return nil
}
