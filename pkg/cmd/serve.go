package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hostwire/hostarc/pkg/config"
	"github.com/hostwire/hostarc/pkg/nss"
	"github.com/hostwire/hostarc/pkg/server"
	"github.com/hostwire/hostarc/pkg/source"
	"github.com/hostwire/hostarc/pkg/status"
	"github.com/hostwire/hostarc/pkg/telemetry"
)

// registryName is the backend name the daemon registers its service
// under.
const registryName = "hostarc"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the lookup daemon",
	Run: func(cmd *cobra.Command, args []string) {
		logger := initLogger()
		defer syncLogger(logger)

		if err := runServe(logger); err != nil {
			logger.Fatal("daemon failed", zap.Error(err))
		}
	},
}

func runServe(logger *zap.Logger) error {
	var (
		srv  *server.Server
		conf *config.Config
	)

	provider := config.NewLocalProvider(logger, configPath)
	provider.OnConfigChange(func(c *config.Config) error {
		src, err := buildSource(logger, c)
		if err != nil {
			return err
		}
		svc := nss.Register(registryName, src)

		if srv == nil {
			// first load: the socket path is fixed for the process
			// lifetime, later reloads only swap the record sources
			conf = c
			srv = server.NewServer(logger, svc, c.Socket)
			return nil
		}
		srv.SetService(svc)
		return nil
	})

	if err := provider.Start(); err != nil {
		return err
	}
	defer provider.Stop()

	telemetry.ObservableGauge("hostarc_records",
		func() float64 {
			svc, ok := nss.Lookup(registryName)
			if !ok {
				return 0
			}
			hosts, st := svc.AllHosts()
			if st != nss.StatusSuccess {
				return 0
			}
			return float64(len(hosts))
		},
		telemetry.WithDescription("Records currently served across all sources"))

	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	if conf.Status != "" {
		statusServer := status.NewServer(conf.Status, logger, telemetry.Handler(), nil)
		if err := statusServer.Start(); err != nil {
			return err
		}
		defer statusServer.Stop()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	logger.Info("shutting down", zap.String("signal", s.String()))
	return nil
}

func buildSource(logger *zap.Logger, c *config.Config) (source.HostSource, error) {
	var sources source.Multi

	if c.Sources.HostsFile != "" {
		f, err := source.NewFile(logger, c.Sources.HostsFile)
		if err != nil {
			return nil, err
		}
		sources = append(sources, f)
	}

	if len(c.Sources.Static) > 0 {
		records := make([]source.StaticRecord, len(c.Sources.Static))
		for i, r := range c.Sources.Static {
			records[i] = source.StaticRecord{
				Name:    r.Name,
				Aliases: r.Aliases,
				Addrs:   r.Addrs,
			}
		}
		s, err := source.NewStatic(records)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}

	if len(sources) == 1 {
		return sources[0], nil
	}
	return sources, nil
}

func loadConfig(logger *zap.Logger) *config.Config {
	data, err := os.ReadFile(configPath)
	if err != nil {
		logger.Fatal("reading config", zap.Error(err))
	}
	conf, err := config.UnmarshalConfig(data)
	if err != nil {
		logger.Fatal("unmarshalling config", zap.Error(err))
	}
	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	return conf
}
