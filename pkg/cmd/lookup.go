package cmd

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hostwire/hostarc/pkg/hostent"
	"github.com/hostwire/hostarc/pkg/nss"
	"github.com/hostwire/hostarc/pkg/server"
)

var (
	lookupFamily string
	lookupSocket string
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <name|address>",
	Short: "Resolve a name or address against a running daemon",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := initLogger()
		defer syncLogger(logger)

		client := server.NewClient(resolveSocket(logger))

		var (
			host hostent.Host
			st   nss.Status
			err  error
		)
		if ip := net.ParseIP(args[0]); ip != nil {
			host, st, err = client.LookupAddr(ip)
		} else {
			family, ferr := parseFamily(lookupFamily)
			if ferr != nil {
				logger.Fatal("invalid family", zap.Error(ferr))
			}
			host, st, err = client.LookupName(args[0], family)
		}
		if err != nil {
			logger.Fatal("lookup failed", zap.Error(err))
		}
		if st != nss.StatusSuccess {
			fmt.Fprintf(os.Stderr, "%s: %s\n", args[0], st)
			os.Exit(1)
		}
		printHost(host)
	},
}

func init() {
	lookupCmd.Flags().StringVar(&lookupFamily, "family", "any", "address family to resolve: 4, 6 or any")
	lookupCmd.Flags().StringVar(&lookupSocket, "socket", "", "daemon socket path (defaults to the configured one)")
}

// resolveSocket prefers the --socket flag and falls back to the config
// file so `lookup` works against a default deployment without flags.
func resolveSocket(logger *zap.Logger) string {
	if lookupSocket != "" {
		return lookupSocket
	}
	return loadConfig(logger).Socket
}

func parseFamily(s string) (hostent.Family, error) {
	switch strings.ToLower(s) {
	case "4", "inet", "ipv4":
		return hostent.FamilyV4, nil
	case "6", "inet6", "ipv6":
		return hostent.FamilyV6, nil
	case "", "any", "unspec":
		return hostent.FamilyUnspec, nil
	}
	return hostent.FamilyUnspec, fmt.Errorf("unknown address family %q", s)
}

func printHost(h hostent.Host) {
	name := h.Name
	if len(h.Aliases) > 0 {
		name += " (" + strings.Join(h.Aliases, ", ") + ")"
	}
	for _, ip := range h.IPs() {
		fmt.Printf("%-18s %s\n", ip, name)
	}
}
