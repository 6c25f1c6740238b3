package cmd

import (
	"unsafe"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hostwire/hostarc/pkg/hostent"
	"github.com/hostwire/hostarc/pkg/nss"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every configured record, in hosts(5) order",
	Long: `Dump loads the configured sources in-process and walks them with the
same set/get/end cursor the daemon exposes, marshalling each record
through a scratch buffer before printing it.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := initLogger()
		defer syncLogger(logger)

		src, err := buildSource(logger, loadConfig(logger))
		if err != nil {
			logger.Fatal("loading sources", zap.Error(err))
		}
		svc := nss.NewService(src)

		if st := svc.SetHostEnt(); st != nss.StatusSuccess {
			logger.Fatal("opening enumeration", zap.Stringer("status", st))
		}
		defer svc.EndHostEnt()

		buf := make([]byte, 1<<16)
		var out hostent.Hostent
		for {
			st := svc.GetHostEnt(&out, unsafe.Pointer(&buf[0]), uintptr(len(buf)))
			if st == nss.StatusNotFound {
				return
			}
			if st != nss.StatusSuccess {
				logger.Fatal("enumeration failed", zap.Stringer("status", st))
			}
			printHost(hostent.Read(&out))
		}
	},
}
