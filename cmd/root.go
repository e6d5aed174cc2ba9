package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yuanzhixiang/substrate/cmd/demo"
	"github.com/yuanzhixiang/substrate/cmd/perf"
	"github.com/yuanzhixiang/substrate/cmd/util"
	"github.com/yuanzhixiang/substrate/cmd/watch"
	"github.com/yuanzhixiang/substrate/lib/logging"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "substrate",
		Short: "concurrent messaging primitives",
		Long: fmt.Sprintf(`substrate (v%s)

Lock-free queues, shared counters over mapped files, and wire frame
codecs for building low-latency messaging systems in Go.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of substrate",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("substrate v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(watch.WatchCmd)
	RootCmd.AddCommand(demo.DemoCmd)
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("log level (debug, info, warn, error)"))

	cobra.OnInitialize(func() {
		if level, err := RootCmd.PersistentFlags().GetString("log-level"); err == nil {
			logging.InitLoggers(level)
		}
	})
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
