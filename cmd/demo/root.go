package demo

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yuanzhixiang/substrate/cmd/util"
	"github.com/yuanzhixiang/substrate/lib/logging"
)

var (
	logger = logging.GetLogger("demo")

	// DemoCmd represents the demo command
	DemoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Run a demo counter writer",
		Long: `Creates a counters file pair, allocates a handful of counters and
updates them until interrupted. Point "substrate watch" at the same files
from another terminal to observe the values live.`,
		RunE: runDemo,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add flags
	util.SetupCountersFileFlags(DemoCmd)

	key := "rate"
	DemoCmd.Flags().Int(key, 10, util.WrapString("Counter updates per second"))
	key = "keep-files"
	DemoCmd.Flags().Bool(key, false, util.WrapString("Keep the counters files on exit"))
}

func runDemo(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	manager, mappings, err := util.CreateCountersManager()
	if err != nil {
		return err
	}
	defer func() {
		if err := util.CloseMappings(mappings); err != nil {
			logger.Errorf("failed to close mappings: %v", err)
		}
		if !viper.GetBool("keep-files") {
			for _, m := range mappings {
				if err := os.Remove(m.Path()); err != nil {
					logger.Errorf("failed to remove %s: %v", m.Path(), err)
				}
			}
		}
	}()

	logger.Infof("created %s / %s (%d counter slots)",
		viper.GetString("metadata-file"), viper.GetString("values-file"), manager.Capacity())

	messages, err := manager.NewCounterTyped("messages-processed", 1)
	if err != nil {
		return err
	}
	defer messages.Close()

	bytes, err := manager.NewCounterTyped("bytes-received", 1)
	if err != nil {
		return err
	}
	defer bytes.Close()

	errorsCounter, err := manager.NewCounterTyped("processing-errors", 2)
	if err != nil {
		return err
	}
	defer errorsCounter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Second / time.Duration(viper.GetInt("rate"))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Infof("writing counters, interrupt to stop")

	for {
		select {
		case <-ctx.Done():
			logger.Infof("shutting down")
			return nil
		case <-ticker.C:
			messages.Increment()
			bytes.GetAndAdd(rand.Int63n(1500))
			if rand.Intn(100) == 0 {
				errorsCounter.Increment()
			}
		}
	}
}
