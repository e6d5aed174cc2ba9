package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yuanzhixiang/substrate/cmd/util"
	"github.com/yuanzhixiang/substrate/lib/buffer"
	"github.com/yuanzhixiang/substrate/lib/counters"
	"github.com/yuanzhixiang/substrate/lib/logging"
)

var (
	logger = logging.GetLogger("watch")

	// WatchCmd represents the watch command group
	WatchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Observe live counters from a mapped counters file pair",
		Long: `Maps the metadata and values files of a running process and
periodically prints every allocated counter. The files are mapped shared,
so values are read live without coordination with the writer.`,
		RunE: runWatch,
	}

	// metricNameCache caches the prometheus-sanitized name per label so
	// the export path does not re-sanitize on every scrape
	metricNameCache = xsync.NewMapOf[string, string]()
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add flags
	util.SetupCountersFileFlags(WatchCmd)

	key := "interval"
	WatchCmd.Flags().Int(key, 1, util.WrapString("Seconds between refreshes"))
	key = "once"
	WatchCmd.Flags().Bool(key, false, util.WrapString("Print a single snapshot and exit"))
	key = "prometheus"
	WatchCmd.Flags().Bool(key, false, util.WrapString("Emit prometheus text format instead of the table view"))
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	reader, mappings, err := util.OpenCountersReader()
	if err != nil {
		return err
	}
	defer func() {
		if err := util.CloseMappings(mappings); err != nil {
			logger.Errorf("failed to close mappings: %v", err)
		}
	}()

	logger.Infof("watching %s / %s (%d counter slots)",
		viper.GetString("metadata-file"), viper.GetString("values-file"), reader.Capacity())

	emit := printTable
	if viper.GetBool("prometheus") {
		emit = printPrometheus
	}

	if viper.GetBool("once") {
		emit(reader)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(viper.GetInt("interval")) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	emit(reader)
	for {
		select {
		case <-ctx.Done():
			logger.Infof("shutting down")
			return nil
		case <-ticker.C:
			emit(reader)
		}
	}
}

// --------------------------------------------------------------------------
// Output
// --------------------------------------------------------------------------

func printTable(reader *counters.Reader) {
	fmt.Printf("%s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("%6s %8s %20s  %s\n", "ID", "TYPE", "VALUE", "LABEL")

	count := 0
	reader.ForEach(func(counterID, typeID int32, key *buffer.Buffer, label string) {
		value := reader.CounterValue(counterID)
		fmt.Printf("%6d %8d %20d  %s\n", counterID, typeID, value, label)
		count++
	})

	fmt.Printf("%d counters allocated\n\n", count)
}

func printPrometheus(reader *counters.Reader) {
	set := metrics.NewSet()

	reader.ForEach(func(counterID, typeID int32, key *buffer.Buffer, label string) {
		id := counterID
		name := fmt.Sprintf(`%s{counter_id="%d",type_id="%d"}`, metricName(label), counterID, typeID)
		set.GetOrCreateGauge(name, func() float64 {
			return float64(reader.CounterValue(id))
		})
	})

	set.WritePrometheus(os.Stdout)
	fmt.Println()
}

// metricName sanitizes a counter label into a prometheus metric name,
// cached per label
func metricName(label string) string {
	if cached, ok := metricNameCache.Load(label); ok {
		return cached
	}

	var b strings.Builder
	for i, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9' && i > 0:
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" {
		name = "counter"
	}

	metricNameCache.Store(label, name)
	return name
}
