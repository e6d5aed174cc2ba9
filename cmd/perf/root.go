package perf

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yuanzhixiang/substrate/cmd/util"
	"github.com/yuanzhixiang/substrate/lib/buffer"
	"github.com/yuanzhixiang/substrate/lib/counters"
	"github.com/yuanzhixiang/substrate/lib/queue"
)

var (
	// PerfCmd represents the perf command
	PerfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the queue and counters primitives",
		Long:    "",
		RunE:    run,
		PreRunE: processPerfConfig,
	}

	perfNumThreads    = 10
	perfQueueCapacity = 1024
	perfNumCounters   = 1024
	perfSkip          = make([]string, 0)
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// add flags
	key := "skip"
	PerfCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. offer-poll,increment)"))
	key = "threads"
	PerfCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "queue-capacity"
	PerfCmd.Flags().Int(key, 1024, util.WrapString("Capacity of the benchmarked queue (rounded up to a power of two)"))
	key = "perf-counters"
	PerfCmd.Flags().Int(key, 1024, util.WrapString("Number of counter slots for the counters benchmarks"))
	key = "csv"
	PerfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfNumThreads = viper.GetInt("threads")
	perfQueueCapacity = viper.GetInt("queue-capacity")
	perfNumCounters = viper.GetInt("perf-counters")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for queue and counters primitives")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Queue capacity: %d\n", perfQueueCapacity)
	fmt.Printf("Counter slots: %d\n", perfNumCounters)
	fmt.Println()

	fmt.Println("starting tests...")

	// Create results map and a meter per test for live throughput
	results := make(map[string]testing.BenchmarkResult)
	meters := gometrics.NewRegistry()

	offerPollResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("offer-poll") {
			return
		}

		q, err := queue.NewMPMC[int64](perfQueueCapacity)
		if err != nil {
			b.Fatalf("failed to create queue: %v", err)
		}
		meter := gometrics.GetOrRegisterMeter("offer-poll", meters)

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			value := int64(1)
			for pb.Next() {
				if q.Offer(&value) {
					meter.Mark(1)
				} else {
					q.Poll()
				}
			}
		})
	})

	results["offer-poll"] = offerPollResult
	printResult("offer-poll", offerPollResult)

	drainResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("drain") {
			return
		}

		q, err := queue.NewMPMC[int64](perfQueueCapacity)
		if err != nil {
			b.Fatalf("failed to create queue: %v", err)
		}
		value := int64(1)
		meter := gometrics.GetOrRegisterMeter("drain", meters)

		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			for q.Offer(&value) {
			}
			drained := q.Drain(func(*int64) {}, q.Capacity())
			meter.Mark(int64(drained))
		}
	})

	results["drain"] = drainResult
	printResult("drain", drainResult)

	incrementResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("increment") {
			return
		}

		counter, cleanup, err := newBenchCounter("perf-increment")
		if err != nil {
			b.Fatalf("failed to create counter: %v", err)
		}
		b.Cleanup(cleanup)
		meter := gometrics.GetOrRegisterMeter("increment", meters)

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				counter.Increment()
				meter.Mark(1)
			}
		})
	})

	results["increment"] = incrementResult
	printResult("increment", incrementResult)

	setOrderedResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("set-ordered") {
			return
		}

		counter, cleanup, err := newBenchCounter("perf-set-ordered")
		if err != nil {
			b.Fatalf("failed to create counter: %v", err)
		}
		b.Cleanup(cleanup)

		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			counter.SetOrdered(int64(i))
		}
	})

	results["set-ordered"] = setOrderedResult
	printResult("set-ordered", setOrderedResult)

	allocateFreeResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("allocate-free") {
			return
		}

		meta := buffer.Wrap(make([]byte, perfNumCounters*counters.MetadataLength))
		values := buffer.Wrap(make([]byte, perfNumCounters*counters.CounterLength))
		manager, err := counters.NewDefaultManager(meta, values)
		if err != nil {
			b.Fatalf("failed to create manager: %v", err)
		}

		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			id, err := manager.Allocate("bench-counter")
			if err != nil {
				b.Fatalf("allocate failed: %v", err)
			}
			if err := manager.Free(id); err != nil {
				b.Fatalf("free failed: %v", err)
			}
		}
	})

	results["allocate-free"] = allocateFreeResult
	printResult("allocate-free", allocateFreeResult)

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// newBenchCounter allocates a counter over freshly wrapped buffers
func newBenchCounter(label string) (*counters.Counter, func(), error) {
	meta := buffer.Wrap(make([]byte, perfNumCounters*counters.MetadataLength))
	values := buffer.Wrap(make([]byte, perfNumCounters*counters.CounterLength))

	manager, err := counters.NewDefaultManager(meta, values)
	if err != nil {
		return nil, nil, err
	}

	counter, err := manager.NewCounter(label)
	if err != nil {
		return nil, nil, err
	}

	return counter, func() { _ = counter.Close() }, nil
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Threads", "QueueCapacity", "CounterSlots",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
			nsPerOp = 0
			opsPerSec = 0
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfQueueCapacity),
			strconv.Itoa(perfNumCounters),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
