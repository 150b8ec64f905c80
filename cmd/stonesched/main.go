// Command stonesched runs a warm-up batch of fixed demonstration
// processes followed by a random workload, rendering a live terminal
// dashboard and forwarding human-readable process messages to a TCP
// sink.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoobzio/stonesched"
	"github.com/zoobzio/stonesched/forwarder"
	"github.com/zoobzio/stonesched/telemetry"
	"github.com/zoobzio/stonesched/workload"
)

var version = "0.1.0"

var (
	workers        int
	timeSlice      time.Duration
	ioPoolSize     int
	txtDir         string
	outDir         string
	printEnabled   bool
	printInterval  time.Duration
	randomCount    int
	randomStateMax uint32
	randomSleepLo  time.Duration
	randomSleepHi  time.Duration
)


var rootCmd = &cobra.Command{
	Use:     "stonesched <host:port>",
	Short:   "Work-stealing cooperative process scheduler demo",
	Long:    `stonesched multiplexes cooperative processes across a worker pool, forwarding process chatter to a TCP address and optionally rendering a live terminal dashboard.`,
	Version: version,
	Args:    cobra.ExactArgs(1),
	RunE:    run,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.Flags()
	flags.IntVar(&workers, "workers", 0, "worker goroutine count (default: host CPU count)")
	flags.DurationVar(&timeSlice, "time-slice", 20*time.Millisecond, "poll accounting unit")
	flags.IntVar(&ioPoolSize, "io-pool-size", 0, "I/O offload pool size (default: ceil(workers/2)+1)")
	flags.StringVar(&txtDir, "txt-dir", "./txt", "directory enumerated as random-read targets")
	flags.StringVar(&outDir, "out-dir", "./out", "output directory recorded in the scheduler config (random write ops always target ./out)")
	flags.BoolVar(&printEnabled, "print", true, "render the live terminal dashboard")
	flags.DurationVar(&printInterval, "print-interval", 200*time.Millisecond, "dashboard refresh interval")
	flags.IntVar(&randomCount, "random", 20, "number of random processes to admit after the warm-up batch")
	flags.Uint32Var(&randomStateMax, "random-state-max", 20, "upper bound on random process step count")
	flags.DurationVar(&randomSleepLo, "random-sleep-lo", 15*time.Millisecond, "lower bound of the random sleep range")
	flags.DurationVar(&randomSleepHi, "random-sleep-hi", 30*time.Millisecond, "upper bound of the random sleep range")
}

func run(cmd *cobra.Command, args []string) error {
	addr := args[0]

	sched, err := stonesched.Build(stonesched.Config{
		Workers:    workers,
		TimeSlice:  timeSlice,
		IOPoolSize: ioPoolSize,
		TxtDir:     txtDir,
		OutDir:     outDir,
	})
	if err != nil {
		return fmt.Errorf("bootstrap scheduler: %w", err)
	}

	fwd := forwarder.New(addr, sched.Messages())
	fwd.OnError = func(err error) {
		fmt.Fprintf(os.Stderr, "forwarder: %v\n", err)
	}
	go fwd.Run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var renderer *telemetry.Renderer
	if printEnabled {
		renderer = telemetry.New(sched, os.Stdout, printInterval)
		go renderer.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	admitFixedBatch(sched)
	admitRandomBatch(sched)

	sched.Join()

	if renderer != nil {
		<-renderer.Done()
	}
	<-fwd.Done()
	cancel()

	return nil
}

func admitFixedBatch(sched *stonesched.Scheduler) {
	sched.Execute(&workload.Fixed1{})
	sched.Execute(workload.Fixed2{})
	sched.Execute(workload.Fixed3())
	sched.Execute(workload.Fixed4())
	sched.Execute(workload.Fixed5())
}

func admitRandomBatch(sched *stonesched.Scheduler) {
	factory := workload.NewRandomFactory(randomCount, randomStateMax, [2]time.Duration{randomSleepLo, randomSleepHi}, sched.Txts())
	for _, proc := range factory.Processes() {
		sched.Execute(proc)
	}
}
