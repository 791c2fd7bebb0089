package main

import (
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/joshuapare/fixedpool/internal/logger"
	"github.com/joshuapare/fixedpool/pool"
	"github.com/joshuapare/fixedpool/pool/provider"
	"github.com/joshuapare/fixedpool/pool/report"
)

var (
	simOps    int
	simSeed   int64
	simMaxLen int
	simHold   int
	simMmap   bool
	simMutex  bool
)

func init() {
	cmd := newSimulateCmd()
	cmd.Flags().IntVar(&simOps, "ops", 10000, "Operations per execution context")
	cmd.Flags().Int64Var(&simSeed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&simMaxLen, "max-len", 0, "Largest requested length (default: largest block length)")
	cmd.Flags().IntVar(&simHold, "hold", 0, "Blocks the task context may hold at once (0 = unbounded)")
	cmd.Flags().BoolVar(&simMmap, "mmap", false, "Back the arena with an anonymous OS mapping")
	cmd.Flags().BoolVar(&simMutex, "mutex", false, "Use a mutex critical section instead of a spin section")
	rootCmd.AddCommand(cmd)
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <pools>",
		Short: "Run a task and an interrupt context against one allocator",
		Long: `The simulate command initializes an allocator for the given pools and
runs two goroutines against it: a task context that holds blocks for a while
and an interrupt context that frees each block immediately. Afterwards it
verifies every free list and prints the allocator's statistics.

Example:
  poolctl simulate 16x4,64x2
  poolctl simulate 32x128,256x16 --ops 100000 --hold 64 --mmap
  poolctl simulate 16x4,64x2 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(args)
		},
	}
	return cmd
}

// heapFor returns the heap provider for size bytes and a release function.
func heapFor(size int) (pool.HeapProvider, func() error, error) {
	if !simMmap || size == 0 {
		return provider.Static(make([]byte, size)), func() error { return nil }, nil
	}
	m, err := provider.Mapped(size)
	if err != nil {
		return nil, nil, err
	}
	return m, m.Close, nil
}

func runSimulate(args []string) error {
	pools, err := pool.ParseDescriptors(args[0])
	if err != nil {
		return err
	}
	size, err := pool.CalcSize(pools)
	if err != nil {
		return err
	}

	heap, release, err := heapFor(size)
	if err != nil {
		return err
	}
	defer release()

	spin := &pool.SpinSection{}
	opts := pool.DefaultOptions()
	opts.Section = spin
	if simMutex {
		opts.Section = &pool.MutexSection{}
	}
	opts.Debug = true
	opts.Histograms = true
	opts.Logger = logger.L

	a := pool.New(heap, &opts)
	if _, err := a.Init(pools); err != nil {
		return err
	}

	var callbacks atomic.Int64
	a.RegisterFailureCallback(func(n int, _ pool.ExecContext) {
		callbacks.Add(1)
		logger.L.Debug("allocation failed", "length", n)
	})

	maxLen := simMaxLen
	if maxLen == 0 {
		for _, p := range pools {
			maxLen = max(maxLen, p.BlockLength)
		}
	}

	printVerbose("Simulating %d ops per context over %d bytes\n", simOps, size)
	res, err := simulate(a, simConfig{Ops: simOps, Seed: simSeed, MaxLen: maxLen, Hold: simHold})
	if err != nil {
		return err
	}
	if err := a.Verify(); err != nil {
		return err
	}

	snap := a.Snapshot()
	logger.L.Info("simulation finished",
		"task_allocs", res.Task.Allocs,
		"interrupt_allocs", res.Interrupt.Allocs,
		"failures", snap.Failures,
		"callbacks", callbacks.Load(),
	)

	ropts := report.DefaultOptions()
	if jsonOut {
		ropts.Format = report.FormatJSON
		return report.New(os.Stdout, ropts).Snapshot(snap)
	}
	if quiet {
		return nil
	}

	for _, c := range []contextResult{res.Task, res.Interrupt} {
		printInfo("%-9s allocs=%d frees=%d failures=%d\n", c.Context, c.Allocs, c.Frees, c.Failures)
	}
	if !simMutex {
		enters, contended := spin.Stats()
		printInfo("critical section: %d enters, %d contended\n", enters, contended)
	}
	printInfo("failure callbacks: %d\n", callbacks.Load())
	printInfo("free lists verified\n\n")
	return report.New(os.Stdout, ropts).Snapshot(snap)
}
