// Command wardenbench exercises the warden library end to end: a worker
// pool hammering a synchronizer-guarded counter, with a sleeper waiting for
// the run to finish or time out.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"warden/fsutil"
	"warden/log"
	"warden/monitor"
	"warden/pool"
)

var (
	workersFlag    int
	tasksFlag      int
	submittersFlag int
	timeoutFlag    time.Duration
	logLevelFlag   string

	rootCmd = &cobra.Command{
		Use:   "wardenbench",
		Short: "Exercise the warden synchronizer and worker pool",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevelFlag != "" {
				log.Initialize(logLevelFlag)
			}
		},
	}

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Run counter-increment tasks through a pool and wait for completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench()
		},
	}

	normalizeCmd = &cobra.Command{
		Use:   "normalize <pathname>...",
		Short: "Print the normalized form of each pathname",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, pathname := range args {
				fmt.Printf("%s -> %s\n", pathname, fsutil.Normalize(pathname))
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")

	benchCmd.Flags().IntVar(&workersFlag, "workers", 4, "number of pool workers")
	benchCmd.Flags().IntVar(&tasksFlag, "tasks", 10000, "number of tasks per submitter")
	benchCmd.Flags().IntVar(&submittersFlag, "submitters", 4, "number of concurrent submitters")
	benchCmd.Flags().DurationVar(&timeoutFlag, "timeout", 30*time.Second, "give up after this long")

	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(normalizeCmd)
}

type benchState struct {
	executed int
}

func runBench() error {
	p, err := pool.New("bench", workersFlag)
	if err != nil {
		return err
	}
	defer p.Close()

	s := monitor.New[benchState]()
	total := submittersFlag * tasksFlag

	start := time.Now()

	var g errgroup.Group
	for i := 0; i < submittersFlag; i++ {
		g.Go(func() error {
			task := pool.TaskFunc{TaskName: "increment", Fn: func(ctx *pool.Context) error {
				s.Do(func(state *benchState) {
					state.executed++
				})
				return nil
			}}
			for j := 0; j < tasksFlag; j++ {
				if err := p.Submit(task); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	timedOut := false
	s.DoSleep(func(state *benchState, sleeper *monitor.Sleeper) {
		sleeper.Until(func() bool { return state.executed >= total }, nil).
			OrTimeout(timeoutFlag, func() { timedOut = true }).
			Sleep()
	})
	if timedOut {
		executed := monitor.Get(s, func(state *benchState) int { return state.executed })
		return fmt.Errorf("timed out after %v with %d of %d tasks executed", timeoutFlag, executed, total)
	}

	elapsed := time.Since(start)
	fmt.Printf("executed %d tasks on %d workers in %v (%.0f tasks/s)\n",
		total, workersFlag, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
