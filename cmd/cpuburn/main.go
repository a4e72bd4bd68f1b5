// Command cpuburn runs one CPU burn in-process and prints the result.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"cpu-burn-lab/internal/burn"
	"cpu-burn-lab/internal/log"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("cpuburn failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cpuburn",
		Usage: "drive CPU utilization with parallel math loops for a fixed duration",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "threads", Aliases: []string{"t"}, Value: 4, Usage: "number of burn workers"},
			&cli.IntFlag{Name: "duration", Aliases: []string{"d"}, Value: 30, Usage: "seconds to burn"},
			&cli.IntFlag{Name: "batch-size", Value: burn.DefaultBatchSize, EnvVars: []string{"BURN_BATCH_SIZE"}, Usage: "evaluations per batch"},
			&cli.IntFlag{Name: "max-workers", Value: burn.DefaultMaxWorkers, EnvVars: []string{"BURN_MAX_WORKERS"}, Usage: "refuse runs needing more workers than this"},
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"LOG_LEVEL"}},
			&cli.BoolFlag{Name: "json", Usage: "print the result as JSON"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if err := log.Setup(c.String("log-level"), "text", os.Stderr); err != nil {
		return err
	}

	coord := burn.New(
		burn.WithBatchSize(c.Int("batch-size")),
		burn.WithMaxWorkers(c.Int("max-workers")),
	)
	res, err := coord.Run(c.Context, c.Int("threads"), c.Int("duration"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	if c.Bool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(res), "encode result")
	}
	fmt.Fprintf(w, "run %s\n", res.RunID)
	fmt.Fprintf(w, "threads used     : %d\n", res.ThreadCount)
	fmt.Fprintf(w, "total iterations : %d\n", res.TotalIterations)
	fmt.Fprintf(w, "elapsed (ms)     : %d\n", res.ElapsedMillis)
	if res.WaitInterrupted {
		fmt.Fprintln(w, "interrupted while waiting (totals are complete)")
	}
	return nil
}
