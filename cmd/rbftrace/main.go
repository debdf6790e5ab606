// Command rbftrace extracts scheduling-model records (periodic,
// self-suspending periodic, and RBF curves) from a kernel scheduling-event
// trace, either in a single pass over a finished trace or incrementally as
// the trace is replayed.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	var o opts

	root := &cobra.Command{
		Use:   "rbftrace -s SOURCE [flags]",
		Short: "Extract real-time task models from a scheduling-event trace",
		Long: `rbftrace replays a Linux real-time scheduling-event trace and infers,
per traced thread, a periodic (or self-suspending periodic) task model plus
its Request-Bound Function curve.

The event trace itself is produced elsewhere (an ftrace/perf-style
collector writing YAML or line-oriented text); rbftrace only consumes it.

Examples:
  rbftrace -s trace.yaml -o out/
  rbftrace -s trace.yaml -o out/ -i 1 --report
  rbftrace -s trace.txt --source-format text -p`,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.intervalSet = cmd.Flags().Changed("interval")
			o.arrivalSet = cmd.Flags().Changed("arrival")
			return run(o)
		},
	}

	bindFlags(root, &o)
	return root
}

type opts struct {
	sourcePath   string
	sourceFormat string
	outputPath   string

	updateInterval float64
	intervalSet    bool
	updateArrival  uint64
	arrivalSet     bool

	report bool
	print  bool

	configPath string

	jitterBoundMs  float64
	resolutionUs   float64
	windowSize     int
	maxSignalLen   int
	fftCutoff      float64
	noPeriodic     bool
	noSpectral     bool
	noRBF          bool
}

func bindFlags(cmd *cobra.Command, o *opts) {
	f := cmd.Flags()

	f.StringVarP(&o.sourcePath, "source", "s", "", "event source path (required)")
	f.StringVar(&o.sourceFormat, "source-format", "yaml", "event source format: yaml or text")
	f.StringVarP(&o.outputPath, "output", "o", "", "output directory; if unset, only prints human-readable models")

	f.Float64VarP(&o.updateInterval, "interval", "i", 0, "re-extract models every N seconds of trace time (incremental mode)")
	f.Uint64VarP(&o.updateArrival, "arrival", "a", 0, "re-extract models every N arrivals (incremental mode)")

	f.BoolVar(&o.report, "report", false, "write a {sample_count, model} history per task (requires --output)")
	f.BoolVarP(&o.print, "print", "p", false, "print extracted scalar models at each step")

	f.StringVar(&o.configPath, "config", "", "load tunables from a YAML config file instead of the built-in defaults")

	f.Float64VarP(&o.jitterBoundMs, "jitter-bound", "J", 1.5, "jitter bound, in ms")
	f.Float64VarP(&o.resolutionUs, "resolution", "r", 100, "period/offset resolution, in us")
	f.IntVarP(&o.windowSize, "window-size", "w", 1000, "RBF and history window size, in jobs")
	f.IntVar(&o.maxSignalLen, "max-signal-len", 1_000_000, "spectral extractor's maximum synthesized signal length")
	f.Float64Var(&o.fftCutoff, "fft-cutoff", 0.5, "spectral extractor's normalized-power spike threshold")
	f.BoolVar(&o.noPeriodic, "no-periodic", false, "disable the periodic extractor")
	f.BoolVar(&o.noSpectral, "no-spectral", false, "disable the spectral (self-suspending) extractor")
	f.BoolVar(&o.noRBF, "no-rbf", false, "disable the RBF extractor")

	_ = cmd.MarkFlagRequired("source")
}
