package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/rbftrace/rbftrace/pkg/config"
	"github.com/rbftrace/rbftrace/pkg/ftracebind"
	"github.com/rbftrace/rbftrace/pkg/model"
	"github.com/rbftrace/rbftrace/pkg/report"
	"github.com/rbftrace/rbftrace/pkg/rtime"
	"github.com/rbftrace/rbftrace/pkg/sysconf"
	"github.com/rbftrace/rbftrace/pkg/sysmodel"
	"github.com/rbftrace/rbftrace/pkg/trace"
)

func run(o opts) error {
	if o.updateArrival == 0 && o.arrivalSet {
		return &TraceError{err: fmt.Errorf("--arrival must be > 0")}
	}

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	tr, err := loadTrace(o)
	if err != nil {
		return err
	}

	sys := sysmodel.New(probeSysconf(), cfg.CompositeParams())

	var current *model.SystemModel[model.CompositeModel]
	periodicReport := report.NewReport[model.PeriodicTask]("periodic")
	ssReport := report.NewReport[model.PeriodicSelfSuspendingTask]("periodic_ss")

	if !o.intervalSet && !o.arrivalSet {
		/* ONE-SHOT */
		if o.report {
			fmt.Fprintln(os.Stderr, "Option --report set for a one shot extraction. Report won't be written")
		}
		sys.PushTrace(tr)
		current = sys.ExtractModel()
	} else {
		/* INCREMENTAL */

		updateInterval := rtime.FromSec(o.updateInterval)
		var lastUpdateTime rtime.Time
		modelChanged := false
		var arrivalCnt uint64 = 1 // so the first re-extraction happens at 2 samples

		extractAndRecord := func(atArrival uint64) {
			current = sys.ExtractModel()
			if o.print {
				printModels(current)
				fmt.Println("----------")
			}
			if o.report {
				recordSample(periodicReport, ssReport, current, int(atArrival))
			}
		}

		for _, event := range tr.Events() {
			if sys.PushEvent(event) {
				modelChanged = true
				arrivalCnt++
			}

			if lastUpdateTime == 0 {
				lastUpdateTime = event.Instant
			}
			elapsed := event.Instant.Sub(lastUpdateTime)

			dueByInterval := o.intervalSet && elapsed >= updateInterval
			dueByArrival := o.arrivalSet && arrivalCnt%o.updateArrival == 0

			if modelChanged && (dueByInterval || dueByArrival) {
				extractAndRecord(arrivalCnt)
				lastUpdateTime = event.Instant
				modelChanged = false
			}
		}

		if modelChanged {
			extractAndRecord(arrivalCnt)
		}
		if current == nil {
			current = sys.ExtractModel()
		}
	}

	if o.print || o.outputPath == "" {
		printModels(current)
	}

	if o.outputPath != "" {
		if err := os.MkdirAll(o.outputPath, 0o755); err != nil {
			return &IOError{err: err}
		}

		if o.report {
			if err := periodicReport.WriteYAML(o.outputPath); err != nil {
				return wrapReportErr(err)
			}
			if err := ssReport.WriteYAML(o.outputPath); err != nil {
				return wrapReportErr(err)
			}
		} else {
			out := report.FromSystemModel(current)
			if err := out.WriteYAML(o.outputPath); err != nil {
				return wrapReportErr(err)
			}
		}
	}

	return nil
}

// probeSysconf best-effort reads the local machine's real-time scheduling
// configuration. A probe failure never blocks extraction: it's logged and
// the zero-value SysConf is used instead.
func probeSysconf() sysconf.SysConf {
	conf, err := sysconf.Probe()
	if err != nil {
		slog.Warn("sysconf probe failed, proceeding without system configuration", "error", err)
		return sysconf.Default()
	}
	return conf
}

func loadConfig(o opts) (*config.Config, error) {
	var cfg *config.Config
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return nil, &IOError{err: err}
		}
		cfg = c
	} else {
		cfg = config.Default()
	}

	cfg.JitterBound = rtime.FromMs(o.jitterBoundMs)
	cfg.Resolution = rtime.FromUs(o.resolutionUs)
	cfg.WindowSize = o.windowSize
	cfg.MaxSignalLen = o.maxSignalLen
	cfg.FFTCutoff = o.fftCutoff
	cfg.PeriodicEnabled = !o.noPeriodic
	cfg.SpectralEnabled = !o.noSpectral
	cfg.RBFEnabled = !o.noRBF

	return cfg, nil
}

func loadTrace(o opts) (*trace.Trace, error) {
	switch o.sourceFormat {
	case "yaml":
		tr, err := trace.LoadYAMLFile(o.sourcePath)
		if err != nil {
			return nil, &TraceError{err: err}
		}
		return tr, nil
	case "text":
		f, err := os.Open(o.sourcePath)
		if err != nil {
			return nil, &TraceError{err: err}
		}
		defer f.Close()

		events, err := ftracebind.Drain(ftracebind.NewTextSource(f))
		if err != nil {
			return nil, &TraceError{err: err}
		}

		tr := trace.New()
		for _, e := range events {
			if err := tr.Push(e); err != nil {
				return nil, &TraceError{err: err}
			}
		}
		return tr, nil
	default:
		return nil, &TraceError{err: fmt.Errorf("unknown --source-format %q", o.sourceFormat)}
	}
}

func recordSample(
	periodicReport *report.Report[model.PeriodicTask],
	ssReport *report.Report[model.PeriodicSelfSuspendingTask],
	sm *model.SystemModel[model.CompositeModel],
	arrivalCnt int,
) {
	for _, id := range sm.TaskIDs() {
		m, ok := sm.Model(id)
		if !ok {
			continue
		}
		periodicReport.PushSample(id, arrivalCnt, m.Periodic)
		ssReport.PushSample(id, arrivalCnt, m.PeriodicSS)
	}
}

func printModels(sm *model.SystemModel[model.CompositeModel]) {
	if sm == nil {
		return
	}
	for _, id := range sm.TaskIDs() {
		fmt.Printf("task %d:\n", id)
		m, ok := sm.Model(id)
		if !ok {
			fmt.Println("  no model")
			continue
		}
		switch {
		case m.Periodic != nil:
			p := m.Periodic
			fmt.Printf("  periodic: period=%s offset=%s jitter=%s wcet=%s\n", p.Period, p.Offset, p.Jitter, p.WCET)
		case m.PeriodicSS != nil:
			p := m.PeriodicSS
			fmt.Printf("  self-suspending: period=%s segments=%d total_wcet=%s total_wcss=%s\n",
				p.Period, p.ComputationSegments(), p.TotalWCET, p.TotalWCSS)
		default:
			fmt.Println("  not periodic")
		}
	}
}

func wrapReportErr(err error) error {
	if errors.Is(err, report.ErrOutputExists) {
		return &IOError{err: err}
	}
	return &SerializationError{err: err}
}
