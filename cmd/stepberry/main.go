// stepberry replays the Paxos and Raft step simulations and prints snapshots
// as JSON for a renderer.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hashicorp/go-hclog"

	"github.com/blockberries/stepberry/sim"
	"github.com/blockberries/stepberry/trace"
	"github.com/blockberries/stepberry/types"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "stepberry: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("stepberry", flag.ContinueOnError)
	fs.SetOutput(stderr)
	protocol := fs.String("protocol", "paxos", "Protocol to simulate (paxos, raft)")
	scenario := fs.String("scenario", "normal", "Scenario (normal, nodeFailure, leaderFailure)")
	step := fs.Int("step", int(types.MaxStep), "Step to replay to (0-10)")
	compare := fs.Bool("compare", false, "Replay both protocols side by side")
	timeline := fs.Bool("timeline", false, "Print every step 0-10 instead of one snapshot")
	traceFile := fs.String("trace", "", "Export the full timeline of the selected protocols to a trace file")
	configFile := fs.String("config", "", "Load configuration overrides from JSON file")
	strict := fs.Bool("strict", false, "Fail on history inconsistencies")
	logLevel := fs.String("log-level", "warn", "Diagnostic log level (trace, debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := hclog.LevelFromString(*logLevel)
	if level == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", *logLevel)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "stepberry",
		Level:  level,
		Output: stderr,
	})

	cfg := sim.DefaultConfig()
	if *configFile != "" {
		loaded, err := sim.LoadConfig(*configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Info("loaded configuration", "path", *configFile)
	}
	if *strict {
		cfg.Strict = true
	}
	cfg.Logger = logger

	s, err := sim.New(cfg)
	if err != nil {
		return err
	}

	target := types.Step(*step)
	if !target.Valid() {
		return fmt.Errorf("step %d outside 0-%d", *step, int(types.MaxStep))
	}
	sc := types.ParseScenario(*scenario)
	if string(sc) != strings.TrimSpace(*scenario) {
		logger.Warn("unknown scenario, using normal", "scenario", *scenario)
	}

	protocols := types.Protocols
	if !*compare {
		p, err := types.ParseProtocol(*protocol)
		if err != nil {
			return err
		}
		protocols = []types.Protocol{p}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *traceFile != "" {
		return export(ctx, s, logger, *traceFile, protocols, sc)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	switch {
	case *timeline:
		out := make(map[types.Protocol]any, len(protocols))
		for _, p := range protocols {
			snaps, err := s.Timeline(ctx, p, sc)
			if err != nil {
				return err
			}
			out[p] = snaps
		}
		return enc.Encode(out)
	case *compare:
		cmp, err := s.Compare(ctx, sc, target)
		if err != nil {
			return err
		}
		return enc.Encode(cmp)
	default:
		snap, err := s.Run(ctx, protocols[0], sc, target)
		if err != nil {
			return err
		}
		return enc.Encode(snap)
	}
}

func export(ctx context.Context, s *sim.Simulator, logger hclog.Logger, path string, protocols []types.Protocol, sc types.Scenario) error {
	w, err := trace.Create(path)
	if err != nil {
		return err
	}
	if err := s.Export(ctx, w, protocols, sc); err != nil {
		w.Close()
		return err
	}
	frames, size := w.Frames(), w.Size()
	if err := w.Close(); err != nil {
		return err
	}
	logger.Info("wrote trace", "path", path, "frames", frames, "bytes", size)
	return nil
}
