package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"

	"golang.org/x/exp/constraints"

	"github.com/geraintbjones/think-cell/internal/app/intervalfuzz"
	"github.com/geraintbjones/think-cell/internal/fuzz"
	"github.com/geraintbjones/think-cell/internal/intervalmap"
	"github.com/geraintbjones/think-cell/internal/trace"
)

var (
	domainFlag      = flag.Int("domain", 20, "Number of keys exercised")
	valuesFlag      = flag.String("values", "A-F", "Assigned values, as a range (A-F) or a list (xyz)")
	baseFlag        = flag.String("base", "A", "Base value")
	failureRateFlag = flag.Float64("failure-rate", 0, "Fraction of value copies that fail")
	seedFlag        = flag.Int64("seed", 0, "Random seed (0 for time based)")
	backendFlag     = flag.String("backend", "btree", "Breakpoint store: btree, tidwall or radix")
	reportFlag      = flag.Bool("report", true, "Print every step")
	verboseFlag     = flag.Bool("verbose", false, "Verbose logging")

	traceFlag  = flag.String("trace", "", "Record every op to this file")
	replayFlag = flag.String("replay", "", "Replay ops recorded with -trace instead of fuzzing")

	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <number of random tests>\n", os.Args[0])
	fmt.Fprintf(flag.CommandLine.Output(), "       %s [flags] -replay <trace file>\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *verboseFlag {
		slog.SetDefault(slog.New(slog.NewTextHandler(
			os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var iterations int
	if *replayFlag == "" {
		if flag.NArg() != 1 {
			flag.Usage()
			os.Exit(1)
		}
		var err error
		iterations, err = intervalfuzz.ParseCount(flag.Arg(0))
		if err != nil {
			log.Printf("Invalid number of tests: %s", flag.Arg(0))
			flag.Usage()
			os.Exit(1)
		}
	}

	values, err := intervalfuzz.ParseValues(*valuesFlag)
	if err != nil {
		log.Printf("Invalid values flag: %v", err)
		os.Exit(1)
	}
	if len(*baseFlag) != 1 {
		log.Printf("Base value must be a single character: %q", *baseFlag)
		os.Exit(1)
	}
	backend, err := intervalmap.ParseBackend(*backendFlag)
	if err != nil {
		log.Print(err)
		os.Exit(1)
	}

	cfg := fuzz.Config{
		Iterations:  iterations,
		Domain:      *domainFlag,
		Values:      values,
		Base:        (*baseFlag)[0],
		FailureRate: *failureRateFlag,
		Seed:        *seedFlag,
		Backend:     backend,
	}
	if *reportFlag {
		cfg.Report = os.Stdout
	}

	res, err := fuzzMain(cfg)
	slog.Info("intervalfuzz: done", "iterations", res.Iterations, "failures", res.Failures,
		"empty_ranges", res.Skipped, "breakpoints", res.Breakpoints)
	if errors.Is(err, context.Canceled) {
		log.Println("Interrupted.")
	} else if err != nil {
		log.Println("Error: ", err)
		os.Exit(1)
	}
}

func fuzzMain(cfg fuzz.Config) (fuzz.Result, error) {
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if *traceFlag != "" {
		f, err := os.Create(*traceFlag)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		tw := trace.NewWriter(f)
		// Flushed even when the run stops on a mismatch, so it can be replayed.
		defer func() {
			if err := tw.Close(); err != nil {
				log.Printf("Error writing trace: %v", err)
			}
		}()
		cfg.Trace = tw
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Backend == intervalmap.BackendRadix {
		return run[uint64](ctx, cfg)
	}
	return run[int](ctx, cfg)
}

func run[K constraints.Integer](ctx context.Context, cfg fuzz.Config) (fuzz.Result, error) {
	if *replayFlag != "" {
		f, err := os.Open(*replayFlag)
		if err != nil {
			return fuzz.Result{}, err
		}
		defer f.Close()
		ops, err := trace.NewReader(f).ReadAll()
		if err != nil {
			return fuzz.Result{}, fmt.Errorf("reading %s: %w", *replayFlag, err)
		}
		slog.Info("intervalfuzz: replaying trace", "file", *replayFlag, "ops", len(ops))
		return fuzz.Replay[K](ctx, cfg, ops)
	}

	h, err := fuzz.New[K](cfg)
	if err != nil {
		return fuzz.Result{}, err
	}
	return h.Run(ctx)
}
