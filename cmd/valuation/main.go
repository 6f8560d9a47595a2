// Command valuation values the Earth and Mars businesses from a scenario
// file and optionally simulates the spread of outcomes.
//
//	valuation earth|mars|total [-scenario file] [-tam file] [-save] [-json]
//	valuation simulate [-samples n] [-seed n] [-workers n] [-dist file] ...
//	valuation report [-simulate] [-html file] ...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"aerospace_valuation/pkg/core/assumption"
	"aerospace_valuation/pkg/core/logging"
	"aerospace_valuation/pkg/core/montecarlo"
	"aerospace_valuation/pkg/core/pipeline"
	"aerospace_valuation/pkg/core/report"
	"aerospace_valuation/pkg/core/scenario"
	"aerospace_valuation/pkg/core/store"
	"aerospace_valuation/pkg/core/tam"
	"aerospace_valuation/pkg/models"

	"github.com/joho/godotenv"
)

type options struct {
	scenarioPath string
	tamPath      string
	distPath     string
	save         bool
	asJSON       bool
	samples      int
	seed         int64
	workers      int
	simulate     bool
	htmlPath     string
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: valuation earth|mars|total|simulate|report [flags]")
	os.Exit(2)
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found, assuming environment variables are set.")
	}
	logger := logging.NewLogger(os.Stderr, logging.ParseLevel(os.Getenv("VALUATION_LOG_LEVEL")))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
	}
	cmd := os.Args[1]

	var opts options
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.StringVar(&opts.scenarioPath, "scenario", "", "scenario YAML file (default: base case)")
	fs.StringVar(&opts.tamPath, "tam", "", "market-sizing dataset (json, hjson or yaml; default: embedded)")
	fs.BoolVar(&opts.save, "save", false, "persist the run (DATABASE_URL and/or VALUATION_RESULTS_DIR)")
	fs.BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	fs.StringVar(&opts.distPath, "dist", "", "distribution set YAML (default: legacy base case)")
	fs.IntVar(&opts.samples, "samples", montecarlo.DefaultSamples, "Monte Carlo samples")
	fs.Int64Var(&opts.seed, "seed", -1, "random seed (negative: fresh seed)")
	fs.IntVar(&opts.workers, "workers", 0, "concurrent samples (default: GOMAXPROCS)")
	fs.BoolVar(&opts.simulate, "simulate", false, "include a simulation in the report")
	fs.StringVar(&opts.htmlPath, "html", "", "write the report as HTML to this file")
	_ = fs.Parse(os.Args[2:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	if err := run(ctx, cmd, opts); err != nil {
		logging.LogError(logger, "valuation failed", err, slog.String("command", cmd))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, opts options) error {
	in := scenario.BaseCase()
	if opts.scenarioPath != "" {
		var err error
		if in, err = scenario.LoadFile(opts.scenarioPath); err != nil {
			return err
		}
	}

	var provider tam.Provider = tam.DefaultProvider()
	if opts.tamPath != "" {
		provider = tam.FileProvider{Path: opts.tamPath}
	}
	table, err := tam.LoadFrom(ctx, provider)
	if err != nil {
		return err
	}

	var pipeOpts []pipeline.Option
	if opts.save {
		repo, closeRepo, err := openRepository(ctx)
		if err != nil {
			return err
		}
		defer closeRepo()
		pipeOpts = append(pipeOpts, pipeline.WithRepository(repo))
	}
	p := pipeline.NewOrchestrator(table, pipeOpts...)

	switch cmd {
	case "earth", "mars", "total":
		res, err := p.Run(ctx, pipeline.Kind(cmd), in)
		if err != nil {
			return err
		}
		if opts.asJSON {
			return printJSON(res)
		}
		fmt.Printf("Earth: %10.3f $B\nMars:  %10.4f $B\nTotal: %10.2f $B\n", res.Earth, res.Mars, res.Total)
		return nil

	case "simulate":
		res, summary, err := simulate(ctx, p, in, opts)
		if err != nil {
			return err
		}
		if opts.asJSON {
			return printJSON(struct {
				Result  models.ValuationResult `json:"result"`
				Summary *montecarlo.Summary    `json:"summary"`
			}{res, summary})
		}
		fmt.Printf("Samples:    %d/%d (seed %d)\n", summary.Succeeded, summary.Requested, summary.Seed)
		fmt.Printf("Bear:       %10.2f $B\nBase:       %10.2f $B\nOptimistic: %10.2f $B\n",
			res.Breakdown.Bear, res.Breakdown.Base, res.Breakdown.Optimistic)
		return nil

	case "report":
		detail, err := p.Value(in)
		if err != nil {
			return err
		}
		var summary *montecarlo.Summary
		if opts.simulate {
			if _, summary, err = simulate(ctx, p, in, opts); err != nil {
				return err
			}
		}
		md := report.Markdown(detail, summary)
		if opts.htmlPath == "" {
			fmt.Print(md)
			return nil
		}
		page, err := report.Page("Valuation", md)
		if err != nil {
			return err
		}
		return os.WriteFile(opts.htmlPath, []byte(page), 0o644)

	default:
		usage()
		return nil
	}
}

func simulate(ctx context.Context, p *pipeline.Orchestrator, in scenario.ScenarioInputs, opts options) (models.ValuationResult, *montecarlo.Summary, error) {
	set := assumption.LegacyBaseCase()
	if opts.distPath != "" {
		var err error
		if set, err = assumption.LoadSet(opts.distPath); err != nil {
			return models.ValuationResult{}, nil, err
		}
	}
	cfg := montecarlo.Config{Samples: opts.samples, Workers: opts.workers}
	if opts.seed >= 0 {
		seed := uint64(opts.seed)
		cfg.Seed = &seed
	}
	return p.Simulate(ctx, in, set, cfg)
}

// openRepository mirrors runs to VALUATION_RESULTS_DIR and, when
// DATABASE_URL is set, stores them in Postgres first.
func openRepository(ctx context.Context) (store.Repository, func(), error) {
	files, err := store.NewFileRepository(os.Getenv("VALUATION_RESULTS_DIR"))
	if err != nil {
		return nil, nil, err
	}
	if os.Getenv("DATABASE_URL") == "" {
		return files, func() {}, nil
	}
	if err := store.InitDB(ctx); err != nil {
		return nil, nil, err
	}
	if err := store.EnsureSchema(ctx, store.GetPool()); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store.NewHybridRepository(store.NewPostgresRepository(store.GetPool()), files), store.Close, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
