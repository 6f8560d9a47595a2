package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"aerospace_valuation/pkg/core/assumption"
	"aerospace_valuation/pkg/core/logging"
	"aerospace_valuation/pkg/core/montecarlo"
	"aerospace_valuation/pkg/core/pipeline"
	"aerospace_valuation/pkg/core/scenario"
	"aerospace_valuation/pkg/core/tam"

	"github.com/joho/godotenv"
)

// response is written to stdout as one JSON document.
type response struct {
	Mode    string              `json:"mode"`
	Result  any                 `json:"result,omitempty"`
	Summary *montecarlo.Summary `json:"summary,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func main() {
	_ = godotenv.Load()
	mode := flag.String("mode", "total", "Mode: earth, mars, total or simulate")
	dataStr := flag.String("data", "", "scenario payload (JSON or YAML); '-' reads stdin")
	samples := flag.Int("samples", montecarlo.DefaultSamples, "samples for simulate")
	seed := flag.Uint64("seed", 1, "seed for simulate")
	flag.Parse()

	logger := logging.NewLogger(os.Stderr, logging.ParseLevel(os.Getenv("VALUATION_LOG_LEVEL")))
	ctx := logging.WithLogger(context.Background(), logger)

	if *dataStr == "" {
		fail(*mode, fmt.Errorf("no data provided"))
	}
	payload := []byte(*dataStr)
	if *dataStr == "-" {
		var err error
		if payload, err = io.ReadAll(os.Stdin); err != nil {
			fail(*mode, err)
		}
	}

	in, err := scenario.Parse(payload)
	if err != nil {
		fail(*mode, err)
	}
	table, err := tam.LoadFrom(ctx, tam.DefaultProvider())
	if err != nil {
		fail(*mode, err)
	}
	p := pipeline.NewOrchestrator(table)

	resp := response{Mode: *mode}
	switch *mode {
	case "earth", "mars", "total":
		res, err := p.Run(ctx, pipeline.Kind(*mode), in)
		if err != nil {
			fail(*mode, err)
		}
		resp.Result = res
	case "simulate":
		res, summary, err := p.Simulate(ctx, in, assumption.LegacyBaseCase(),
			montecarlo.Config{Samples: *samples, Seed: seed})
		if err != nil {
			fail(*mode, err)
		}
		resp.Result, resp.Summary = res, summary
	default:
		fail(*mode, fmt.Errorf("unknown mode: %s", *mode))
	}
	write(resp)
}

func fail(mode string, err error) {
	write(response{Mode: mode, Error: err.Error()})
	os.Exit(1)
}

func write(resp response) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding response: %v\n", err)
		os.Exit(1)
	}
}
