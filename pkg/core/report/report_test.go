package report

import (
	"context"
	"strings"
	"testing"

	"aerospace_valuation/pkg/core/assumption"
	"aerospace_valuation/pkg/core/montecarlo"
	"aerospace_valuation/pkg/core/pipeline"
	"aerospace_valuation/pkg/core/scenario"
	"aerospace_valuation/pkg/core/tam"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseDetail(t *testing.T) (*pipeline.Orchestrator, *pipeline.Detail) {
	t.Helper()
	table, err := tam.LoadFrom(context.Background(), tam.DefaultProvider())
	require.NoError(t, err)
	p := pipeline.NewOrchestrator(table)
	d, err := p.Value(scenario.BaseCase())
	require.NoError(t, err)
	return p, d
}

func TestMarkdown(t *testing.T) {
	_, d := baseDetail(t)
	out := Markdown(d, nil)

	assert.True(t, strings.HasPrefix(out, "# Valuation 2024-2050"))
	assert.Contains(t, out, "| Earth | ")
	assert.Contains(t, out, "**continue**")
	assert.Contains(t, out, "## Earth projection")
	assert.Contains(t, out, "| 2050 |")
	assert.Contains(t, out, "| earth.starlink_penetration | 0.15 |")
	assert.Contains(t, out, "| mars.industrial_bootstrap | true |")
	assert.Contains(t, out, "broadband_revenue:")
	assert.NotContains(t, out, "## Simulation")
}

func TestMarkdownWithSimulation(t *testing.T) {
	p, d := baseDetail(t)
	seed := uint64(1)
	_, summary, err := p.Simulate(context.Background(), scenario.BaseCase(), assumption.LegacyBaseCase(),
		montecarlo.Config{Samples: 200, Seed: &seed})
	require.NoError(t, err)

	out := Markdown(d, summary)
	assert.Contains(t, out, "## Simulation")
	assert.Contains(t, out, "200 of 200 samples valued (seed 1)")
	assert.Contains(t, out, "| Bear (p25) |")
}

func TestHTML(t *testing.T) {
	_, d := baseDetail(t)

	html, err := HTML(Markdown(d, nil))
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Valuation 2024-2050</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<strong>continue</strong>")

	page, err := Page("Valuation", "# Hi\n")
	require.NoError(t, err)
	assert.Contains(t, page, "<title>Valuation</title>")
	assert.Contains(t, page, "<h1>Hi</h1>")
}

func TestSections(t *testing.T) {
	assert.Equal(t, 0, Sections(""))
	assert.Equal(t, 2, Sections("# Title\n\nbody\n"))
}
