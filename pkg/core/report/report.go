// Package report renders valuation results as markdown and HTML.
package report

import (
	"fmt"
	"strings"

	"aerospace_valuation/pkg/core/earth"
	"aerospace_valuation/pkg/core/mars"
	"aerospace_valuation/pkg/core/montecarlo"
	"aerospace_valuation/pkg/core/pipeline"
	"aerospace_valuation/pkg/core/projection"
	"aerospace_valuation/pkg/core/scenario"
	"aerospace_valuation/pkg/core/validate"
)

// Markdown builds the full report. summary may be nil.
func Markdown(d *pipeline.Detail, summary *montecarlo.Summary) string {
	var b strings.Builder
	in := d.Inputs

	fmt.Fprintf(&b, "# Valuation %d-%d\n\n", in.Financial.ValuationYear, in.HorizonYear())

	b.WriteString("## Valuation\n\n")
	b.WriteString("| Segment | Value ($B) |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Earth | %.3f |\n", d.Valuation.Earth)
	fmt.Fprintf(&b, "| Mars | %.4f |\n", d.Valuation.Mars)
	fmt.Fprintf(&b, "| Total (%d dollars) | %.2f |\n\n", in.HorizonYear(), d.Valuation.Total)

	writeMarsGate(&b, d.Mars)

	if summary != nil {
		writeSimulation(&b, summary)
	}

	b.WriteString("## Earth projection ($M)\n\n")
	writeSeries(&b, d.Earth.Projections, []string{earth.DriverFleet, earth.DriverMarketMultiplier})
	writeGrowth(&b, d.Earth.Projections, in, []string{earth.LineBroadbandRevenue, earth.LineLaunchRevenue})

	b.WriteString("## Mars projection ($M)\n\n")
	writeSeries(&b, d.Mars.Projections, []string{mars.DriverPopulation, mars.DriverRobots})

	writeInputs(&b, in)
	return b.String()
}

func writeMarsGate(b *strings.Builder, v mars.Valuation) {
	b.WriteString("### Mars option\n\n")
	decision := "abandon"
	if v.Gate.Continue {
		decision = "continue"
	}
	irr := "undefined"
	switch {
	case v.Gate.Unbounded:
		irr = "unbounded"
	case v.Gate.Defined:
		irr = fmt.Sprintf("%.2f%%", v.Gate.IRR*100)
	}
	fmt.Fprintf(b, "- Colony value: %.1f $M\n", v.ColonyValue)
	fmt.Fprintf(b, "- Early investment value: %.1f $M\n", v.EarlyInvestmentValue)
	fmt.Fprintf(b, "- Abandonment cost: %.1f $M\n", v.AbandonmentCost)
	fmt.Fprintf(b, "- Colony IRR: %s against hurdle %.2f%%: **%s**\n\n", irr, v.Gate.HurdleRate*100, decision)
}

func writeSimulation(b *strings.Builder, s *montecarlo.Summary) {
	b.WriteString("## Simulation\n\n")
	fmt.Fprintf(b, "%d of %d samples valued (seed %d).\n\n", s.Succeeded, s.Requested, s.Seed)
	b.WriteString("| Scenario | Total ($B) |\n|---|---:|\n")
	fmt.Fprintf(b, "| Bear (p25) | %.2f |\n", s.Bear)
	fmt.Fprintf(b, "| Base (mean) | %.2f |\n", s.Base)
	fmt.Fprintf(b, "| Median | %.2f |\n", s.Median)
	fmt.Fprintf(b, "| Optimistic (p75) | %.2f |\n", s.Optimistic)
	fmt.Fprintf(b, "| Std dev | %.2f |\n\n", s.StdDev)
}

func writeSeries(b *strings.Builder, s projection.Series, drivers []string) {
	b.WriteString("| Year | Revenue | Cost | Cash flow |")
	for _, d := range drivers {
		fmt.Fprintf(b, " %s |", d)
	}
	b.WriteString("\n|---|---:|---:|---:|")
	for range drivers {
		b.WriteString("---:|")
	}
	b.WriteString("\n")
	for _, y := range s {
		fmt.Fprintf(b, "| %d | %.1f | %.1f | %.1f |", y.Year, y.Revenue, y.Cost, y.CashFlow)
		for _, d := range drivers {
			fmt.Fprintf(b, " %.4g |", y.Lines[d])
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeGrowth(b *strings.Builder, s projection.Series, in scenario.ScenarioInputs, lines []string) {
	first, last := in.Financial.ValuationYear, in.HorizonYear()
	var rows []string
	for _, line := range lines {
		r, err := validate.CAGRFromSeries(s, line, first, last)
		if err != nil || r.StartValue <= 0 {
			continue
		}
		rows = append(rows, fmt.Sprintf("- %s: %.1f%% a year", line, r.CAGR))
	}
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(b, "Growth %d-%d:\n\n%s\n\n", first, last, strings.Join(rows, "\n"))
}

func writeInputs(b *strings.Builder, in scenario.ScenarioInputs) {
	b.WriteString("## Inputs\n\n| Field | Value |\n|---|---:|\n")
	for _, name := range scenario.Fields() {
		v, err := in.Get(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(b, "| %s | %g |\n", name, v)
	}
	fmt.Fprintf(b, "| mars.industrial_bootstrap | %t |\n", in.Mars.IndustrialBootstrap)
}
