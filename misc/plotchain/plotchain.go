// Command plotchain renders a trace plot and a marginal histogram
// from a chain file written by the sampler.
package main

import (
	"flag"
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/thelegend6420/queso/sequence"
)

func main() {
	component := flag.Int("component", 0, "parameter component to plot")
	bins := flag.Int("bins", 50, "number of histogram bins")
	traceOut := flag.String("trace", "trace.png", "trace plot output file")
	histOut := flag.String("hist", "hist.png", "histogram output file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: plotchain [options] <chain file>")
		os.Exit(1)
	}

	rows, err := sequence.ReadMatlabRows(flag.Arg(0))
	if err != nil {
		panic(err)
	}
	if len(rows) == 0 {
		panic("chain file holds no positions")
	}
	if *component >= len(rows[0]) {
		panic(fmt.Sprintf("component %d out of range, chain dimension is %d", *component, len(rows[0])))
	}

	xs := make([]float64, len(rows))
	for i, row := range rows {
		xs[i] = row[*component]
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Chain trace, component %d", *component)
	p.X.Label.Text = "position"
	p.Y.Label.Text = "value"

	pts := make(plotter.XYs, len(xs))
	for i, x := range xs {
		pts[i].X = float64(i)
		pts[i].Y = x
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		panic(err)
	}
	p.Add(line)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, *traceOut); err != nil {
		panic(err)
	}

	h := plot.New()
	h.Title.Text = fmt.Sprintf("Marginal histogram, component %d", *component)
	values := make(plotter.Values, len(xs))
	copy(values, xs)
	hist, err := plotter.NewHist(values, *bins)
	if err != nil {
		panic(err)
	}
	hist.Normalize(1)
	h.Add(hist)
	if err := h.Save(6*vg.Inch, 4*vg.Inch, *histOut); err != nil {
		panic(err)
	}
}
