// Command sedplot builds a model from a YAML configuration and inspects it:
// load diagnostics, magnitude tables, covariance matrices, and PNG/PDF
// reports of light curves and SED slices.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/snsed/config"
	"github.com/katalvlaran/snsed/model"
	"github.com/katalvlaran/snsed/report"
)

// command describes a CLI subcommand.
type command struct {
	name  string
	short string
	run   func(env *env, args []string) error
}

var commands = []command{
	{name: "check", short: "Build the model and print its load diagnostics", run: runCheck},
	{name: "mags", short: "Print magnitudes for every plot filter and epoch", run: runMags},
	{name: "cov", short: "Print the magnitude covariance of the plot epochs", run: runCov},
	{name: "plot", short: "Write light-curve and SED PNGs and a PDF summary", run: runPlot},
}

var errUsage = errors.New("usage")

// env is the state shared by every subcommand.
type env struct {
	out   io.Writer
	model *model.Model
	plot  *config.Plot
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage:\n  sedplot [-config file.yaml] <command>\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-6s %s\n", c.name, c.short)
	}
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatalf("sedplot: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sedplot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("config", "sedplot.yaml", "YAML configuration")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%v: %w", err, errUsage)
	}
	if fs.NArg() == 0 {
		printUsage(out)
		return nil
	}
	name := fs.Arg(0)
	for _, c := range commands {
		if c.name != name {
			continue
		}
		e, err := load(*path, out)
		if err != nil {
			return err
		}
		return c.run(e, fs.Args()[1:])
	}
	return fmt.Errorf("unknown command %q: %w", name, errUsage)
}

func load(path string, out io.Writer) (*env, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config %s not found", path)
	}
	in, err := cfg.Synthetic.Inputs()
	if err != nil {
		return nil, err
	}
	entries, err := cfg.Calib()
	if err != nil {
		return nil, err
	}
	in.Calib = append(in.Calib, entries...)
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	m, err := model.New(in, opts...)
	if err != nil {
		return nil, err
	}
	p := cfg.Plot
	if p == nil {
		p = &config.Plot{From: -15, To: 40, Step: 5}
	}
	return &env{out: out, model: m, plot: p}, nil
}

func (e *env) query() report.Query {
	return report.Query{Z: e.plot.Z, SN: e.plot.SN(), Host: e.plot.Host(), MWEBV: e.plot.MWEBV}
}

func runCheck(e *env, _ []string) error {
	d := e.model.Diagnostics()
	fmt.Fprintf(e.out, "version %s\n", d.Version)
	fmt.Fprintf(e.out, "filters %s\n", strings.Join(e.model.FilterNames(), " "))
	fmt.Fprintf(e.out, "calib   %d entries\n", e.model.Calib().Len())
	for _, md := range d.Maps {
		fmt.Fprintf(e.out, "map %-9s nan=%d crazy=%d\n", md.ID, md.NaN, md.Crazy)
	}
	fmt.Fprintf(e.out, "bad values %d\n", d.BadValues)
	for _, id := range d.BadRange {
		fmt.Fprintf(e.out, "map %-9s narrower than the sed grid\n", id)
	}
	return nil
}

func runMags(e *env, _ []string) error {
	epochs, err := e.plot.Epochs()
	if err != nil {
		return err
	}
	curves, err := report.LightCurves(e.model, e.plot.Filters, epochs, e.query())
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%-10s %8s %9s %8s\n", "filter", "tobs", "mag", "magerr")
	for _, r := range report.Rows(curves) {
		fmt.Fprintf(e.out, "%-10s %8.2f %9.4f %8.4f\n", r.Filter, r.Mag.Tobs, r.Mag.Mag, r.Mag.MagErr)
	}
	return nil
}

func runCov(e *env, _ []string) error {
	epochs, err := e.plot.Epochs()
	if err != nil {
		return err
	}
	filters := e.plot.Filters
	if len(filters) == 0 {
		filters = e.model.FilterNames()
	}
	var obs []model.Observation
	for _, f := range filters {
		for _, t := range epochs {
			obs = append(obs, model.Observation{Filter: f, Tobs: t})
		}
	}
	q := e.query()
	cov, err := e.model.Covariance(obs, q.Z, q.SN, q.Host, q.MWEBV)
	if err != nil && !errors.Is(err, model.ErrIllConditioned) {
		return err
	}
	fmt.Fprintf(e.out, "%.4g\n", mat.Formatted(cov, mat.Squeeze()))
	return err
}

func runPlot(e *env, _ []string) error {
	epochs, err := e.plot.Epochs()
	if err != nil {
		return err
	}
	q := e.query()
	curves, err := report.LightCurves(e.model, e.plot.Filters, epochs, q)
	if err != nil {
		return err
	}
	lc, err := report.LightCurvePNG(e.model.Version()+" light curves", curves)
	if err != nil {
		return err
	}
	days := e.plot.SEDDays
	if len(days) == 0 {
		days = []float64{0}
	}
	slices, err := report.SEDSlices(e.model, days, q)
	if err != nil {
		return err
	}
	spec, err := report.SpectrumPNG(e.model.Version()+" SED", slices)
	if err != nil {
		return err
	}

	dir := e.plot.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, img := range map[string][]byte{"lightcurve.png": lc, "sed.png": spec} {
		if err := os.WriteFile(filepath.Join(dir, name), img, 0o644); err != nil {
			return err
		}
	}

	output := e.plot.Output
	if output == "" {
		output = filepath.Join(dir, "summary.pdf")
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	sum := report.Summary{
		Title: e.model.Version(),
		Lines: []string{
			fmt.Sprintf("z=%g  x0=%g  x1=%g  c=%g  E(B-V)mw=%g", q.Z, q.SN.X0, q.SN.X1, q.SN.C, q.MWEBV),
			fmt.Sprintf("mB=%.3f", e.model.MBFromX0(q.SN.X0)),
		},
		Rows: report.Rows(curves),
		Figures: []report.Figure{
			{Name: "lightcurve", PNG: lc, Caption: "Light curves"},
			{Name: "sed", PNG: spec, Caption: "SED slices"},
		},
	}
	if err := report.WritePDF(f, sum); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "wrote %s\n", output)
	return nil
}
