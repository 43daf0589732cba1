// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/katalvlaran/snsed/model"
)

// ErrEmpty is returned when there is nothing to draw.
var ErrEmpty = errors.New("report: nothing to plot")

// Image size of every PNG.
var (
	PNGWidth  = vg.Points(800)
	PNGHeight = vg.Points(450)
)

var palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 148, G: 103, B: 189, A: 255},
	color.RGBA{R: 23, G: 190, B: 207, A: 255},
}

// magPoints adapts the defined magnitudes of a curve to plotter.XYer and
// plotter.YErrorer.
type magPoints []model.Magnitude

func (m magPoints) Len() int { return len(m) }
func (m magPoints) XY(i int) (float64, float64) { return m[i].Tobs, m[i].Mag }
func (m magPoints) YError(i int) (float64, float64) { return m[i].MagErr, m[i].MagErr }

func (m magPoints) defined() magPoints {
	out := make(magPoints, 0, len(m))
	for _, mg := range m {
		if mg.Defined() {
			out = append(out, mg)
		}
	}
	return out
}

// LightCurvePNG draws magnitude against observer-frame epoch, one line with
// error bars per curve. The magnitude axis is inverted. Undefined points
// are skipped; ErrEmpty is returned if no curve has a defined point.
func LightCurvePNG(title string, curves []Curve) ([]byte, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Epoch (d, observer frame)"
	p.Y.Label.Text = "Magnitude"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Add(plotter.NewGrid())

	drawn := 0
	for i, c := range curves {
		pts := magPoints(c.Points).defined()
		if len(pts) == 0 {
			continue
		}
		col := palette[i%len(palette)]

		line, scatter, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("LightCurvePNG %s: %w", c.Filter, err)
		}
		line.Color = col
		line.Width = vg.Points(1.5)
		scatter.GlyphStyle.Color = col
		bars, err := plotter.NewYErrorBars(pts)
		if err != nil {
			return nil, fmt.Errorf("LightCurvePNG %s: %w", c.Filter, err)
		}
		bars.Color = col

		p.Add(line, scatter, bars)
		p.Legend.Add(c.Filter, line, scatter)
		drawn++
	}
	if drawn == 0 {
		return nil, ErrEmpty
	}
	p.Legend.Top = true
	return render(p)
}

// SpectrumPNG draws flux against rest-frame wavelength, one line per
// spectrum.
func SpectrumPNG(title string, spectra []Spectrum) ([]byte, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Rest wavelength (Å)"
	p.Y.Label.Text = "Flux"
	p.Add(plotter.NewGrid())

	drawn := 0
	for i, s := range spectra {
		if len(s.Bins) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Bins))
		for k, b := range s.Bins {
			xys[k] = plotter.XY{X: b.LamRest, Y: b.Flux}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("SpectrumPNG %s: %w", s.Label, err)
		}
		line.Color = palette[i%len(palette)]
		line.Width = vg.Points(1.2)
		p.Add(line)
		p.Legend.Add(s.Label, line)
		drawn++
	}
	if drawn == 0 {
		return nil, ErrEmpty
	}
	p.Legend.Top = true
	return render(p)
}

func render(p *plot.Plot) ([]byte, error) {
	w, err := p.WriterTo(PNGWidth, PNGHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("plot writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("plot render: %w", err)
	}
	return buf.Bytes(), nil
}
