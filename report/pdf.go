package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/katalvlaran/snsed/model"
)

// Page geometry, mm (A4 portrait).
const (
	pageWidth    = 210.0
	pageMargin   = 15.0
	contentWidth = pageWidth - 2*pageMargin
	lineHeight   = 6.0
)

// Row is one table line of the summary.
type Row struct {
	Filter string
	Mag    model.Magnitude
}

// Figure is a PNG embedded below the table.
type Figure struct {
	Name    string
	PNG     []byte
	Caption string
}

// Summary is the content of a model report.
type Summary struct {
	Title   string
	Lines   []string // free-form parameter lines under the title
	Rows    []Row
	Figures []Figure
}

var rowHeader = []string{"Filter", "Epoch", "Mag", "MagErr", "Flux", "Flag"}
var rowWidths = []float64{40, 25, 30, 30, 40, 15}

// WritePDF renders s to w.
func WritePDF(w io.Writer, s Summary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()
	_, pageH := pdf.GetPageSize()

	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(contentWidth, 9, s.Title, "", "L", false)
	pdf.SetFont("Arial", "", 10)
	for _, ln := range s.Lines {
		pdf.MultiCell(contentWidth, lineHeight, ln, "", "L", false)
	}
	pdf.Ln(4)

	if len(s.Rows) > 0 {
		writeTable(pdf, s.Rows)
		pdf.Ln(6)
	}

	for _, f := range s.Figures {
		opt := gofpdf.ImageOptions{ImageType: "PNG"}
		info := pdf.RegisterImageOptionsReader(f.Name, opt, bytes.NewReader(f.PNG))
		if pdf.Err() {
			return fmt.Errorf("WritePDF image %s: %w", f.Name, pdf.Error())
		}
		h := contentWidth * info.Height() / info.Width()
		if pdf.GetY()+h > pageH-pageMargin {
			pdf.AddPage()
		}
		pdf.ImageOptions(f.Name, pageMargin, pdf.GetY(), contentWidth, h, true, opt, 0, "")
		if f.Caption != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(contentWidth, lineHeight, f.Caption, "", "C", false)
		}
		pdf.Ln(4)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("WritePDF: %w", err)
	}
	return nil
}

func writeTable(pdf *gofpdf.Fpdf, rows []Row) {
	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(220, 220, 220)
		for i, h := range rowHeader {
			pdf.CellFormat(rowWidths[i], lineHeight, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	header()
	_, pageH := pdf.GetPageSize()
	for _, r := range rows {
		if pdf.GetY()+lineHeight > pageH-pageMargin {
			pdf.AddPage()
			header()
		}
		cells := []string{
			r.Filter,
			strconv.FormatFloat(r.Mag.Tobs, 'f', 1, 64),
			magString(r.Mag.Mag, r.Mag.Defined()),
			magString(r.Mag.MagErr, r.Mag.Defined()),
			strconv.FormatFloat(r.Mag.Flux, 'g', 5, 64),
			flag(r.Mag),
		}
		for i, c := range cells {
			pdf.CellFormat(rowWidths[i], lineHeight, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func magString(v float64, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// flag: Z forced zero, U undefined.
func flag(m model.Magnitude) string {
	switch {
	case m.ForcedZero:
		return "Z"
	case !m.Defined():
		return "U"
	}
	return ""
}
