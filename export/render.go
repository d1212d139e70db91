package export

import (
	"io"
	"time"

	"github.com/linesmerrill/shift-handover/templates/pptx"
)

const (
	brandColor  = "003366"
	headerFill  = "F1F1F1"
	titleColor  = "FFFFFF"
	subtleColor = "F1F1F1"
)

var (
	surgeryColumns  = []float64{0.6, 2.5, 1, 2.8, 2.8, 2.5}
	handoverColumns = []float64{0.6, 2.2, 1, 3, 5.4}
	twoColumns      = []float64{6.165, 6.165}
)

// Render writes deck as a .pptx file
func Render(w io.Writer, deck Deck, rowsPerSlide int, created time.Time) error {
	p := pptx.Presentation{
		Title:        deck.Title,
		Author:       deck.Author,
		Company:      deck.Company,
		Footer:       deck.Footer,
		RowsPerSlide: rowsPerSlide,
		Created:      created,
	}
	if deck.Logo != nil {
		p.Logo = &pptx.Image{
			Box:  pptx.Box{X: 12.3, Y: 0.25, W: 0.8, H: 0.8},
			Data: deck.Logo.Data,
			Ext:  deck.Logo.Ext,
		}
	}
	for _, s := range deck.Slides {
		p.Slides = append(p.Slides, layout(s))
	}
	return pptx.Write(w, p)
}

func layout(s SlideSpec) pptx.Slide {
	if s.Kind == KindTitle {
		return titleLayout(s)
	}

	slide := pptx.Slide{Texts: []pptx.Text{{
		Box:   pptx.Box{X: 0.5, Y: 0.25, W: pptx.SlideWidth * 0.9, H: 0.75},
		Value: s.Title,
		Size:  28,
		Color: brandColor,
		Bold:  true,
		Align: pptx.AlignCenter,
	}}}

	switch {
	case s.Table != nil:
		slide.Table = tableLayout(s.Kind, *s.Table)
	case s.Message != "":
		slide.Texts = append(slide.Texts, pptx.Text{
			Box:   pptx.Box{X: 0.5, Y: 1.5, W: pptx.SlideWidth * 0.9, H: 1},
			Value: s.Message,
			Size:  18,
			Color: "555555",
			Align: pptx.AlignCenter,
		})
	case s.Body != "":
		slide.Texts = append(slide.Texts, pptx.Text{
			Box:   pptx.Box{X: 0.5, Y: 1.5, W: pptx.SlideWidth * 0.9, H: 5},
			Value: s.Body,
			Size:  18,
			Color: "333333",
			Align: pptx.AlignLeft,
			Top:   true,
		})
	}
	return slide
}

func titleLayout(s SlideSpec) pptx.Slide {
	slide := pptx.Slide{
		Background: brandColor,
		Texts: []pptx.Text{{
			Box:   pptx.Box{X: 0.5, Y: 1.5, W: pptx.SlideWidth * 0.9, H: 1},
			Value: s.Title,
			Size:  36,
			Color: titleColor,
			Bold:  true,
			Align: pptx.AlignCenter,
		}},
	}
	boxes := []struct {
		y, h float64
		size int
	}{
		{3.0, 0.75, 24},
		{4.0, 1.0, 20},
	}
	for i, line := range s.Lines {
		if i >= len(boxes) {
			break
		}
		slide.Texts = append(slide.Texts, pptx.Text{
			Box:   pptx.Box{X: 0.5, Y: boxes[i].y, W: pptx.SlideWidth * 0.9, H: boxes[i].h},
			Value: line,
			Size:  boxes[i].size,
			Color: subtleColor,
			Align: pptx.AlignCenter,
		})
	}
	return slide
}

func tableLayout(kind SlideKind, spec TableSpec) *pptx.Table {
	t := &pptx.Table{
		Box:          pptx.Box{X: 0.5, Y: 1.2},
		ColumnWidths: twoColumns,
		FontSize:     16,
	}
	switch kind {
	case KindScheduledSurgeries, KindEmergencySurgeries:
		t.Box.X = 0.25
		t.ColumnWidths = surgeryColumns
		t.FontSize = 14
	case KindHandover:
		t.Box.X = 0.25
		t.ColumnWidths = handoverColumns
		t.FontSize = 14
	}

	for _, h := range spec.Header {
		t.Header = append(t.Header, pptx.Cell{Value: h, Bold: true, Align: pptx.AlignCenter, Fill: headerFill})
	}
	for _, row := range spec.Rows {
		cells := make([]pptx.Cell, len(row.Cells))
		for i, v := range row.Cells {
			cells[i] = pptx.Cell{Value: v, Bold: row.Bold, Align: columnAlign(kind, i)}
			if kind == KindHandover && i == len(row.Cells)-1 {
				cells[i].Top = true
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// columnAlign centres counts, row numbers and birth years
func columnAlign(kind SlideKind, col int) pptx.Align {
	switch kind {
	case KindStatistics, KindSurgeryOverview:
		if col == 1 {
			return pptx.AlignCenter
		}
	case KindScheduledSurgeries, KindEmergencySurgeries, KindHandover:
		if col == 0 || col == 2 {
			return pptx.AlignCenter
		}
	}
	return pptx.AlignLeft
}
