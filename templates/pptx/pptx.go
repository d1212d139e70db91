// Package pptx writes a minimal Office Open XML presentation. It knows about
// text boxes, tables and one logo picture, which is all the handover deck uses.
package pptx

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrUnsupportedImage is returned for logo formats PowerPoint cannot embed as is
var ErrUnsupportedImage = errors.New("unsupported image format")

var imageContentTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
}

// Positions and sizes are in inches on a 13.333 x 7.5 wide slide.
const (
	SlideWidth  = 13.333
	SlideHeight = 7.5

	emuPerInch  = 914400
	slideWidth  = 12192000
	slideHeight = 6858000
)

// Align is a horizontal paragraph alignment
type Align string

// Alignments
const (
	AlignLeft   Align = "l"
	AlignCenter Align = "ctr"
)

// Box places a shape on the slide
type Box struct {
	X, Y, W, H float64
}

// Text is a text box. Newlines in Value start new paragraphs.
type Text struct {
	Box
	Value string
	Size  int
	Color string
	Bold  bool
	Align Align
	// Top anchors the text to the top of the box instead of its middle
	Top bool
}

// Cell is one table cell
type Cell struct {
	Value string
	Bold  bool
	Align Align
	Fill  string
	Top   bool
}

// Table is a bordered grid with a header row. Only X, Y and W of the box are
// used; rows grow to fit.
type Table struct {
	Box
	ColumnWidths []float64
	Header       []Cell
	Rows         [][]Cell
	FontSize     int
	BorderColor  string
}

// Image is a picture file drawn at the same place on every slide
type Image struct {
	Box
	Data []byte
	// Ext is the file extension without the dot: png, jpg, jpeg or gif
	Ext string
}

// extension returns the normalised extension of img
func (img Image) extension() (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(img.Ext, "."))
	if ext == "jpg" {
		ext = "jpeg"
	}
	if _, ok := imageContentTypes[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, img.Ext)
	}
	return ext, nil
}

// Slide is one slide of the deck
type Slide struct {
	Background string
	Texts      []Text
	Table      *Table
}

// Presentation is the whole deck plus its document properties
type Presentation struct {
	Title   string
	Author  string
	Company string
	// Footer is drawn at the bottom of every slide when set
	Footer string
	// Logo is drawn on every slide when set
	Logo *Image
	// RowsPerSlide continues longer tables on extra slides; 0 disables paging
	RowsPerSlide int
	Created      time.Time
	Slides       []Slide
}

// Write renders p as a .pptx package into w
func Write(w io.Writer, p Presentation) error {
	if p.Created.IsZero() {
		p.Created = time.Now()
	}
	slides := Paginate(p.Slides, p.RowsPerSlide)
	if p.Footer != "" {
		for i := range slides {
			slides[i].Texts = append(slides[i].Texts, footer(p.Footer))
		}
	}

	var logoExt string
	if p.Logo != nil {
		ext, err := p.Logo.extension()
		if err != nil {
			return err
		}
		logoExt = ext
	}

	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypes(len(slides), logoExt)},
		{"_rels/.rels", packageRels},
		{"docProps/core.xml", coreProps(p)},
		{"docProps/app.xml", appProps(p, len(slides))},
		{"ppt/presentation.xml", presentation(len(slides))},
		{"ppt/_rels/presentation.xml.rels", presentationRels(len(slides))},
		{"ppt/presProps.xml", presProps},
		{"ppt/viewProps.xml", viewProps},
		{"ppt/tableStyles.xml", tableStyles},
		{"ppt/slideMasters/slideMaster1.xml", slideMaster},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRels},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayout},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRels},
		{"ppt/theme/theme1.xml", theme},
	}
	for i, s := range slides {
		parts = append(parts,
			struct {
				name string
				body string
			}{fmt.Sprintf("ppt/slides/slide%d.xml", i+1), renderSlide(s, p.Logo)},
			struct {
				name string
				body string
			}{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), slideRels(logoExt)},
		)
	}
	if p.Logo != nil {
		parts = append(parts, struct {
			name string
			body string
		}{"ppt/media/" + logoPart(logoExt), string(p.Logo.Data)})
	}

	for _, part := range parts {
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     part.name,
			Method:   zip.Deflate,
			Modified: p.Created,
		})
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", part.name, err)
		}
		if _, err := io.WriteString(f, part.body); err != nil {
			return fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish presentation: %w", err)
	}
	return nil
}

// Paginate splits every table longer than rowsPerSlide over as many slides as
// needed. Continuation slides repeat the background, the text boxes and the
// table header.
func Paginate(slides []Slide, rowsPerSlide int) []Slide {
	out := make([]Slide, 0, len(slides))
	for _, s := range slides {
		if s.Table == nil || rowsPerSlide <= 0 || len(s.Table.Rows) <= rowsPerSlide {
			out = append(out, cloneSlide(s))
			continue
		}
		for start := 0; start < len(s.Table.Rows); start += rowsPerSlide {
			end := start + rowsPerSlide
			if end > len(s.Table.Rows) {
				end = len(s.Table.Rows)
			}
			page := cloneSlide(s)
			page.Table.Rows = s.Table.Rows[start:end]
			out = append(out, page)
		}
	}
	return out
}

func cloneSlide(s Slide) Slide {
	c := s
	c.Texts = append([]Text(nil), s.Texts...)
	if s.Table != nil {
		t := *s.Table
		c.Table = &t
	}
	return c
}

func footer(value string) Text {
	return Text{
		Box:   Box{X: 0, Y: 7.2, W: SlideWidth, H: 0.25},
		Value: value,
		Size:  8,
		Color: "AAAAAA",
		Align: AlignCenter,
	}
}

func emu(inches float64) int64 {
	return int64(inches*emuPerInch + 0.5)
}
