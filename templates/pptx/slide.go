package pptx

import (
	"fmt"
	"html"
	"strings"
	"unicode"
)

const (
	defaultFontSize    = 18
	defaultBorderColor = "CCCCCC"
	// row height hint; PowerPoint grows rows to fit their text
	rowHeight = 370840
	borderW   = 12700
)

func renderSlide(s Slide, logo *Image) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld ` + nsMain + `><p:cSld>`)
	if s.Background != "" {
		fmt.Fprintf(&b, `<p:bg><p:bgPr><a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>`, s.Background)
	}
	b.WriteString(`<p:spTree>` + emptyTree)

	id := 2
	for _, t := range s.Texts {
		writeText(&b, id, t)
		id++
	}
	if s.Table != nil {
		writeTable(&b, id, *s.Table)
		id++
	}
	if logo != nil {
		writePicture(&b, id, *logo)
	}

	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String()
}

func writeText(b *strings.Builder, id int, t Text) {
	anchor := "ctr"
	if t.Top {
		anchor = "t"
	}
	fmt.Fprintf(b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, id)
	fmt.Fprintf(b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`,
		emu(t.X), emu(t.Y), emu(t.W), emu(t.H))
	fmt.Fprintf(b, `<p:txBody><a:bodyPr wrap="square" rtlCol="0" anchor="%s"><a:normAutofit/></a:bodyPr><a:lstStyle/>`, anchor)
	writeParagraphs(b, t.Value, run{size: t.Size, color: t.Color, bold: t.Bold, align: t.Align})
	b.WriteString(`</p:txBody></p:sp>`)
}

func writePicture(b *strings.Builder, id int, img Image) {
	fmt.Fprintf(b, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Logo %d"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`, id, id)
	fmt.Fprintf(b, `<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`, logoRel)
	fmt.Fprintf(b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
		emu(img.X), emu(img.Y), emu(img.W), emu(img.H))
}

func writeTable(b *strings.Builder, id int, t Table) {
	border := t.BorderColor
	if border == "" {
		border = defaultBorderColor
	}
	var width float64
	for _, w := range t.ColumnWidths {
		width += w
	}
	if width == 0 {
		width = t.W
	}
	rows := len(t.Rows)
	if len(t.Header) > 0 {
		rows++
	}

	fmt.Fprintf(b, `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="Table %d"/><p:cNvGraphicFramePr><a:graphicFrameLocks noGrp="1"/></p:cNvGraphicFramePr><p:nvPr/></p:nvGraphicFramePr>`, id, id)
	fmt.Fprintf(b, `<p:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></p:xfrm>`, emu(t.X), emu(t.Y), emu(width), int64(rows)*rowHeight)
	b.WriteString(`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl><a:tblPr firstRow="1" bandRow="0"/><a:tblGrid>`)
	for _, w := range t.ColumnWidths {
		fmt.Fprintf(b, `<a:gridCol w="%d"/>`, emu(w))
	}
	b.WriteString(`</a:tblGrid>`)

	if len(t.Header) > 0 {
		writeRow(b, t.Header, t, border)
	}
	for _, row := range t.Rows {
		writeRow(b, row, t, border)
	}
	b.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
}

func writeRow(b *strings.Builder, cells []Cell, t Table, border string) {
	fmt.Fprintf(b, `<a:tr h="%d">`, rowHeight)
	for i := range t.ColumnWidths {
		var c Cell
		if i < len(cells) {
			c = cells[i]
		}
		anchor := "ctr"
		if c.Top {
			anchor = "t"
		}
		b.WriteString(`<a:tc><a:txBody><a:bodyPr/><a:lstStyle/>`)
		writeParagraphs(b, c.Value, run{size: t.FontSize, bold: c.Bold, align: c.Align})
		fmt.Fprintf(b, `</a:txBody><a:tcPr anchor="%s">`, anchor)
		for _, side := range []string{"lnL", "lnR", "lnT", "lnB"} {
			fmt.Fprintf(b, `<a:%s w="%d"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:%s>`, side, borderW, border, side)
		}
		if c.Fill != "" {
			fmt.Fprintf(b, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, c.Fill)
		}
		b.WriteString(`</a:tcPr></a:tc>`)
	}
	b.WriteString(`</a:tr>`)
}

type run struct {
	size  int
	color string
	bold  bool
	align Align
}

func (r run) props() string {
	size := r.size
	if size <= 0 {
		size = defaultFontSize
	}
	attrs := fmt.Sprintf(`lang="vi-VN" sz="%d"`, size*100)
	if r.bold {
		attrs += ` b="1"`
	}
	return attrs
}

func (r run) fill() string {
	if r.color == "" {
		return ""
	}
	return fmt.Sprintf(`<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, r.color)
}

func writeParagraphs(b *strings.Builder, value string, r run) {
	align := r.align
	if align == "" {
		align = AlignLeft
	}
	for _, line := range strings.Split(value, "\n") {
		fmt.Fprintf(b, `<a:p><a:pPr algn="%s"/>`, align)
		if line != "" {
			fmt.Fprintf(b, `<a:r><a:rPr %s dirty="0">%s</a:rPr><a:t>%s</a:t></a:r>`, r.props(), r.fill(), escape(line))
		}
		fmt.Fprintf(b, `<a:endParaRPr %s dirty="0"/></a:p>`, r.props())
	}
}

// escape makes s safe for XML character data. Control characters other than
// tab are not allowed in XML 1.0 and are dropped.
func escape(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return html.EscapeString(s)
}
