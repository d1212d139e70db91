package export

// SlideKind identifies what a slide shows
type SlideKind string

// Slide kinds, in deck order
const (
	KindTitle              SlideKind = "title"
	KindStatistics         SlideKind = "statistics"
	KindSurgeryOverview    SlideKind = "surgeryOverview"
	KindScheduledSurgeries SlideKind = "scheduledSurgeries"
	KindEmergencySurgeries SlideKind = "emergencySurgeries"
	KindHandover           SlideKind = "handover"
	KindNotes              SlideKind = "notes"
)

// Row is one table row. Bold rows are totals.
type Row struct {
	Cells []string
	Bold  bool
}

// TableSpec is a table with a header row
type TableSpec struct {
	Header []string
	Rows   []Row
}

// SlideSpec describes one slide independent of the file format
type SlideSpec struct {
	Kind  SlideKind
	Title string
	// Lines are the text blocks under the title, used by the title slide
	Lines []string
	Table *TableSpec
	// Message replaces an empty table
	Message string
	// Body is free text, used by the notes slide
	Body string
}

// Deck is the ordered list of slides plus document metadata
type Deck struct {
	Title   string
	Author  string
	Company string
	Footer  string
	Logo    *Logo
	Slides  []SlideSpec
}

// Logo is an image file shown in the corner of every slide
type Logo struct {
	Data []byte
	// Ext is the file extension, such as png
	Ext string
}

// Kinds returns the kind of every slide in order
func (d Deck) Kinds() []SlideKind {
	kinds := make([]SlideKind, 0, len(d.Slides))
	for _, s := range d.Slides {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}
