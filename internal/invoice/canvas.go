package invoice

import "io"

// Font styles understood by Canvas.SetFont.
const (
	Regular = ""
	Bold    = "B"
)

// Canvas is the document sink the layout draws on. Coordinates are in
// millimetres from the top-left corner of the current page.
type Canvas interface {
	SetFont(style string, size float64)
	Text(x, y float64, s string)
	TextWidth(s string) float64
	Line(x1, y1, x2, y2 float64)
	Rect(x, y, w, h float64)
	AddPage()
	// Finalize closes the document and writes it to w. Nothing may be
	// drawn afterwards.
	Finalize(w io.Writer) error
}
