package invoice

import (
	"sort"
	"strings"
)

// Letterhead is the business identity printed in the header and footer.
type Letterhead struct {
	Name     string
	Phones   []string
	Address  string
	ThankYou string
}

// DefaultLetterhead is used when none is configured.
var DefaultLetterhead = Letterhead{
	Name:     "Rental Services",
	ThankYou: "Thank you for your business!",
}

// A4 portrait geometry, millimetres.
const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 195.0
	pageTop      = 20.0
	rowHeight    = 8.0
	textBaseline = 5.5
	totalHeight  = 12.0
	// rows and the total box must end above this line; the footer lives below it.
	bodyBottom = 255.0
	footerRule = 268.0
	footerLine = 275.0
)

type column struct {
	title string
	left  float64
	right float64
	align byte
}

var columns = []column{
	{title: "#", left: marginLeft, right: 25, align: 'L'},
	{title: "Product", left: 25, right: 110, align: 'L'},
	{title: "Price", left: 110, right: 140, align: 'R'},
	{title: "Qty", left: 140, right: 160, align: 'R'},
	{title: "Amount", left: 160, right: marginRight, align: 'R'},
}

const cellPadding = 2.0

// fit shortens s with an ellipsis until it fits in width, bisecting on
// the rune count.
func fit(c Canvas, s string, width float64) string {
	if c.TextWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	cut := func(n int) string {
		return strings.TrimRight(string(runes[:n]), " ") + "..."
	}
	// smallest prefix length that no longer fits
	n := sort.Search(len(runes), func(n int) bool {
		return c.TextWidth(cut(n)) > width
	})
	if n == 0 {
		return ""
	}
	return cut(n - 1)
}

func centered(c Canvas, y float64, s string) {
	c.Text((pageWidth-c.TextWidth(s))/2, y, s)
}

func cell(c Canvas, col column, y float64, s string) {
	width := col.right - col.left - 2*cellPadding
	s = fit(c, s, width)
	x := col.left + cellPadding
	if col.align == 'R' {
		x = col.right - cellPadding - c.TextWidth(s)
	}
	c.Text(x, y+textBaseline, s)
}
