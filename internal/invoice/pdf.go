package invoice

import (
	"io"

	"github.com/go-pdf/fpdf"
)

const pdfFont = "Helvetica"

// PDFCanvas draws on an A4 portrait PDF.
type PDFCanvas struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// PDFOption tweaks the underlying document before the first page.
type PDFOption func(*fpdf.Fpdf)

// WithoutCompression leaves page content streams uncompressed.
func WithoutCompression() PDFOption {
	return func(pdf *fpdf.Fpdf) { pdf.SetCompression(false) }
}

// NewPDFCanvas returns a canvas with its first page already started.
func NewPDFCanvas(opts ...PDFOption) *PDFCanvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("go-rental-billing", true)
	for _, opt := range opts {
		opt(pdf)
	}
	pdf.AddPage()
	pdf.SetFont(pdfFont, Regular, 11)

	return &PDFCanvas{
		pdf: pdf,
		// core fonts are cp1252; translate so names with accents survive
		tr: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *PDFCanvas) SetFont(style string, size float64) {
	c.pdf.SetFont(pdfFont, style, size)
}

func (c *PDFCanvas) Text(x, y float64, s string) {
	c.pdf.Text(x, y, c.tr(s))
}

func (c *PDFCanvas) TextWidth(s string) float64 {
	return c.pdf.GetStringWidth(c.tr(s))
}

func (c *PDFCanvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.Line(x1, y1, x2, y2)
}

func (c *PDFCanvas) Rect(x, y, w, h float64) {
	c.pdf.Rect(x, y, w, h, "D")
}

func (c *PDFCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *PDFCanvas) Finalize(w io.Writer) error {
	return c.pdf.Output(w)
}
