package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/signintech/gopdf"

	"github.com/nyxdynamics/ahss/internal/screening"
)

// ErrFontNotFound is returned when no usable TTF font exists for PDF output.
var ErrFontNotFound = errors.New("no TTF font found for PDF output; install ttf-dejavu or set AHSS_FONT_PATH")

// fontPaths are searched in order when no font is configured. The
// monospaced faces keep the text layout's columns aligned.
var fontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSansMono.ttf",
	"/usr/share/fonts/dejavu/DejaVuSansMono.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

const (
	fontName   = "AHSS"
	fontSize   = 9
	lineHeight = 12
	margin     = 40
)

// FindFont returns path when set and readable, otherwise the first
// installed font from the search list.
func FindFont(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrFontNotFound, path, err)
		}
		return path, nil
	}
	for _, p := range fontPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrFontNotFound
}

// FormPDF writes the printable form as an A4 PDF.
func FormPDF(cat screening.Catalog, fontPath string, w io.Writer) error {
	text, err := Form(cat)
	if err != nil {
		return err
	}
	return writePDF(text, fontPath, w)
}

// ClinicalPDF writes the clinical report as an A4 PDF.
func ClinicalPDF(d ClinicalData, fontPath string, w io.Writer) error {
	text, err := Clinical(d)
	if err != nil {
		return err
	}
	return writePDF(text, fontPath, w)
}

func writePDF(text, fontPath string, w io.Writer) error {
	path, err := FindFont(fontPath)
	if err != nil {
		return err
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.SetMargins(margin, margin, margin, margin)
	pdf.AddPage()

	if err := pdf.AddTTFFont(fontName, path); err != nil {
		return fmt.Errorf("load font %s: %w", path, err)
	}
	if err := pdf.SetFont(fontName, "", fontSize); err != nil {
		return err
	}

	width := gopdf.PageSizeA4.W - 2*margin
	bottom := gopdf.PageSizeA4.H - margin - lineHeight

	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			pdf.Br(lineHeight)
			continue
		}
		parts, err := pdf.SplitText(line, width)
		if err != nil {
			return fmt.Errorf("layout %q: %w", line, err)
		}
		for _, part := range parts {
			if pdf.GetY() > bottom {
				pdf.AddPage()
			}
			if err := pdf.Cell(nil, part); err != nil {
				return err
			}
			pdf.Br(lineHeight)
		}
	}

	if _, err := pdf.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
