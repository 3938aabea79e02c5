package source

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// columnGap is the horizontal distance, in points, that separates two
// cells of a printed ledger row.
const columnGap = 15.0

// ExtractLedgerText reads a PDF printed from a ledger sheet and returns its
// text with one ledger row per line and cells separated by tabs. It tries
// the structured PDF library first and falls back to pdftotext when the
// library output is unreadable.
func ExtractLedgerText(ctx context.Context, filePath string) (string, error) {
	lines, libErr := extractWithLibrary(filePath)
	if libErr == nil && isReadableText(lines) {
		return strings.Join(lines, "\n"), nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	lines, popplerErr := extractWithPdftotext(ctx, filePath)
	if popplerErr == nil && isReadableText(lines) {
		return strings.Join(lines, "\n"), nil
	}

	if libErr != nil {
		return "", fmt.Errorf("PDF text extraction failed for %q: %w", filePath, libErr)
	}
	return "", fmt.Errorf("no readable ledger text in %q: the PDF may be image-based or use fonts that cannot be decoded", filePath)
}

// extractWithLibrary rebuilds rows from positioned text, page by page.
func extractWithLibrary(filePath string) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, openErr := pdf.Open(filePath)
	if openErr != nil {
		return nil, openErr
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines = append(lines, pageRows(page.Content().Text)...)
	}
	return lines, nil
}

type glyph struct {
	x float64
	s string
}

// pageRows groups text pieces by Y coordinate into rows, top to bottom.
func pageRows(texts []pdf.Text) []string {
	rowMap := make(map[int][]glyph)
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		yKey := int(math.Round(t.Y))
		rowMap[yKey] = append(rowMap[yKey], glyph{x: t.X, s: t.S})
	}

	yKeys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		yKeys = append(yKeys, y)
	}
	// PDF Y grows bottom to top.
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	var lines []string
	for _, y := range yKeys {
		if line := joinCells(rowMap[y]); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// joinCells orders a row's pieces left to right and starts a new cell
// wherever the gap to the previous piece exceeds columnGap.
func joinCells(items []glyph) string {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].x < items[b].x
	})

	var sb strings.Builder
	var prevX float64
	for j, item := range items {
		if j > 0 && item.x-prevX > columnGap {
			sb.WriteByte('\t')
		}
		sb.WriteString(item.s)
		prevX = item.x
	}
	return strings.TrimSpace(sb.String())
}

var layoutGap = regexp.MustCompile(`\s{2,}`)

// extractWithPdftotext shells out to poppler's pdftotext in layout mode
// and turns runs of two or more spaces into cell separators.
func extractWithPdftotext(ctx context.Context, filePath string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}
	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", filePath, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}
	return layoutToRows(string(out)), nil
}

func layoutToRows(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\f"))
		if line == "" {
			continue
		}
		lines = append(lines, layoutGap.ReplaceAllString(line, "\t"))
	}
	return lines
}

// textQuality is the share of printable ASCII, whitespace and ₹ among all
// runes.
func textQuality(lines []string) float64 {
	total, readable := 0, 0
	for _, line := range lines {
		for _, r := range line {
			total++
			if (r < unicode.MaxASCII && unicode.IsPrint(r)) || unicode.IsSpace(r) || r == '₹' {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// ledgerWords appear in the header row of every ledger sheet.
var ledgerWords = []string{"date", "amount", "balance", "fund", "type", "category"}

// isReadableText requires mostly printable text and at least one header
// word.
func isReadableText(lines []string) bool {
	if len(lines) < 2 || textQuality(lines) <= 0.6 {
		return false
	}
	combined := strings.ToLower(strings.Join(lines, " "))
	for _, w := range ledgerWords {
		if strings.Contains(combined, w) {
			return true
		}
	}
	return false
}
