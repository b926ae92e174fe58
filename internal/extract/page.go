// Package extract turns raw portal pages into typed records. Nothing in here
// returns an error: a page that cannot be understood yields empty records.
package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"vtopassist-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// UnknownGrade marks a grade cell that could not be read.
const UnknownGrade = "-"

func load(raw string) *goquery.Document {
	return htmlutil.Parse(htmlutil.Normalize(raw))
}

// tableRows yields the cells of every data row in the document, header and
// placeholder rows are skipped. The row selection is handed out as well so
// callers can look for nested tables.
func tableRows(doc *goquery.Document, each func(tr *goquery.Selection, cells []string)) {
	eachRow(doc, func(tr *goquery.Selection, cells []string, header bool) {
		if !header {
			each(tr, cells)
		}
	})
}

func eachRow(doc *goquery.Document, each func(tr *goquery.Selection, cells []string, header bool)) {
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		htmlutil.OwnRows(table).Each(func(_ int, tr *goquery.Selection) {
			cells := htmlutil.Cells(tr)
			if len(cells) == 0 {
				return
			}
			each(tr, cells, isHeader(tr, cells))
		})
	})
}

var headerLabels = map[string]bool{
	"code": true, "course code": true,
	"title": true, "course title": true, "course name": true,
	"course": true, "course detail": true, "course details": true,
	"sl.no": true, "sl. no": true, "sl no": true,
	"s.no": true, "s. no": true, "s no": true,
}

func isHeader(tr *goquery.Selection, cells []string) bool {
	if htmlutil.IsHeaderRow(tr) {
		return true
	}
	return isHeaderCells(cells)
}

func isHeaderCells(cells []string) bool {
	limit := min(len(cells), 3)
	for _, c := range cells[:limit] {
		label := strings.TrimRight(strings.ToLower(strings.TrimSpace(c)), ".: ")
		if headerLabels[label] {
			return true
		}
	}
	return false
}

var (
	courseCodeRegex     = regexp.MustCompile(`^[A-Z]{2,5}\d{3,4}[A-Z]{0,2}$`)
	courseCodeLeadRegex = regexp.MustCompile(`^([A-Z]{2,5}\d{3,4}[A-Z]{0,2})\s*-\s*(.+)$`)
	integerRegex        = regexp.MustCompile(`^\d+$`)
)

func isCourseCode(s string) bool {
	return courseCodeRegex.MatchString(s)
}

// findCourseCode returns the index of the first cell that is exactly a
// course code, or -1.
func findCourseCode(cells []string) int {
	for i, c := range cells {
		if isCourseCode(c) {
			return i
		}
	}
	return -1
}

func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return placeholder(cells[i])
}

// placeholder maps the dash/NA fillers the portal uses for blank cells to "".
func placeholder(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "-", "--", "NA", "N/A", "NIL":
		return ""
	}
	return strings.TrimSpace(s)
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func isNumber(s string) bool {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// ParseClassType maps the portal's course type labels onto a ClassType,
// anything unrecognised is theory.
func ParseClassType(s string) ClassType {
	upper := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case upper == "ELA" || upper == "LO" || strings.Contains(upper, "LAB"):
		return ClassLab
	case upper == "EPJ" || upper == "PJT" || strings.Contains(upper, "PROJECT"):
		return ClassProject
	}
	return ClassTheory
}
