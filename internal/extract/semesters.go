package extract

import (
	"strings"
	"vtopassist-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Semesters reads the semester picker, placeholder options without a value
// are skipped.
func Semesters(raw string) []Semester {
	doc := load(raw)
	options := doc.Find("select#semesterSubId option")
	if options.Length() == 0 {
		options = doc.Find(`select[name="semesterSubId"] option`)
	}

	var out []Semester
	seen := map[string]bool{}
	options.Each(func(_ int, opt *goquery.Selection) {
		id := strings.TrimSpace(opt.AttrOr("value", ""))
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, Semester{
			ID:   id,
			Name: htmlutil.Text(opt),
		})
	})
	return out
}

// HasSemesterPicker reports whether the page carries the semester picker at
// all, an empty picker still counts.
func HasSemesterPicker(raw string) bool {
	doc := load(raw)
	return doc.Find(`select#semesterSubId, select[name="semesterSubId"]`).Length() > 0
}
