package extract

import (
	"regexp"
	"strings"
	"vtopassist-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"golang.org/x/net/html"
)

// labels closer than this to a wanted label are treated as the same label
const fuzzyLabelThreshold = 0.92

var (
	nameLabels        = []string{"Student Name", "Name"}
	regNoLabels       = []string{"Register Number", "Registration Number", "Reg. No", "Reg No"}
	applicationLabels = []string{"Application Number", "Application No"}
	programLabels     = []string{"Program", "Programme"}
	branchLabels      = []string{"Branch", "Specialization"}
	schoolLabels      = []string{"School Name", "School"}
	emailLabels       = []string{"VIT Email", "Email", "E-Mail", "Email ID"}
	mobileLabels      = []string{"Mobile Number", "Mobile No", "Mobile"}
	dobLabels         = []string{"Date of Birth", "DOB"}
	genderLabels      = []string{"Gender"}
	bloodGroupLabels  = []string{"Blood Group"}
	nationalityLabels = []string{"Nationality"}
	proctorLabels     = []string{"Proctor Name", "Faculty Name"}

	blockLabels = []string{"Block Name", "Hostel Block", "Block"}
	roomLabels  = []string{"Room No", "Room Number", "Room"}
	bedLabels   = []string{"Bed Type"}
	messLabels  = []string{"Mess Information", "Mess Type", "Mess"}
)

var profileLabels = [][]string{
	nameLabels, regNoLabels, applicationLabels, programLabels, branchLabels,
	schoolLabels, emailLabels, mobileLabels, dobLabels, genderLabels,
	bloodGroupLabels, nationalityLabels, proctorLabels,
	blockLabels, roomLabels, bedLabels, messLabels,
}

// inlineShapes holds the compiled "label: value" patterns of every known label.
var inlineShapes = map[string][]*regexp.Regexp{}

func init() {
	for _, labels := range profileLabels {
		for _, label := range labels {
			inlineShapes[label] = compileInlineShapes(label)
		}
	}
}

func compileInlineShapes(label string) []*regexp.Regexp {
	quoted := regexp.QuoteMeta(label)
	return []*regexp.Regexp{
		regexp.MustCompile(`(?i)>\s*` + quoted + `\s*:?\s*<[^>]*>(?:\s*<[^>]*>)*\s*([^<]+)<`),
		regexp.MustCompile(`(?i)(?:^|>)\s*` + quoted + `\s*:\s*([^<]+)`),
	}
}

var labelElements = "td, th, label, span, b, strong, dt, p, div"

// Profile reads the student's personal record. Every field is looked up by
// its label, the hostel block only appears when a hostel section actually
// carries data.
func Profile(raw string) ProfileData {
	doc := load(raw)
	page := newLabelScope(doc.Selection)

	profile := ProfileData{
		Name:               page.lookup(nameLabels),
		RegistrationNumber: page.lookup(regNoLabels),
		ApplicationNumber:  page.lookup(applicationLabels),
		Program:            page.lookup(programLabels),
		Branch:             page.lookup(branchLabels),
		School:             page.lookup(schoolLabels),
		Email:              page.lookup(emailLabels),
		Mobile:             page.lookup(mobileLabels),
		DateOfBirth:        page.lookup(dobLabels),
		Gender:             page.lookup(genderLabels),
		BloodGroup:         page.lookup(bloodGroupLabels),
		Nationality:        page.lookup(nationalityLabels),
		ProctorName:        page.lookup(proctorLabels),
	}
	profile.Hostel = hostel(doc)
	return profile
}

func hostel(doc *goquery.Document) *Hostel {
	var found *Hostel
	doc.Find("h1, h2, h3, h4, h5, h6, th, td, b, strong, span, a, button, legend, div").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		text := htmlutil.Text(heading)
		if len(text) > 40 || !strings.Contains(strings.ToLower(text), "hostel") {
			return true
		}
		section := sectionOf(heading, len(text))
		if section == nil {
			return true
		}
		scope := newLabelScope(section)
		h := Hostel{
			Block:    scope.lookup(blockLabels),
			Room:     scope.lookup(roomLabels),
			BedType:  scope.lookup(bedLabels),
			MessType: scope.lookup(messLabels),
		}
		if h == (Hostel{}) {
			return true
		}
		found = &h
		return false
	})
	return found
}

// sectionOf climbs from a heading to the first ancestor holding more than
// the heading itself.
func sectionOf(heading *goquery.Selection, headingLen int) *goquery.Selection {
	current := heading
	for range 4 {
		parent := current.Parent()
		if parent.Length() == 0 {
			return nil
		}
		if len(htmlutil.Text(parent)) > headingLen+10 {
			return parent
		}
		current = parent
	}
	return nil
}

type labelScope struct {
	sel  *goquery.Selection
	html string
}

func newLabelScope(sel *goquery.Selection) labelScope {
	raw, _ := goquery.OuterHtml(sel)
	return labelScope{sel: sel, html: raw}
}

// lookup tries, in order: a cell whose text is exactly a label followed by a
// value cell, "label: value" text shapes in the markup, then cells whose text
// is merely close to a label.
func (s labelScope) lookup(labels []string) string {
	for _, label := range labels {
		if v := s.adjacent(func(text string) bool { return text == normalizeLabel(label) }); v != "" {
			return v
		}
	}
	for _, label := range labels {
		if v := s.inline(label); v != "" {
			return v
		}
	}
	for _, label := range labels {
		want := normalizeLabel(label)
		v := s.adjacent(func(text string) bool {
			return len(text) > 3 && matchr.JaroWinkler(text, want, false) >= fuzzyLabelThreshold
		})
		if v != "" {
			return v
		}
	}
	return ""
}

func (s labelScope) adjacent(match func(text string) bool) string {
	value := ""
	s.sel.Find(labelElements).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if el.Children().Length() > 1 {
			return true
		}
		text := normalizeLabel(htmlutil.Text(el))
		if text == "" || !match(text) {
			return true
		}
		next := el.Next()
		for next.Length() > 0 {
			if v := placeholder(htmlutil.Text(next)); v != "" {
				value = v
				return false
			}
			next = next.Next()
		}
		return true
	})
	return value
}

// inline handles "<b>Label:</b> value" and "<td>Label</td><td>value</td>"
// shapes the adjacency pass misses because of wrapper markup.
func (s labelScope) inline(label string) string {
	shapes, ok := inlineShapes[label]
	if !ok {
		shapes = compileInlineShapes(label)
	}
	for _, shape := range shapes {
		m := shape.FindStringSubmatch(s.html)
		if m == nil {
			continue
		}
		v := strings.TrimPrefix(htmlutil.CleanText(html.UnescapeString(m[1])), ": ")
		if v = placeholder(strings.TrimPrefix(v, ":")); v != "" {
			return v
		}
	}
	return ""
}

func normalizeLabel(s string) string {
	return strings.TrimRight(strings.ToLower(htmlutil.CleanText(s)), " :.")
}
