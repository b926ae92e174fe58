package extract

import (
	"regexp"
	"strings"
	"vtopassist-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// UncategorizedCode groups curriculum courses listed before any category
// heading.
const UncategorizedCode = "NA"

var (
	// "UC - University Core", "PE: Programme Elective"
	categoryRegex = regexp.MustCompile(`^([A-Z]{2,5})\s*[-:–]\s*([A-Za-z].*?)(?:\s*\(.*\))?$`)
	gradeTokens   = map[string]bool{"S": true, "A": true, "B": true, "C": true, "D": true, "E": true, "F": true, "N": true, "W": true, "P": true}
)

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"caption": true, "legend": true, "button": true,
}

// Curriculum groups the programme's courses by category. Headings and rows
// are visited in document order, each row lands in the category of the
// closest heading above it.
func Curriculum(raw string) CurriculumData {
	doc := load(raw)
	data := CurriculumData{Categories: []CurriculumCategory{}}

	index := map[string]int{}
	current := ""
	category := func(code, name string) {
		if _, ok := index[code]; !ok {
			index[code] = len(data.Categories)
			data.Categories = append(data.Categories, CurriculumCategory{
				Code:    code,
				Name:    name,
				Courses: []CurriculumCourse{},
			})
		}
		current = code
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if isCategoryHeading(n) {
				if m := categoryRegex.FindStringSubmatch(htmlutil.CleanText(htmlutil.GetText(n))); m != nil {
					category(m[1], strings.TrimSpace(m[2]))
					return
				}
			}
			if n.Data == "tr" {
				tr := goquery.NewDocumentFromNode(n).Selection
				cells := htmlutil.Cells(tr)
				if len(cells) == 1 {
					if m := categoryRegex.FindStringSubmatch(cells[0]); m != nil {
						category(m[1], strings.TrimSpace(m[2]))
						return
					}
				}
				if len(cells) > 0 && !isHeader(tr, cells) {
					if course, ok := curriculumCourse(cells); ok {
						if current == "" {
							category(UncategorizedCode, "Uncategorized")
						}
						c := &data.Categories[index[current]]
						c.Courses = append(c.Courses, course)
						c.RequiredCredits += course.Credits
						if course.Earned {
							c.EarnedCredits += course.Credits
						}
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	// page titles share the heading shape, drop headings that own no rows
	kept := data.Categories[:0]
	for _, c := range data.Categories {
		if len(c.Courses) == 0 {
			continue
		}
		kept = append(kept, c)
		data.TotalRequired += c.RequiredCredits
		data.TotalEarned += c.EarnedCredits
	}
	data.Categories = kept
	return data
}

func isCategoryHeading(n *html.Node) bool {
	if headingTags[n.Data] {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(attr.Val) {
			if strings.HasSuffix(class, "-header") || strings.HasSuffix(class, "-heading") || strings.HasSuffix(class, "-title") {
				return true
			}
		}
	}
	return false
}

func curriculumCourse(cells []string) (CurriculumCourse, bool) {
	at := findCourseCode(cells)
	course := CurriculumCourse{Grade: UnknownGrade}
	titleAt := at + 1
	if at < 0 {
		for i, c := range cells {
			if m := courseCodeLeadRegex.FindStringSubmatch(c); m != nil {
				at = i
				course.Code = m[1]
				course.Title = strings.TrimSpace(m[2])
				break
			}
		}
		if at < 0 {
			return CurriculumCourse{}, false
		}
		titleAt = -1
	} else {
		course.Code = cells[at]
		course.Title = cell(cells, titleAt)
	}

	// credits: rightmost small integer, cells left of the code are serials
	for i := len(cells) - 1; i > at; i-- {
		if i == titleAt || !integerRegex.MatchString(cells[i]) {
			continue
		}
		if n := parseInt(cells[i]); n <= 10 {
			course.Credits = n
			break
		}
	}
	for i := at + 1; i < len(cells); i++ {
		if i == titleAt {
			continue
		}
		token := strings.ToUpper(cells[i])
		if gradeTokens[token] {
			course.Grade = token
			course.Earned = IsEarned(token)
			break
		}
	}
	return course, true
}
