package extract

import (
	"strings"
	"vtopassist-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Marks reads the mark sheet: each course row of the outer table is followed
// by a row holding a nested table of assessments.
func Marks(raw, semesterID string) MarksData {
	doc := load(raw)
	data := MarksData{SemesterID: semesterID, Courses: []MarksCourse{}}

	// every table is a candidate, layout tables and assessment tables simply
	// never produce a course row
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var current *MarksCourse
		htmlutil.OwnRows(table).Each(func(_ int, tr *goquery.Selection) {
			if nested := tr.Find("table"); nested.Length() > 0 {
				if current != nil {
					current.Assessments = append(current.Assessments, assessments(nested.First())...)
				}
				return
			}
			cells := htmlutil.Cells(tr)
			if len(cells) == 0 || isHeader(tr, cells) {
				return
			}
			course, ok := marksCourse(cells)
			if !ok {
				return
			}
			data.Courses = append(data.Courses, course)
			current = &data.Courses[len(data.Courses)-1]
		})
	})

	for i := range data.Courses {
		c := &data.Courses[i]
		if c.Assessments == nil {
			c.Assessments = []Assessment{}
		}
		for _, a := range c.Assessments {
			c.TotalWeighted += a.weighted()
			c.TotalWeightage += a.Weightage
		}
		c.TotalWeighted = round2(c.TotalWeighted)
		c.TotalWeightage = round2(c.TotalWeightage)
	}
	return data
}

// course rows: Sl.No | Class Nbr | Code | Title | Type | System | Faculty | Slot
func marksCourse(cells []string) (MarksCourse, bool) {
	at := findCourseCode(cells)
	if at < 0 {
		return MarksCourse{}, false
	}
	course := MarksCourse{
		CourseCode:  cells[at],
		CourseTitle: cell(cells, at+1),
		ClassType:   ParseClassType(cell(cells, at+2)),
	}
	for i := at + 3; i < len(cells); i++ {
		c := cells[i]
		switch {
		case course.Slot == "" && slotRegex.MatchString(c):
			course.Slot = c
		case course.Faculty == "" && strings.Contains(c, " - "):
			course.Faculty = facultyName(c)
		}
	}
	if course.Faculty == "" && !slotRegex.MatchString(cell(cells, at+4)) {
		course.Faculty = cell(cells, at+4)
	}
	return course, true
}

type assessmentColumns struct {
	title, max, weightage, status, scored, remark int
}

var defaultAssessmentColumns = assessmentColumns{
	title: 1, max: 2, weightage: 3, status: 4, scored: 5, remark: 8,
}

func assessmentHeader(cells []string) (assessmentColumns, bool) {
	cols := assessmentColumns{-1, -1, -1, -1, -1, -1}
	for i, c := range cells {
		lower := strings.ToLower(c)
		switch {
		case strings.Contains(lower, "title"):
			cols.title = i
		case strings.Contains(lower, "max"):
			cols.max = i
		case strings.Contains(lower, "weightage mark"):
		case strings.Contains(lower, "weightage"):
			cols.weightage = i
		case strings.Contains(lower, "status"):
			cols.status = i
		case strings.Contains(lower, "scored"):
			cols.scored = i
		case strings.Contains(lower, "remark"):
			cols.remark = i
		}
	}
	if cols.title < 0 || cols.max < 0 || cols.scored < 0 {
		return assessmentColumns{}, false
	}
	return cols, true
}

func assessments(table *goquery.Selection) []Assessment {
	cols := defaultAssessmentColumns
	var out []Assessment
	htmlutil.OwnRows(table).Each(func(_ int, tr *goquery.Selection) {
		cells := htmlutil.Cells(tr)
		if len(cells) == 0 {
			return
		}
		if isHeader(tr, cells) {
			if found, ok := assessmentHeader(cells); ok {
				cols = found
			}
			return
		}
		title := cell(cells, cols.title)
		if title == "" {
			return
		}
		a := Assessment{
			Title:     title,
			MaxMarks:  parseFloat(cell(cells, cols.max)),
			Weightage: parseFloat(cell(cells, cols.weightage)),
			Remark:    cell(cells, cols.remark),
		}
		scored := cell(cells, cols.scored)
		status := strings.ToLower(cell(cells, cols.status))
		switch {
		case strings.Contains(status, "absent") || strings.EqualFold(scored, "AB"):
			a.Status = AssessmentAbsent
		case isNumber(scored) && a.MaxMarks > 0:
			a.Status = AssessmentGraded
			a.Scored = parseFloat(scored)
			a.WeightedScore = round2(a.weighted())
		default:
			a.Status = AssessmentPending
		}
		out = append(out, a)
	})
	return out
}

// weighted is the unrounded contribution of a graded assessment.
func (a Assessment) weighted() float64 {
	if a.Status != AssessmentGraded || a.MaxMarks <= 0 {
		return 0
	}
	return a.Scored / a.MaxMarks * a.Weightage
}
