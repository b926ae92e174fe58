package extract

import (
	"regexp"
	"strings"
	"vtopassist-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var gradePoints = map[string]float64{
	"S": 10, "A": 9, "B": 8, "C": 7, "D": 6, "E": 5,
	"F": 0, "N": 0, "W": 0,
}

// failing grades carry credits but never count towards a GPA
var failingGrades = map[string]bool{"F": true, "N": true, "W": true}

// P is a pass without grade points
var earnedGrades = map[string]bool{"S": true, "A": true, "B": true, "C": true, "D": true, "E": true, "P": true}

// IsEarned reports whether a course with this grade counts its credits as
// earned.
func IsEarned(grade string) bool {
	return earnedGrades[strings.ToUpper(strings.TrimSpace(grade))]
}

var (
	cgpaRegex      = regexp.MustCompile(`(?i)\bCGPA\b\s*[:\-]?\s*(\d{1,2}\.\d{1,2})\b`)
	examMonthRegex = regexp.MustCompile(`^[A-Za-z]{3}-\d{4}$`)
)

// GradePoints returns the points of a grade letter, ok is false for letters
// outside the grading table.
func GradePoints(grade string) (float64, bool) {
	p, ok := gradePoints[strings.ToUpper(strings.TrimSpace(grade))]
	return p, ok
}

// SGPA is the credit-weighted grade point average of the courses, failing
// and ungraded courses are left out. Rounded to 2 decimals.
func SGPA(courses []GradeCourse) float64 {
	sgpa, _ := weightedGPA(courses)
	return sgpa
}

func weightedGPA(courses []GradeCourse) (float64, float64) {
	var points, credits float64
	for _, c := range courses {
		p, ok := GradePoints(c.Grade)
		if !ok || failingGrades[c.Grade] || c.Credits <= 0 {
			continue
		}
		points += p * c.Credits
		credits += c.Credits
	}
	if credits == 0 {
		return 0, 0
	}
	return round2(points / credits), credits
}

type gradeColumns struct {
	credits, grade, month, courseType int
}

// Grades reads a grade sheet, either a single semester's or the full grade
// history. Courses are grouped by exam month when the sheet has one.
func Grades(raw, semesterID string) GradesData {
	doc := load(raw)
	data := GradesData{
		SemesterID: semesterID,
		Courses:    []GradeCourse{},
		Semesters:  []SemesterGrade{},
	}

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		cols := gradeColumns{-1, -1, -1, -1}
		htmlutil.OwnRows(table).Each(func(_ int, tr *goquery.Selection) {
			cells := htmlutil.Cells(tr)
			if len(cells) == 0 {
				return
			}
			if isHeader(tr, cells) {
				cols = gradeHeader(cells)
				return
			}
			if course, ok := gradeCourse(cells, cols); ok {
				data.Courses = append(data.Courses, course)
			}
		})
	})

	var groups []string
	byGroup := map[string][]GradeCourse{}
	for _, c := range data.Courses {
		group := c.ExamMonth
		if group == "" {
			group = semesterID
		}
		if _, ok := byGroup[group]; !ok {
			groups = append(groups, group)
		}
		byGroup[group] = append(byGroup[group], c)

		data.CreditsRegistered += c.Credits
		if IsEarned(c.Grade) {
			data.CreditsEarned += c.Credits
		}
	}

	var weighted, weights float64
	for _, group := range groups {
		sgpa, credits := weightedGPA(byGroup[group])
		data.Semesters = append(data.Semesters, SemesterGrade{
			Name:    group,
			Credits: credits,
			SGPA:    sgpa,
		})
		weighted += sgpa * credits
		weights += credits
	}

	if m := cgpaRegex.FindStringSubmatch(htmlutil.Text(doc.Selection)); m != nil && parseFloat(m[1]) <= 10 {
		data.CGPA = parseFloat(m[1])
	} else if weights > 0 {
		data.CGPA = round2(weighted / weights)
	}
	return data
}

func gradeHeader(cells []string) gradeColumns {
	cols := gradeColumns{-1, -1, -1, -1}
	for i, c := range cells {
		lower := strings.ToLower(strings.TrimSpace(c))
		switch {
		case cols.credits < 0 && (lower == "c" || strings.Contains(lower, "credit")):
			cols.credits = i
		case cols.grade < 0 && lower == "grade":
			cols.grade = i
		case cols.month < 0 && strings.Contains(lower, "month"):
			cols.month = i
		case cols.courseType < 0 && strings.Contains(lower, "type"):
			cols.courseType = i
		}
	}
	return cols
}

func gradeCourse(cells []string, cols gradeColumns) (GradeCourse, bool) {
	at := findCourseCode(cells)
	if at < 0 {
		return GradeCourse{}, false
	}
	course := GradeCourse{
		CourseCode:  cells[at],
		CourseTitle: cell(cells, at+1),
		CourseType:  cell(cells, at+2),
		Grade:       UnknownGrade,
	}
	if cols.courseType > at+1 {
		course.CourseType = cell(cells, cols.courseType)
	}

	if g := strings.ToUpper(cell(cells, cols.grade)); cols.grade > at && gradeTokens[g] {
		course.Grade = g
	} else {
		for i := len(cells) - 1; i > at+1; i-- {
			if g := strings.ToUpper(cells[i]); gradeTokens[g] {
				course.Grade = g
				break
			}
		}
	}

	if cols.credits > at && isNumber(cell(cells, cols.credits)) {
		course.Credits = parseFloat(cell(cells, cols.credits))
	} else {
		for i := len(cells) - 1; i > at+1; i-- {
			if isNumber(cells[i]) && !strings.Contains(cells[i], "%") {
				if f := parseFloat(cells[i]); f > 0 && f <= 10 {
					course.Credits = f
					break
				}
			}
		}
	}

	if cols.month > at {
		course.ExamMonth = cell(cells, cols.month)
	}
	if course.ExamMonth == "" {
		for _, c := range cells[at+1:] {
			if examMonthRegex.MatchString(c) {
				course.ExamMonth = c
				break
			}
		}
	}

	if p, ok := GradePoints(course.Grade); ok {
		course.GradePoints = p
	}
	return course, true
}
