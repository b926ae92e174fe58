package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	cat1Regex = regexp.MustCompile(`(?i)\bCAT\s*-?\s*(1|I)\b|ASSESSMENT TEST\s*-?\s*(1|I)\b`)
	cat2Regex = regexp.MustCompile(`(?i)\bCAT\s*-?\s*(2|II)\b|ASSESSMENT TEST\s*-?\s*(2|II)\b`)
	fatRegex  = regexp.MustCompile(`(?i)\bFAT\b|FINAL ASSESSMENT`)
)

// ParseExamCategory maps a separator label onto an ExamCategory, OTHER when
// it names none of the known windows.
func ParseExamCategory(label string) ExamCategory {
	switch {
	case fatRegex.MatchString(label):
		return ExamFAT
	case cat2Regex.MatchString(label):
		return ExamCAT2
	case cat1Regex.MatchString(label):
		return ExamCAT1
	}
	return ExamOther
}

// ExamSchedule reads the exam schedule. Separator rows naming an exam window
// group the data rows below them.
//
// data rows: Sl.No | Code | Title | Type | Class ID | Slot | Date | Session |
// Reporting | Exam Time | Venue | Seat Location | Seat No
func ExamSchedule(raw, semesterID string) ExamScheduleData {
	data := ExamScheduleData{SemesterID: semesterID, Exams: []ExamSlot{}}
	category := ExamOther

	eachRow(load(raw), func(_ *goquery.Selection, cells []string, header bool) {
		at := findCourseCode(cells)
		if header || at < 0 {
			if label := separatorLabel(cells); label != "" {
				category = ParseExamCategory(label)
			}
			return
		}
		data.Exams = append(data.Exams, ExamSlot{
			Category:      category,
			CourseCode:    cells[at],
			CourseTitle:   cell(cells, at+1),
			CourseType:    cell(cells, at+2),
			ClassID:       cell(cells, at+3),
			Slot:          cell(cells, at+4),
			Date:          cell(cells, at+5),
			Session:       cell(cells, at+6),
			ReportingTime: cell(cells, at+7),
			ExamTime:      cell(cells, at+8),
			Venue:         cell(cells, at+9),
			SeatLocation:  cell(cells, at+10),
			SeatNumber:    cell(cells, at+11),
		})
	})
	return data
}

// separatorLabel returns the text of a row that holds a single non-empty
// cell.
func separatorLabel(cells []string) string {
	label := ""
	for _, c := range cells {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if label != "" {
			return ""
		}
		label = c
	}
	return label
}
