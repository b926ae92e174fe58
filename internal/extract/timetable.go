package extract

import (
	"regexp"
	"strings"
	"vtopassist-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var (
	// "BCSE101L - Computer Programming ( Embedded Theory )"
	timetableCourseRegex = regexp.MustCompile(`^([A-Z]{2,5}\d{3,4}[A-Z]{0,2})\s*-\s*(.+?)\s*(?:\(\s*([^()]+?)\s*\))?$`)
	// "3 0 0 0 3", the last figure is the credit count
	ltpjcRegex = regexp.MustCompile(`^(\d+(?:\.\d+)?\s+){4}(\d+(?:\.\d+)?)$`)
	// "A1+TA1 - SJT303"
	slotVenueRegex = regexp.MustCompile(`^([A-Z]{1,4}\d{1,2}(?:\+[A-Z]{1,4}\d{1,2})*)\s*-\s*(\S.*)$`)
	slotRegex      = regexp.MustCompile(`^[A-Z]{1,4}\d{1,2}(?:\+[A-Z]{1,4}\d{1,2})*$`)
	// "A1-BCSE101L-ETH-SJT303-ALL"
	gridCellRegex = regexp.MustCompile(`^([A-Z]{1,4}\d{1,2})-([A-Z]{2,5}\d{3,4}[A-Z]{0,2})-([A-Z]{2,4})-([^-]+?)(?:-([A-Z]+))?$`)
	clockRegex    = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

var weekdays = map[string]string{
	"MON": "MON", "TUE": "TUE", "WED": "WED", "THU": "THU",
	"FRI": "FRI", "SAT": "SAT", "SUN": "SUN",
}

// Timetable reads the registered course list and, when present, the weekly
// slot grid.
func Timetable(raw, semesterID string) TimetableData {
	doc := load(raw)
	data := TimetableData{
		SemesterID: semesterID,
		Courses:    []TimetableCourse{},
		Slots:      []TimetableSlot{},
	}

	grid := timetableGrid(doc)
	tableRows(doc, func(tr *goquery.Selection, cells []string) {
		if grid != nil && tr.Closest("table").IsSelection(grid) {
			return
		}
		course, ok := timetableCourse(cells)
		if ok {
			data.Courses = append(data.Courses, course)
		}
	})
	if grid != nil {
		data.Slots = gridSlots(grid)
	}
	return data
}

func timetableCourse(cells []string) (TimetableCourse, bool) {
	at := -1
	var match []string
	for i, c := range cells {
		match = timetableCourseRegex.FindStringSubmatch(c)
		if match != nil {
			at = i
			break
		}
	}
	if at < 0 {
		return TimetableCourse{}, false
	}

	course := TimetableCourse{
		CourseCode:  match[1],
		CourseTitle: strings.TrimSpace(match[2]),
		ClassType:   ParseClassType(match[3]),
	}
	for i := at + 1; i < len(cells); i++ {
		c := cells[i]
		if m := ltpjcRegex.FindStringSubmatch(c); m != nil && course.Credits == 0 {
			course.Credits = parseFloat(m[2])
			continue
		}
		if m := slotVenueRegex.FindStringSubmatch(c); m != nil && course.Slot == "" {
			course.Slot = m[1]
			course.Venue = placeholder(strings.TrimSpace(strings.Split(m[2], " - ")[0]))
			// the faculty cell follows the slot/venue cell
			if i+1 < len(cells) {
				course.Faculty = facultyName(cells[i+1])
			}
			continue
		}
	}
	return course, true
}

// timetableGrid finds the weekly grid: the table whose rows start with
// weekday labels.
func timetableGrid(doc *goquery.Document) *goquery.Selection {
	if grid := doc.Find("table#timeTableStyle"); grid.Length() > 0 {
		return grid.First()
	}
	var grid *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		days := 0
		htmlutil.OwnRows(table).Each(func(_ int, tr *goquery.Selection) {
			cells := htmlutil.Cells(tr)
			if len(cells) > 0 && weekdays[strings.ToUpper(cells[0])] != "" {
				days++
			}
		})
		if days >= 2 {
			grid = table
			return false
		}
		return true
	})
	return grid
}

type slotTimes struct {
	start []string
	end   []string
}

// gridSlots walks the grid. Header rows ("THEORY Start 08:00 ...",
// "End 08:50 ...") give the time of every column for that kind of class,
// day rows ("MON THEORY A1 ...", "LAB L1 ...") hold the booked cells.
// Rowspans mean the leading day/kind cells are missing on follow-up rows so
// those are carried over.
func gridSlots(grid *goquery.Selection) []TimetableSlot {
	times := map[string]*slotTimes{}
	slots := []TimetableSlot{}
	kind := "THEORY"
	day := ""

	htmlutil.OwnRows(grid).Each(func(_ int, tr *goquery.Selection) {
		cells := htmlutil.Cells(tr)
		lead := 0
		// blank spacer cells in front of a label belong to the label column
		for lead < len(cells) && cells[lead] == "" {
			lead++
		}
		if lead == len(cells) || !isGridLabel(cells[lead]) {
			lead = 0
		}
		boundary := ""
	scan:
		for lead < len(cells) {
			upper := strings.ToUpper(cells[lead])
			switch {
			case weekdays[upper] != "":
				day = weekdays[upper]
			case upper == "THEORY" || upper == "LAB":
				kind = upper
			case upper == "START" || upper == "END":
				boundary = upper
			default:
				break scan
			}
			lead++
		}
		columns := cells[lead:]

		if boundary != "" {
			t := times[kind]
			if t == nil {
				t = &slotTimes{}
				times[kind] = t
			}
			if boundary == "START" {
				t.start = columns
			} else {
				t.end = columns
			}
			return
		}
		if day == "" {
			return
		}

		for i, c := range columns {
			m := gridCellRegex.FindStringSubmatch(c)
			if m == nil {
				continue
			}
			slot := TimetableSlot{
				Day:        day,
				Slot:       m[1],
				CourseCode: m[2],
				ClassType:  gridClassType(m[3], kind),
				Venue:      m[4],
			}
			if t := times[kind]; t != nil {
				slot.StartTime = clockAt(t.start, i)
				slot.EndTime = clockAt(t.end, i)
			}
			slots = append(slots, slot)
		}
	})
	return slots
}

func isGridLabel(s string) bool {
	upper := strings.ToUpper(s)
	switch upper {
	case "THEORY", "LAB", "START", "END":
		return true
	}
	return weekdays[upper] != ""
}

func gridClassType(code, kind string) ClassType {
	switch code {
	case "ETH", "TH", "SS":
		return ClassTheory
	case "ELA", "LO":
		return ClassLab
	case "EPJ", "PJT":
		return ClassProject
	}
	if kind == "LAB" {
		return ClassLab
	}
	return ClassTheory
}

func clockAt(columns []string, i int) string {
	if i < 0 || i >= len(columns) {
		return ""
	}
	if !clockRegex.MatchString(columns[i]) {
		return ""
	}
	return columns[i]
}
