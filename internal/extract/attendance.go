package extract

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AttendanceTarget is the minimum attendance ratio the portal enforces.
const AttendanceTarget = 0.75

// Attendance reads the per-course attendance summary. Rows are anchored on
// the "CODE - Name - Type" course cell, the counters follow it.
func Attendance(raw, semesterID string) AttendanceData {
	data := AttendanceData{SemesterID: semesterID, Entries: []AttendanceEntry{}}

	tableRows(load(raw), func(_ *goquery.Selection, cells []string) {
		entry, ok := attendanceRow(cells)
		if !ok {
			return
		}
		data.Entries = append(data.Entries, entry)
		data.TotalAttended += entry.Attended
		data.TotalClasses += entry.Total
	})

	if data.TotalClasses > 0 {
		data.OverallPercentage = round2(float64(data.TotalAttended) / float64(data.TotalClasses) * 100)
	}
	return data
}

func attendanceRow(cells []string) (AttendanceEntry, bool) {
	detail := -1
	var parts []string
	for i, c := range cells {
		if !courseCodeLeadRegex.MatchString(c) {
			continue
		}
		parts = splitDetail(c)
		if len(parts) >= 2 {
			detail = i
			break
		}
	}
	if detail < 0 {
		return AttendanceEntry{}, false
	}

	entry := AttendanceEntry{
		CourseCode: parts[0],
		CourseName: parts[1],
		ClassType:  ClassTheory,
	}
	if len(parts) >= 3 {
		entry.ClassType = ParseClassType(parts[len(parts)-1])
	}

	// the first two integers after the course cell are attended/total, the
	// free-text cells between carry the class detail and the faculty
	var numbers []int
	var texts []string
	for i := detail + 1; i < len(cells); i++ {
		c := cells[i]
		if len(numbers) < 2 && integerRegex.MatchString(c) {
			numbers = append(numbers, parseInt(c))
			continue
		}
		if len(numbers) == 0 {
			texts = append(texts, c)
			continue
		}
		if len(numbers) == 2 {
			rest := cells[i:]
			if len(rest) > 0 && (isNumber(rest[0]) || rest[0] == "") {
				entry.Percentage = parseFloat(rest[0])
				rest = rest[1:]
			}
			if len(rest) > 0 {
				entry.Status = placeholder(rest[0])
			}
			break
		}
	}
	if len(numbers) == 2 {
		entry.Attended, entry.Total = numbers[0], numbers[1]
	}

	if len(texts) > 0 {
		entry.Slot, entry.Venue = splitSlotVenue(texts[0])
	}
	if len(texts) > 1 {
		entry.Faculty = facultyName(texts[1])
	}

	if entry.Percentage <= 0 && entry.Total > 0 {
		entry.Percentage = round2(float64(entry.Attended) / float64(entry.Total) * 100)
	}
	entry.IsDebarred = IsDebarred(entry.Status)
	entry.ClassesNeeded = ClassesNeeded(entry.Attended, entry.Total, AttendanceTarget)
	entry.ClassesCanSkip = ClassesCanSkip(entry.Attended, entry.Total, AttendanceTarget)
	return entry, true
}

// splitDetail splits "CODE - Name - Type", names may contain dashes of their
// own so only the first and last separators are structural.
func splitDetail(s string) []string {
	raw := strings.Split(s, " - ")
	if len(raw) < 2 {
		raw = strings.SplitN(s, "-", 2)
	}
	var parts []string
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 3 {
		parts = []string{
			parts[0],
			strings.Join(parts[1:len(parts)-1], " - "),
			parts[len(parts)-1],
		}
	}
	return parts
}

// splitSlotVenue splits "A1+TA1 - SJT303 - ..." into slot and venue.
func splitSlotVenue(s string) (string, string) {
	parts := strings.Split(s, " - ")
	slot := placeholder(parts[0])
	venue := ""
	if len(parts) > 1 {
		venue = placeholder(parts[1])
	}
	return slot, venue
}

// facultyName drops the "- SCHOOL" suffix of a faculty cell.
func facultyName(s string) string {
	name, _, _ := strings.Cut(s, " - ")
	return placeholder(name)
}

// IsDebarred reports a debarred status, a status that mentions the
// debarment being permitted is not one.
func IsDebarred(status string) bool {
	lower := strings.ToLower(status)
	return strings.Contains(lower, "debar") && !strings.Contains(lower, "permit")
}

// ClassesNeeded is the number of consecutive classes to attend to get back
// to target, 0 when already there.
func ClassesNeeded(attended, total int, target float64) int {
	if total <= 0 || target <= 0 || target >= 1 {
		return 0
	}
	if float64(attended)/float64(total) >= target {
		return 0
	}
	need := (target*float64(total) - float64(attended)) / (1 - target)
	return int(math.Ceil(need - 1e-9))
}

// ClassesCanSkip is the number of classes that can be missed while staying
// at or above target, 0 when already below it.
func ClassesCanSkip(attended, total int, target float64) int {
	if total <= 0 || target <= 0 || target >= 1 {
		return 0
	}
	if float64(attended)/float64(total) < target {
		return 0
	}
	skip := float64(attended)/target - float64(total)
	return int(math.Floor(skip + 1e-9))
}
