package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"vtopassist-backend/internal/extract"

	"github.com/jedib0t/go-pretty/v6/table"
)

var output io.Writer = os.Stdout

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(output)
	return t
}

func render(value any, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	}

	switch v := value.(type) {
	case extract.ProfileData:
		renderProfile(v)
	case []extract.Semester:
		renderSemesters(v)
	case extract.AttendanceData:
		renderAttendance(v)
	case extract.TimetableData:
		renderTimetable(v)
	case extract.MarksData:
		renderMarks(v)
	case extract.GradesData:
		renderGrades(v)
	case extract.ExamScheduleData:
		renderExams(v)
	case extract.CurriculumData:
		renderCurriculum(v)
	default:
		return fmt.Errorf("cannot render %T", value)
	}
	return nil
}

func float(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func renderProfile(p extract.ProfileData) {
	t := newTable()
	t.AppendRows([]table.Row{
		{"Name", p.Name},
		{"Registration number", p.RegistrationNumber},
		{"Application number", p.ApplicationNumber},
		{"Program", p.Program},
		{"Branch", p.Branch},
		{"School", p.School},
		{"Email", p.Email},
		{"Mobile", p.Mobile},
		{"Date of birth", p.DateOfBirth},
		{"Gender", p.Gender},
		{"Blood group", p.BloodGroup},
		{"Nationality", p.Nationality},
		{"Proctor", p.ProctorName},
	})
	if h := p.Hostel; h != nil {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"Hostel block", h.Block},
			{"Room", h.Room},
			{"Bed type", h.BedType},
			{"Mess", h.MessType},
		})
	}
	t.Render()
}

func renderSemesters(semesters []extract.Semester) {
	t := newTable()
	t.AppendHeader(table.Row{"ID", "Name"})
	for _, s := range semesters {
		t.AppendRow(table.Row{s.ID, s.Name})
	}
	t.Render()
}

func renderAttendance(a extract.AttendanceData) {
	t := newTable()
	t.SetTitle("Attendance " + a.SemesterID)
	t.AppendHeader(table.Row{"Code", "Course", "Type", "Slot", "Attended", "Total", "%", "Needed", "Can skip", "Debarred"})
	for _, e := range a.Entries {
		t.AppendRow(table.Row{
			e.CourseCode,
			e.CourseName,
			e.ClassType,
			e.Slot,
			e.Attended,
			e.Total,
			float(e.Percentage),
			e.ClassesNeeded,
			e.ClassesCanSkip,
			e.IsDebarred,
		})
	}
	t.AppendFooter(table.Row{"", "Overall", "", "", a.TotalAttended, a.TotalClasses, float(a.OverallPercentage)})
	t.Render()
}

func renderTimetable(tt extract.TimetableData) {
	t := newTable()
	t.SetTitle("Courses " + tt.SemesterID)
	t.AppendHeader(table.Row{"Code", "Title", "Type", "Credits", "Slot", "Venue", "Faculty"})
	for _, c := range tt.Courses {
		t.AppendRow(table.Row{c.CourseCode, c.CourseTitle, c.ClassType, float(c.Credits), c.Slot, c.Venue, c.Faculty})
	}
	t.Render()

	if len(tt.Slots) == 0 {
		return
	}
	grid := newTable()
	grid.SetTitle("Weekly schedule")
	grid.AppendHeader(table.Row{"Day", "Start", "End", "Slot", "Code", "Type", "Venue"})
	for _, s := range tt.Slots {
		grid.AppendRow(table.Row{s.Day, s.StartTime, s.EndTime, s.Slot, s.CourseCode, s.ClassType, s.Venue})
	}
	grid.Render()
}

func renderMarks(m extract.MarksData) {
	for _, c := range m.Courses {
		t := newTable()
		t.SetTitle(fmt.Sprintf("%s %s (%s)", c.CourseCode, c.CourseTitle, c.ClassType))
		t.AppendHeader(table.Row{"Assessment", "Max", "Weightage", "Scored", "Weighted", "Status", "Remark"})
		for _, a := range c.Assessments {
			t.AppendRow(table.Row{
				a.Title,
				float(a.MaxMarks),
				float(a.Weightage),
				float(a.Scored),
				float(a.WeightedScore),
				a.Status,
				a.Remark,
			})
		}
		t.AppendFooter(table.Row{"Total", "", float(c.TotalWeightage), "", float(c.TotalWeighted)})
		t.Render()
	}
}

func renderGrades(g extract.GradesData) {
	t := newTable()
	t.AppendHeader(table.Row{"Code", "Title", "Type", "Credits", "Grade", "Points", "Exam"})
	for _, c := range g.Courses {
		t.AppendRow(table.Row{c.CourseCode, c.CourseTitle, c.CourseType, float(c.Credits), c.Grade, float(c.GradePoints), c.ExamMonth})
	}
	t.Render()

	summary := newTable()
	summary.AppendHeader(table.Row{"Semester", "Credits", "SGPA"})
	for _, s := range g.Semesters {
		summary.AppendRow(table.Row{s.Name, float(s.Credits), float(s.SGPA)})
	}
	summary.AppendFooter(table.Row{"CGPA", fmt.Sprintf("%s / %s", float(g.CreditsEarned), float(g.CreditsRegistered)), float(g.CGPA)})
	summary.Render()
}

func renderExams(e extract.ExamScheduleData) {
	t := newTable()
	t.SetTitle("Exams " + e.SemesterID)
	t.AppendHeader(table.Row{"Category", "Code", "Title", "Date", "Session", "Reporting", "Time", "Venue", "Seat"})
	for _, x := range e.Exams {
		t.AppendRow(table.Row{x.Category, x.CourseCode, x.CourseTitle, x.Date, x.Session, x.ReportingTime, x.ExamTime, x.Venue, x.SeatNumber})
	}
	t.Render()
}

func renderCurriculum(c extract.CurriculumData) {
	t := newTable()
	t.AppendHeader(table.Row{"Category", "Code", "Title", "Credits", "Grade", "Earned"})
	for _, category := range c.Categories {
		for _, course := range category.Courses {
			t.AppendRow(table.Row{category.Code, course.Code, course.Title, course.Credits, course.Grade, course.Earned})
		}
		t.AppendRow(table.Row{category.Code, "", category.Name, fmt.Sprintf("%d / %d", category.EarnedCredits, category.RequiredCredits)})
		t.AppendSeparator()
	}
	t.AppendFooter(table.Row{"Total", "", "", fmt.Sprintf("%d / %d", c.TotalEarned, c.TotalRequired)})
	t.Render()
}
