package vtop

import (
	"context"
	"net/url"
	"vtopassist-backend/internal/extract"
)

func semesterForm(semesterID string) url.Values {
	return url.Values{fieldSemester: {semesterID}}
}

// FetchSemesters reads the semester picker off the attendance page.
func (c *Client) FetchSemesters(ctx context.Context, s Session) ([]extract.Semester, Session, error) {
	ctx, span := tracer.Start(ctx, "FetchSemesters")
	defer span.End()

	body, s, err := c.fetchPage(ctx, s, pageRequest{
		report: report_client_fetch_semesters,
		data:   c.endpoints.AttendanceView,
		form:   menuForm,
	})
	if err != nil {
		return nil, s, err
	}
	if !extract.HasSemesterPicker(body) {
		err = newError(CodeParseFailure, "attendance page has no semester picker", nil)
		c.tel.ReportBroken(report_client_fetch_semesters, err)
		return nil, s, err
	}
	return extract.Semesters(body), s, nil
}

func (c *Client) FetchAttendance(ctx context.Context, s Session, semesterID string) (extract.AttendanceData, Session, error) {
	ctx, span := tracer.Start(ctx, "FetchAttendance")
	defer span.End()

	body, s, err := c.fetchPage(ctx, s, pageRequest{
		report: report_client_fetch_attendance,
		view:   c.endpoints.AttendanceView,
		data:   c.endpoints.AttendanceData,
		form:   semesterForm(semesterID),
	})
	if err != nil {
		return extract.AttendanceData{}, s, err
	}
	return extract.Attendance(body, semesterID), s, nil
}

func (c *Client) FetchTimetable(ctx context.Context, s Session, semesterID string) (extract.TimetableData, Session, error) {
	ctx, span := tracer.Start(ctx, "FetchTimetable")
	defer span.End()

	body, s, err := c.fetchPage(ctx, s, pageRequest{
		report: report_client_fetch_timetable,
		view:   c.endpoints.TimetableView,
		data:   c.endpoints.TimetableData,
		form:   semesterForm(semesterID),
	})
	if err != nil {
		return extract.TimetableData{}, s, err
	}
	return extract.Timetable(body, semesterID), s, nil
}

func (c *Client) FetchCurriculum(ctx context.Context, s Session) (extract.CurriculumData, Session, error) {
	ctx, span := tracer.Start(ctx, "FetchCurriculum")
	defer span.End()

	body, s, err := c.fetchPage(ctx, s, pageRequest{
		report: report_client_fetch_curriculum,
		data:   c.endpoints.Curriculum,
		form:   menuForm,
	})
	if err != nil {
		return extract.CurriculumData{}, s, err
	}
	return extract.Curriculum(body), s, nil
}

func (c *Client) FetchMarks(ctx context.Context, s Session, semesterID string) (extract.MarksData, Session, error) {
	ctx, span := tracer.Start(ctx, "FetchMarks")
	defer span.End()

	body, s, err := c.fetchPage(ctx, s, pageRequest{
		report: report_client_fetch_marks,
		view:   c.endpoints.MarksView,
		data:   c.endpoints.MarksData,
		form:   semesterForm(semesterID),
	})
	if err != nil {
		return extract.MarksData{}, s, err
	}
	return extract.Marks(body, semesterID), s, nil
}

// FetchGrades reads one semester's grades, or the whole grade history when
// semesterID is empty.
func (c *Client) FetchGrades(ctx context.Context, s Session, semesterID string) (extract.GradesData, Session, error) {
	ctx, span := tracer.Start(ctx, "FetchGrades")
	defer span.End()

	p := pageRequest{
		report: report_client_fetch_grades,
		view:   c.endpoints.GradesView,
		data:   c.endpoints.GradesData,
		form:   semesterForm(semesterID),
	}
	if semesterID == "" {
		p = pageRequest{
			report: report_client_fetch_grades,
			data:   c.endpoints.GradeHistory,
			form:   menuForm,
		}
	}
	body, s, err := c.fetchPage(ctx, s, p)
	if err != nil {
		return extract.GradesData{}, s, err
	}
	return extract.Grades(body, semesterID), s, nil
}

func (c *Client) FetchExamSchedule(ctx context.Context, s Session, semesterID string) (extract.ExamScheduleData, Session, error) {
	ctx, span := tracer.Start(ctx, "FetchExamSchedule")
	defer span.End()

	body, s, err := c.fetchPage(ctx, s, pageRequest{
		report: report_client_fetch_exams,
		view:   c.endpoints.ExamsView,
		data:   c.endpoints.ExamsData,
		form:   semesterForm(semesterID),
	})
	if err != nil {
		return extract.ExamScheduleData{}, s, err
	}
	return extract.ExamSchedule(body, semesterID), s, nil
}

func (c *Client) FetchProfile(ctx context.Context, s Session) (extract.ProfileData, Session, error) {
	ctx, span := tracer.Start(ctx, "FetchProfile")
	defer span.End()

	body, s, err := c.fetchPage(ctx, s, pageRequest{
		report: report_client_fetch_profile,
		data:   c.endpoints.Profile,
		form:   menuForm,
	})
	if err != nil {
		return extract.ProfileData{}, s, err
	}
	return extract.Profile(body), s, nil
}
