package vtop

const (
	fieldCSRF         = "_csrf"
	fieldAuthorizedID = "authorizedID"
	fieldSemester     = "semesterSubId"
	fieldCacheBuster  = "x"

	cookieSession = "JSESSIONID"
	cookieSticky  = "SERVERID"
)

// Endpoints are the portal paths the client talks to, relative to the base
// url. View paths are the "navigate" requests the portal expects before the
// matching data request.
type Endpoints struct {
	Entry   string `json:"entry"`
	Setup   string `json:"setup"`
	Captcha string `json:"captcha"`
	Login   string `json:"login"`
	Content string `json:"content"`
	Logout  string `json:"logout"`

	AttendanceView string `json:"attendance_view"`
	AttendanceData string `json:"attendance_data"`
	TimetableView  string `json:"timetable_view"`
	TimetableData  string `json:"timetable_data"`
	MarksView      string `json:"marks_view"`
	MarksData      string `json:"marks_data"`
	GradesView     string `json:"grades_view"`
	GradesData     string `json:"grades_data"`
	GradeHistory   string `json:"grade_history"`
	ExamsView      string `json:"exams_view"`
	ExamsData      string `json:"exams_data"`
	Curriculum     string `json:"curriculum"`
	Profile        string `json:"profile"`
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Entry:   "/vtop/open/page",
		Setup:   "/vtop/prelogin/setup",
		Captcha: "/vtop/get/new/captcha",
		Login:   "/vtop/login",
		Content: "/vtop/content",
		Logout:  "/vtop/logout",

		AttendanceView: "/vtop/academics/common/StudentAttendance",
		AttendanceData: "/vtop/processViewStudentAttendance",
		TimetableView:  "/vtop/academics/common/StudentTimeTable",
		TimetableData:  "/vtop/processViewTimeTable",
		MarksView:      "/vtop/examinations/StudentMarkView",
		MarksData:      "/vtop/examinations/doStudentMarkView",
		GradesView:     "/vtop/examinations/examGradeView/StudentGradeView",
		GradesData:     "/vtop/examinations/examGradeView/doStudentGradeView",
		GradeHistory:   "/vtop/examinations/examGradeView/StudentGradeHistory",
		ExamsView:      "/vtop/examinations/StudentExamSchedule",
		ExamsData:      "/vtop/examinations/doSearchExamScheduleForStudent",
		Curriculum:     "/vtop/academics/common/Curriculum",
		Profile:        "/vtop/studentsRecord/StudentProfileAllView",
	}
}

// withDefaults fills every empty path from DefaultEndpoints.
func (e Endpoints) withDefaults() Endpoints {
	d := DefaultEndpoints()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&e.Entry, d.Entry)
	fill(&e.Setup, d.Setup)
	fill(&e.Captcha, d.Captcha)
	fill(&e.Login, d.Login)
	fill(&e.Content, d.Content)
	fill(&e.Logout, d.Logout)
	fill(&e.AttendanceView, d.AttendanceView)
	fill(&e.AttendanceData, d.AttendanceData)
	fill(&e.TimetableView, d.TimetableView)
	fill(&e.TimetableData, d.TimetableData)
	fill(&e.MarksView, d.MarksView)
	fill(&e.MarksData, d.MarksData)
	fill(&e.GradesView, d.GradesView)
	fill(&e.GradesData, d.GradesData)
	fill(&e.GradeHistory, d.GradeHistory)
	fill(&e.ExamsView, d.ExamsView)
	fill(&e.ExamsData, d.ExamsData)
	fill(&e.Curriculum, d.Curriculum)
	fill(&e.Profile, d.Profile)
	return e
}

// loginArea are the paths a dead session gets bounced to.
func (e Endpoints) loginArea() []string {
	return []string{e.Entry, e.Setup, e.Login}
}
