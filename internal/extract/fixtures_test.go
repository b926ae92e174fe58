package extract

import (
	_ "embed"
)

var (
	//go:embed testdata/attendance.html
	attendancePage string
	//go:embed testdata/semesters.html
	semestersPage string
	//go:embed testdata/timetable.html
	timetablePage string
	//go:embed testdata/curriculum.html
	curriculumPage string
	//go:embed testdata/marks.html
	marksPage string
	//go:embed testdata/grades.html
	gradesPage string
	//go:embed testdata/grade_history.html
	gradeHistoryPage string
	//go:embed testdata/grade_history_cgpa.html
	gradeHistoryCgpaPage string
	//go:embed testdata/exams.html
	examsPage string
	//go:embed testdata/profile.html
	profilePage string
	//go:embed testdata/profile_dayscholar.html
	profileDayScholarPage string
	//go:embed testdata/login_page.html
	loginPage string
	//go:embed testdata/captcha.html
	captchaPage string
	//go:embed testdata/dashboard.html
	dashboardPage string
	//go:embed testdata/login_error.html
	loginErrorPage string
	//go:embed testdata/not_found.html
	notFoundPage string
)
