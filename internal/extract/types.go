package extract

// ClassType is the delivery mode of a course component.
type ClassType string

const (
	ClassTheory  ClassType = "theory"
	ClassLab     ClassType = "lab"
	ClassProject ClassType = "project"
)

type Semester struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AttendanceEntry struct {
	CourseCode     string    `json:"course_code"`
	CourseName     string    `json:"course_name"`
	ClassType      ClassType `json:"class_type"`
	Slot           string    `json:"slot"`
	Venue          string    `json:"venue"`
	Faculty        string    `json:"faculty"`
	Attended       int       `json:"attended"`
	Total          int       `json:"total"`
	Percentage     float64   `json:"percentage"`
	Status         string    `json:"status"`
	IsDebarred     bool      `json:"is_debarred"`
	ClassesNeeded  int       `json:"classes_needed"`
	ClassesCanSkip int       `json:"classes_can_skip"`
}

type AttendanceData struct {
	SemesterID        string            `json:"semester_id"`
	Entries           []AttendanceEntry `json:"entries"`
	TotalAttended     int               `json:"total_attended"`
	TotalClasses      int               `json:"total_classes"`
	OverallPercentage float64           `json:"overall_percentage"`
}

type TimetableCourse struct {
	CourseCode  string    `json:"course_code"`
	CourseTitle string    `json:"course_title"`
	ClassType   ClassType `json:"class_type"`
	Credits     float64   `json:"credits"`
	Slot        string    `json:"slot"`
	Venue       string    `json:"venue"`
	Faculty     string    `json:"faculty"`
}

type TimetableSlot struct {
	Day        string    `json:"day"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Slot       string    `json:"slot"`
	CourseCode string    `json:"course_code"`
	ClassType  ClassType `json:"class_type"`
	Venue      string    `json:"venue"`
}

type TimetableData struct {
	SemesterID string            `json:"semester_id"`
	Courses    []TimetableCourse `json:"courses"`
	Slots      []TimetableSlot   `json:"slots"`
}

type CurriculumCourse struct {
	Code    string `json:"code"`
	Title   string `json:"title"`
	Credits int    `json:"credits"`
	Grade   string `json:"grade"`
	Earned  bool   `json:"earned"`
}

type CurriculumCategory struct {
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	RequiredCredits int                `json:"required_credits"`
	EarnedCredits   int                `json:"earned_credits"`
	Courses         []CurriculumCourse `json:"courses"`
}

type CurriculumData struct {
	Categories    []CurriculumCategory `json:"categories"`
	TotalRequired int                  `json:"total_required"`
	TotalEarned   int                  `json:"total_earned"`
}

// AssessmentStatus flags whether an assessment row carries a usable score.
type AssessmentStatus string

const (
	AssessmentGraded  AssessmentStatus = "graded"
	AssessmentAbsent  AssessmentStatus = "absent"
	AssessmentPending AssessmentStatus = "pending"
)

type Assessment struct {
	Title         string           `json:"title"`
	MaxMarks      float64          `json:"max_marks"`
	Weightage     float64          `json:"weightage"`
	Scored        float64          `json:"scored"`
	WeightedScore float64          `json:"weighted_score"`
	Status        AssessmentStatus `json:"status"`
	Remark        string           `json:"remark"`
}

type MarksCourse struct {
	CourseCode     string       `json:"course_code"`
	CourseTitle    string       `json:"course_title"`
	ClassType      ClassType    `json:"class_type"`
	Faculty        string       `json:"faculty"`
	Slot           string       `json:"slot"`
	Assessments    []Assessment `json:"assessments"`
	TotalWeighted  float64      `json:"total_weighted"`
	TotalWeightage float64      `json:"total_weightage"`
}

type MarksData struct {
	SemesterID string        `json:"semester_id"`
	Courses    []MarksCourse `json:"courses"`
}

type GradeCourse struct {
	CourseCode  string  `json:"course_code"`
	CourseTitle string  `json:"course_title"`
	CourseType  string  `json:"course_type"`
	Credits     float64 `json:"credits"`
	Grade       string  `json:"grade"`
	GradePoints float64 `json:"grade_points"`
	ExamMonth   string  `json:"exam_month"`
}

type SemesterGrade struct {
	Name    string  `json:"name"`
	Credits float64 `json:"credits"`
	SGPA    float64 `json:"sgpa"`
}

type GradesData struct {
	SemesterID        string          `json:"semester_id"`
	Courses           []GradeCourse   `json:"courses"`
	Semesters         []SemesterGrade `json:"semesters"`
	CGPA              float64         `json:"cgpa"`
	CreditsRegistered float64         `json:"credits_registered"`
	CreditsEarned     float64         `json:"credits_earned"`
}

// ExamCategory is the assessment window an exam slot belongs to.
type ExamCategory string

const (
	ExamFAT   ExamCategory = "FAT"
	ExamCAT1  ExamCategory = "CAT1"
	ExamCAT2  ExamCategory = "CAT2"
	ExamOther ExamCategory = "OTHER"
)

type ExamSlot struct {
	Category      ExamCategory `json:"category"`
	CourseCode    string       `json:"course_code"`
	CourseTitle   string       `json:"course_title"`
	CourseType    string       `json:"course_type"`
	ClassID       string       `json:"class_id"`
	Slot          string       `json:"slot"`
	Date          string       `json:"date"`
	Session       string       `json:"session"`
	ReportingTime string       `json:"reporting_time"`
	ExamTime      string       `json:"exam_time"`
	Venue         string       `json:"venue"`
	SeatLocation  string       `json:"seat_location"`
	SeatNumber    string       `json:"seat_number"`
}

type ExamScheduleData struct {
	SemesterID string     `json:"semester_id"`
	Exams      []ExamSlot `json:"exams"`
}

type Hostel struct {
	Block    string `json:"block"`
	Room     string `json:"room"`
	BedType  string `json:"bed_type"`
	MessType string `json:"mess_type"`
}

type ProfileData struct {
	Name               string  `json:"name"`
	RegistrationNumber string  `json:"registration_number"`
	ApplicationNumber  string  `json:"application_number"`
	Program            string  `json:"program"`
	Branch             string  `json:"branch"`
	School             string  `json:"school"`
	Email              string  `json:"email"`
	Mobile             string  `json:"mobile"`
	DateOfBirth        string  `json:"date_of_birth"`
	Gender             string  `json:"gender"`
	BloodGroup         string  `json:"blood_group"`
	Nationality        string  `json:"nationality"`
	ProctorName        string  `json:"proctor_name"`
	Hostel             *Hostel `json:"hostel,omitempty"`
}
