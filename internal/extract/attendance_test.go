package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestAttendance(t *testing.T) {
	data := Attendance(attendancePage, "VL20242501")

	expected := AttendanceData{
		SemesterID: "VL20242501",
		Entries: []AttendanceEntry{
			{
				CourseCode: "BCSE101L",
				CourseName: "Computer Programming: Python",
				ClassType:  ClassTheory,
				Slot:       "A1+TA1",
				Venue:      "SJT303",
				Faculty:    "RAVI KUMAR",
				Attended:   9,
				Total:      12,
				Percentage: 75,
				Status:     "Permitted",
			},
			{
				CourseCode:    "BCSE101P",
				CourseName:    "Computer Programming: Python",
				ClassType:     ClassLab,
				Slot:          "L31+L32",
				Venue:         "SJT418",
				Faculty:       "RAVI KUMAR",
				Attended:      6,
				Total:         12,
				Percentage:    50,
				Status:        "Debarred",
				IsDebarred:    true,
				ClassesNeeded: 12,
			},
			{
				CourseCode:     "BMAT101L",
				CourseName:     "Calculus & Laplace",
				ClassType:      ClassTheory,
				Slot:           "B1",
				Venue:          "MB224",
				Faculty:        "ANITA RAO",
				Attended:       20,
				Total:          20,
				Percentage:     100,
				Status:         "Debarred - Permitted by Dean",
				ClassesCanSkip: 6,
			},
		},
		TotalAttended:     35,
		TotalClasses:      44,
		OverallPercentage: 79.55,
	}

	if diff := cmp.Diff(expected, data); diff != "" {
		t.Fatal(diff)
	}
}

func TestAttendanceIdempotent(t *testing.T) {
	require.Equal(t, Attendance(attendancePage, "x"), Attendance(attendancePage, "x"))
}

func TestAttendanceMalformed(t *testing.T) {
	for _, page := range []string{"", "<table><tr><td>", "not html at all", "<tr><td>BCSE101L</td></tr>"} {
		data := Attendance(page, "sem")
		require.Empty(t, data.Entries)
		require.Equal(t, "sem", data.SemesterID)
		require.Zero(t, data.OverallPercentage)
	}
}

func TestIsDebarred(t *testing.T) {
	testCases := []struct {
		status   string
		expected bool
	}{
		{"Debarred", true},
		{"debarred from FAT", true},
		{"Debarred - Permitted", false},
		{"Permitted", false},
		{"", false},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, IsDebarred(test.status), test.status)
	}
}

func TestClassesNeededAndSkip(t *testing.T) {
	testCases := []struct {
		attended, total int
		needed, skip    int
	}{
		{9, 12, 0, 0},
		{6, 12, 12, 0},
		{20, 20, 0, 6},
		{0, 0, 0, 0},
		{0, 4, 12, 0},
		{30, 40, 0, 0},
		{31, 40, 0, 1},
	}
	for _, test := range testCases {
		require.Equal(t, test.needed, ClassesNeeded(test.attended, test.total, AttendanceTarget), "needed %d/%d", test.attended, test.total)
		require.Equal(t, test.skip, ClassesCanSkip(test.attended, test.total, AttendanceTarget), "skip %d/%d", test.attended, test.total)
	}
}

func TestSplitDetail(t *testing.T) {
	require.Equal(t, []string{"BCSE202L", "Data Structures - I", "Embedded Theory"}, splitDetail("BCSE202L - Data Structures - I - Embedded Theory"))
	require.Equal(t, []string{"BCSE202L", "Data Structures"}, splitDetail("BCSE202L-Data Structures"))
	require.Len(t, splitDetail("BCSE202L"), 1)
}
