package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestExamSchedule(t *testing.T) {
	data := ExamSchedule(examsPage, "VL20242505")

	expected := []ExamSlot{
		{
			Category:    ExamOther,
			CourseCode:  "BCSE101L",
			CourseTitle: "Computer Programming: Python",
			CourseType:  "ETH",
			ClassID:     "VL2024250100123",
			Slot:        "A1+TA1",
		},
		{
			Category:      ExamCAT1,
			CourseCode:    "BCSE101L",
			CourseTitle:   "Computer Programming: Python",
			CourseType:    "ETH",
			ClassID:       "VL2024250100123",
			Slot:          "A1+TA1",
			Date:          "10-Feb-2025",
			Session:       "FN",
			ReportingTime: "09:15 AM",
			ExamTime:      "09:30 AM - 11:00 AM",
			Venue:         "SJT-303",
			SeatLocation:  "B",
			SeatNumber:    "42",
		},
		{
			Category:      ExamFAT,
			CourseCode:    "BCSE101L",
			CourseTitle:   "Computer Programming: Python",
			CourseType:    "ETH",
			ClassID:       "VL2024250100123",
			Slot:          "A1+TA1",
			Date:          "02-May-2025",
			Session:       "AN",
			ReportingTime: "01:45 PM",
			ExamTime:      "02:00 PM - 05:00 PM",
			Venue:         "MB-224",
			SeatLocation:  "C",
			SeatNumber:    "17",
		},
		{
			Category:      ExamFAT,
			CourseCode:    "BMAT101L",
			CourseTitle:   "Calculus",
			CourseType:    "TH",
			ClassID:       "VL2024250100200",
			Slot:          "B1",
			Date:          "05-May-2025",
			Session:       "FN",
			ReportingTime: "09:15 AM",
			ExamTime:      "09:30 AM - 12:30 PM",
			Venue:         "MB-101",
			SeatLocation:  "A",
			SeatNumber:    "3",
		},
	}

	require.Equal(t, "VL20242505", data.SemesterID)
	if diff := cmp.Diff(expected, data.Exams); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseExamCategory(t *testing.T) {
	testCases := map[string]ExamCategory{
		"FAT":                             ExamFAT,
		"Final Assessment Test":           ExamFAT,
		"CAT1":                            ExamCAT1,
		"CAT - I":                         ExamCAT1,
		"Continuous Assessment Test - 1":  ExamCAT1,
		"CAT2":                            ExamCAT2,
		"Continuous Assessment Test - II": ExamCAT2,
		"Lab Exam":                        ExamOther,
		"":                                ExamOther,
	}
	for label, expected := range testCases {
		require.Equal(t, expected, ParseExamCategory(label), label)
	}
}
