package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMarks(t *testing.T) {
	expected := MarksData{
		SemesterID: "VL20242501",
		Courses: []MarksCourse{
			{
				CourseCode:  "BCSE101L",
				CourseTitle: "Computer Programming: Python",
				ClassType:   ClassTheory,
				Faculty:     "RAVI KUMAR",
				Slot:        "A1+TA1",
				Assessments: []Assessment{
					{
						Title:         "Continuous Assessment Test - I",
						MaxMarks:      50,
						Weightage:     15,
						Scored:        40,
						WeightedScore: 12,
						Status:        AssessmentGraded,
					},
					{
						Title:     "Digital Assignment - I",
						MaxMarks:  10,
						Weightage: 10,
						Status:    AssessmentAbsent,
					},
					{
						Title:     "Continuous Assessment Test - II",
						MaxMarks:  50,
						Weightage: 15,
						Status:    AssessmentPending,
						Remark:    "Yet to post",
					},
				},
				TotalWeighted:  12,
				TotalWeightage: 40,
			},
			{
				CourseCode:  "BCSE101P",
				CourseTitle: "Computer Programming: Python",
				ClassType:   ClassLab,
				Faculty:     "RAVI KUMAR",
				Slot:        "L31+L32",
				Assessments: []Assessment{
					{
						Title:         "Lab Assessment 1",
						MaxMarks:      100,
						Weightage:     20,
						Scored:        75,
						WeightedScore: 15,
						Status:        AssessmentGraded,
					},
				},
				TotalWeighted:  15,
				TotalWeightage: 20,
			},
		},
	}

	if diff := cmp.Diff(expected, Marks(marksPage, "VL20242501")); diff != "" {
		t.Fatal(diff)
	}
}

func TestMarksCourseWithoutAssessments(t *testing.T) {
	data := Marks(`<table><tr><td>1</td><td>VL01</td><td>BCSE101L</td><td>Computer Programming</td><td>ETH</td></tr></table>`, "sem")
	require.Len(t, data.Courses, 1)
	require.Empty(t, data.Courses[0].Assessments)
	require.NotNil(t, data.Courses[0].Assessments)
	require.Zero(t, data.Courses[0].TotalWeighted)
}

func TestMarksTotalNotRoundedPerAssessment(t *testing.T) {
	raw := `<table>
<tr><td>1</td><td>2201</td><td>BCSE202L</td><td>Data Structures</td><td>Theory Only</td><td>A1+TA1</td><td>ANITA RAO - SCOPE</td></tr>
<tr><td colspan="7"><table>
<tr><td>1</td><td>Quiz 1</td><td>3</td><td>1</td><td>Present</td><td>1</td></tr>
<tr><td>2</td><td>Quiz 2</td><td>3</td><td>1</td><td>Present</td><td>1</td></tr>
<tr><td>3</td><td>Quiz 3</td><td>3</td><td>1</td><td>Present</td><td>1</td></tr>
</table></td></tr>
</table>`

	data := Marks(raw, "VL20242501")
	require.Len(t, data.Courses, 1)
	course := data.Courses[0]
	require.Len(t, course.Assessments, 3)
	for _, a := range course.Assessments {
		require.Equal(t, AssessmentGraded, a.Status)
		require.Equal(t, 0.33, a.WeightedScore)
	}
	require.Equal(t, 1.0, course.TotalWeighted)
	require.Equal(t, 3.0, course.TotalWeightage)
}
