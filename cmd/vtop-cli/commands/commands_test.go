package commands

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"vtopassist-backend/internal/extract"
	"vtopassist-backend/internal/scrapers/vtop"

	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	require.Equal(t, 30, cfg.TimeoutSeconds)
	require.Equal(t, vtop.DefaultTimeout, cfg.timeout())
	require.Equal(t, float64(vtop.DefaultRateLimit), cfg.RateLimit)
	require.Equal(t, vtop.DefaultSessionTTL, cfg.sessionTTL())
	require.Equal(t, defaultTokenFile, cfg.TokenFile)
}

func TestConfigValidate(t *testing.T) {
	err := Config{}.validate()
	require.ErrorContains(t, err, "base_url")
	require.ErrorContains(t, err, "session_secrets")

	err = Config{BaseURL: "https://vtop.example.edu", SessionSecrets: []string{"short"}}.validate()
	require.ErrorContains(t, err, "session_secrets[0]")

	secret, err := newSecret(48)
	require.NoError(t, err)
	require.Len(t, secret, 48)
	require.NoError(t, Config{BaseURL: "https://vtop.example.edu", SessionSecrets: []string{secret}}.validate())

	_, err = newSecret(16)
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	buf := &bytes.Buffer{}
	output = buf
	t.Cleanup(func() { output = os.Stdout })

	attendance := extract.AttendanceData{
		SemesterID: "VL20242505",
		Entries: []extract.AttendanceEntry{{
			CourseCode: "BCSE101L",
			CourseName: "Computer Programming",
			ClassType:  extract.ClassTheory,
			Attended:   9,
			Total:      12,
			Percentage: 75,
		}},
		TotalAttended:     9,
		TotalClasses:      12,
		OverallPercentage: 75,
	}
	require.NoError(t, render(attendance, false))
	require.Contains(t, buf.String(), "BCSE101L")
	require.Contains(t, buf.String(), "Computer Programming")

	buf.Reset()
	require.NoError(t, render(attendance, true))
	require.True(t, strings.HasPrefix(buf.String(), "{"))
	require.Contains(t, buf.String(), `"course_code": "BCSE101L"`)

	buf.Reset()
	require.NoError(t, render(extract.ProfileData{Name: "PRIYA SHARMA", Hostel: &extract.Hostel{Block: "A"}}, false))
	require.Contains(t, buf.String(), "Hostel block")

	require.Error(t, render(42, false))
}
