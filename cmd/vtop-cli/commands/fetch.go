package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"vtopassist-backend/internal/extract"
	"vtopassist-backend/internal/scrapers/vtop"
	"vtopassist-backend/internal/service"
	"vtopassist-backend/internal/snapshot"

	"github.com/spf13/cobra"
)

var (
	fetchSemester *string
	fetchJSON     *bool
	fetchStale    *bool
)

func init() {
	fetchSemester = fetchCmd.Flags().String("semester", "", "The semester id, defaults to the latest one (grades default to the whole history).")
	fetchJSON = fetchCmd.Flags().Bool("json", false, "Print the record as JSON instead of tables.")
	fetchStale = fetchCmd.Flags().Bool("stale", true, "Fall back to the last good copy when the portal cannot be reached.")
	rootCmd.AddCommand(fetchCmd)
}

func kindNames() []string {
	names := make([]string, len(service.Kinds))
	for i, k := range service.Kinds {
		names[i] = string(k)
	}
	return names
}

// semesterScoped kinds need a semester id, the latest one is picked when
// none is given.
var semesterScoped = map[service.Kind]bool{
	service.KindAttendance: true,
	service.KindTimetable:  true,
	service.KindMarks:      true,
	service.KindExams:      true,
}

var fetchCmd = &cobra.Command{
	Use:       fmt.Sprintf("fetch <%s> [--semester <id>] [--json]", strings.Join(kindNames(), "|")),
	Short:     "Reads a record from the portal.",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: kindNames(),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e env) error {
		ctx := cmd.Context()
		kind := service.Kind(args[0])

		session, err := e.loadSession()
		if err != nil {
			return err
		}
		if session.State != vtop.StateAuthenticated {
			return errNoSession
		}

		semester := *fetchSemester
		if semester == "" && semesterScoped[kind] {
			semesters, next, err := e.service.GetSemesters(ctx, session)
			if err != nil {
				return e.fetchFailed(err)
			}
			session = next
			if len(semesters) == 0 {
				return errors.New("the portal lists no semesters")
			}
			semester = semesters[0].ID
		}

		value, next, err := fetchKind(ctx, e.service, session, kind, semester)
		if err != nil {
			if !*fetchStale || vtop.RequiresReauth(err) {
				return e.fetchFailed(err)
			}
			user := session.Identity.RegistrationNumber
			stale, entry, ok, staleErr := lastKnown(ctx, e.service, user, kind, semester)
			if staleErr != nil || !ok {
				return e.fetchFailed(err)
			}
			slog.Warn("portal unavailable, showing the last good copy", "err", err)
			fmt.Printf("Stale copy captured %s.\n", entry.CapturedAt.Local().Format(time.DateTime))
			return render(stale, *fetchJSON)
		}

		if err := e.saveSession(next); err != nil {
			return err
		}
		return render(value, *fetchJSON)
	}),
}

func (e env) fetchFailed(err error) error {
	if vtop.RequiresReauth(err) {
		e.forgetSession()
		return fmt.Errorf("%w, log in again", err)
	}
	return err
}

func fetchKind(ctx context.Context, s *service.Service, session vtop.Session, kind service.Kind, semester string) (any, vtop.Session, error) {
	switch kind {
	case service.KindProfile:
		return unwrap(s.GetProfile(ctx, session))
	case service.KindSemesters:
		return unwrap(s.GetSemesters(ctx, session))
	case service.KindAttendance:
		return unwrap(s.GetAttendance(ctx, session, semester))
	case service.KindTimetable:
		return unwrap(s.GetTimetable(ctx, session, semester))
	case service.KindMarks:
		return unwrap(s.GetMarks(ctx, session, semester))
	case service.KindGrades:
		return unwrap(s.GetGrades(ctx, session, semester))
	case service.KindExams:
		return unwrap(s.GetExamSchedule(ctx, session, semester))
	case service.KindCurriculum:
		return unwrap(s.GetCurriculum(ctx, session))
	}
	return nil, session, fmt.Errorf("unknown kind %q", kind)
}

func unwrap[T any](value T, session vtop.Session, err error) (any, vtop.Session, error) {
	return value, session, err
}

func lastKnown(ctx context.Context, s *service.Service, user string, kind service.Kind, semester string) (any, snapshot.Entry, bool, error) {
	switch kind {
	case service.KindProfile:
		return erase(service.LastKnown[extract.ProfileData](ctx, s, user, kind))
	case service.KindSemesters:
		return erase(service.LastKnown[[]extract.Semester](ctx, s, user, kind))
	case service.KindAttendance:
		return erase(service.LastKnown[extract.AttendanceData](ctx, s, user, kind, semester))
	case service.KindTimetable:
		return erase(service.LastKnown[extract.TimetableData](ctx, s, user, kind, semester))
	case service.KindMarks:
		return erase(service.LastKnown[extract.MarksData](ctx, s, user, kind, semester))
	case service.KindGrades:
		return erase(service.LastKnown[extract.GradesData](ctx, s, user, kind, service.GradesParam(semester)))
	case service.KindExams:
		return erase(service.LastKnown[extract.ExamScheduleData](ctx, s, user, kind, semester))
	case service.KindCurriculum:
		return erase(service.LastKnown[extract.CurriculumData](ctx, s, user, kind))
	}
	return nil, snapshot.Entry{}, false, nil
}

func erase[T any](value T, entry snapshot.Entry, ok bool, err error) (any, snapshot.Entry, bool, error) {
	return value, entry, ok, err
}
