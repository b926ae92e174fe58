package service

import (
	"context"
	"vtopassist-backend/internal/cache"
	"vtopassist-backend/internal/extract"
	"vtopassist-backend/internal/scrapers/vtop"
	"vtopassist-backend/internal/snapshot"
)

type loader[T any] func(ctx context.Context, session vtop.Session) (T, vtop.Session, error)

// cached serves the record from memory when the session is live, otherwise
// it loads it from the portal and keeps the result in memory and in the
// snapshot store.
func cached[T any](
	ctx context.Context,
	s *Service,
	c *cache.Cache[T],
	session vtop.Session,
	kind Kind,
	params []string,
	load loader[T],
) (T, vtop.Session, error) {
	user := session.Identity.RegistrationNumber
	if user == "" {
		return load(ctx, session)
	}

	key := cache.UserKey(user, string(kind), params...)
	if session.Usable(s.time.Now()) {
		if value, ok := c.Get(key); ok {
			s.tel.ReportDebug(report_cache_hit, key)
			return value, session, nil
		}
	}

	value, next, err := load(ctx, session)
	if err != nil {
		if vtop.RequiresReauth(err) {
			s.Invalidate(user)
		} else {
			s.tel.ReportDebug(report_portal_fetch, key, err)
		}
		return value, next, err
	}

	c.Set(key, value, ttls[kind])
	if s.snapshots != nil {
		if err := s.snapshots.Put(ctx, key, user, string(kind), value); err != nil {
			s.tel.ReportWarning(report_snapshot_put, err, key)
		}
	}
	return value, next, nil
}

func (s *Service) GetSemesters(ctx context.Context, session vtop.Session) ([]extract.Semester, vtop.Session, error) {
	return cached(ctx, s, s.semesters, session, KindSemesters, nil, s.portal.FetchSemesters)
}

func (s *Service) GetAttendance(ctx context.Context, session vtop.Session, semesterID string) (extract.AttendanceData, vtop.Session, error) {
	return cached(ctx, s, s.attendance, session, KindAttendance, []string{semesterID},
		func(ctx context.Context, session vtop.Session) (extract.AttendanceData, vtop.Session, error) {
			return s.portal.FetchAttendance(ctx, session, semesterID)
		},
	)
}

func (s *Service) GetTimetable(ctx context.Context, session vtop.Session, semesterID string) (extract.TimetableData, vtop.Session, error) {
	return cached(ctx, s, s.timetable, session, KindTimetable, []string{semesterID},
		func(ctx context.Context, session vtop.Session) (extract.TimetableData, vtop.Session, error) {
			return s.portal.FetchTimetable(ctx, session, semesterID)
		},
	)
}

func (s *Service) GetCurriculum(ctx context.Context, session vtop.Session) (extract.CurriculumData, vtop.Session, error) {
	return cached(ctx, s, s.curriculum, session, KindCurriculum, nil, s.portal.FetchCurriculum)
}

func (s *Service) GetMarks(ctx context.Context, session vtop.Session, semesterID string) (extract.MarksData, vtop.Session, error) {
	return cached(ctx, s, s.marks, session, KindMarks, []string{semesterID},
		func(ctx context.Context, session vtop.Session) (extract.MarksData, vtop.Session, error) {
			return s.portal.FetchMarks(ctx, session, semesterID)
		},
	)
}

// GetGrades reads one semester's grades, or the whole grade history when
// semesterID is empty.
func (s *Service) GetGrades(ctx context.Context, session vtop.Session, semesterID string) (extract.GradesData, vtop.Session, error) {
	return cached(ctx, s, s.grades, session, KindGrades, []string{GradesParam(semesterID)},
		func(ctx context.Context, session vtop.Session) (extract.GradesData, vtop.Session, error) {
			return s.portal.FetchGrades(ctx, session, semesterID)
		},
	)
}

// GradesParam is the cache key parameter of a grades request.
func GradesParam(semesterID string) string {
	if semesterID == "" {
		return gradeHistoryParam
	}
	return semesterID
}

func (s *Service) GetExamSchedule(ctx context.Context, session vtop.Session, semesterID string) (extract.ExamScheduleData, vtop.Session, error) {
	return cached(ctx, s, s.exams, session, KindExams, []string{semesterID},
		func(ctx context.Context, session vtop.Session) (extract.ExamScheduleData, vtop.Session, error) {
			return s.portal.FetchExamSchedule(ctx, session, semesterID)
		},
	)
}

func (s *Service) GetProfile(ctx context.Context, session vtop.Session) (extract.ProfileData, vtop.Session, error) {
	return cached(ctx, s, s.profile, session, KindProfile, nil, s.portal.FetchProfile)
}

// LastKnown returns the last record of the given kind successfully read for
// user, ok is false when there is none or no snapshot store is configured.
func LastKnown[T any](ctx context.Context, s *Service, user string, kind Kind, params ...string) (value T, entry snapshot.Entry, ok bool, err error) {
	if s.snapshots == nil || user == "" {
		return value, snapshot.Entry{}, false, nil
	}
	entry, ok, err = s.snapshots.Get(ctx, cache.UserKey(user, string(kind), params...), &value)
	return value, entry, ok, err
}

// Snapshots lists the records kept for user.
func (s *Service) Snapshots(ctx context.Context, user string) ([]snapshot.Entry, error) {
	if s.snapshots == nil {
		return nil, nil
	}
	return s.snapshots.List(ctx, user)
}

// CacheStats returns the number of entries held by every cache.
func (s *Service) CacheStats() map[string]int {
	return s.registry.Stats()
}
