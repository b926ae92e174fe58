// Package service is the entry point callers use: it pairs the portal
// client with the caller's session, serves repeated reads from the caches,
// and keeps the last good copy of every record for when the portal is down.
package service

import (
	"context"
	"time"
	"vtopassist-backend/internal/cache"
	"vtopassist-backend/internal/components/assert"
	"vtopassist-backend/internal/components/chrono"
	"vtopassist-backend/internal/components/telemetry"
	"vtopassist-backend/internal/extract"
	"vtopassist-backend/internal/scrapers/vtop"
	"vtopassist-backend/internal/sessionstore"
	"vtopassist-backend/internal/snapshot"
)

// PortalAPI describes everything the service needs from the portal client
// (no portal logic is in the service so the service's logic can be tested
// individually).
type PortalAPI interface {
	RequestCaptcha(ctx context.Context) (vtop.Captcha, error)
	Login(ctx context.Context, req vtop.LoginRequest) (vtop.LoginResult, error)
	Logout(ctx context.Context, s vtop.Session) error
	Reauthenticate(ctx context.Context, s vtop.Session) (vtop.Captcha, error)

	FetchSemesters(ctx context.Context, s vtop.Session) ([]extract.Semester, vtop.Session, error)
	FetchAttendance(ctx context.Context, s vtop.Session, semesterID string) (extract.AttendanceData, vtop.Session, error)
	FetchTimetable(ctx context.Context, s vtop.Session, semesterID string) (extract.TimetableData, vtop.Session, error)
	FetchCurriculum(ctx context.Context, s vtop.Session) (extract.CurriculumData, vtop.Session, error)
	FetchMarks(ctx context.Context, s vtop.Session, semesterID string) (extract.MarksData, vtop.Session, error)
	FetchGrades(ctx context.Context, s vtop.Session, semesterID string) (extract.GradesData, vtop.Session, error)
	FetchExamSchedule(ctx context.Context, s vtop.Session, semesterID string) (extract.ExamScheduleData, vtop.Session, error)
	FetchProfile(ctx context.Context, s vtop.Session) (extract.ProfileData, vtop.Session, error)
}

const (
	report_cache_hit      = "cache.hit"
	report_cache_purge    = "cache.purge"
	report_snapshot_put   = "snapshot.put"
	report_snapshot_purge = "snapshot.purge"
	report_portal_logout  = "portal.logout"
	report_portal_fetch   = "portal.fetch"
)

// Kind names a category of record, it is the second part of every cache
// key.
type Kind string

const (
	KindSemesters  Kind = "semesters"
	KindAttendance Kind = "attendance"
	KindTimetable  Kind = "timetable"
	KindCurriculum Kind = "curriculum"
	KindMarks      Kind = "marks"
	KindGrades     Kind = "grades"
	KindExams      Kind = "exams"
	KindProfile    Kind = "profile"
)

// Kinds lists every kind in the order they are usually displayed.
var Kinds = []Kind{
	KindProfile,
	KindSemesters,
	KindAttendance,
	KindTimetable,
	KindMarks,
	KindGrades,
	KindExams,
	KindCurriculum,
}

// how long each kind of record is served from memory, attendance and marks
// move during a semester while the curriculum barely ever does
var ttls = map[Kind]time.Duration{
	KindSemesters:  cache.TTLLong,
	KindAttendance: cache.TTLShort,
	KindTimetable:  cache.TTLLong,
	KindCurriculum: cache.TTLExtended,
	KindMarks:      cache.TTLMedium,
	KindGrades:     cache.TTLLong,
	KindExams:      cache.TTLMedium,
	KindProfile:    cache.TTLExtended,
}

// gradeHistoryParam keys the grade history, which is fetched without a
// semester.
const gradeHistoryParam = "history"

type Service struct {
	portal    PortalAPI
	sessions  *sessionstore.Store
	snapshots *snapshot.Snapshot
	registry  *cache.Registry

	semesters  *cache.Cache[[]extract.Semester]
	attendance *cache.Cache[extract.AttendanceData]
	timetable  *cache.Cache[extract.TimetableData]
	curriculum *cache.Cache[extract.CurriculumData]
	marks      *cache.Cache[extract.MarksData]
	grades     *cache.Cache[extract.GradesData]
	exams      *cache.Cache[extract.ExamScheduleData]
	profile    *cache.Cache[extract.ProfileData]

	time chrono.TimeAPI
	tel  telemetry.API
}

type serviceConfig struct {
	snapshots *snapshot.Snapshot
	cacheSize int
	time      chrono.TimeAPI
	tel       telemetry.API
}

type ServiceOption func(cfg *serviceConfig)

// WithSnapshots keeps the last good copy of every record in the given
// store.
func WithSnapshots(snapshots snapshot.Snapshot) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.snapshots = &snapshots
	}
}

func WithCacheSize(size int) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.cacheSize = size
	}
}

func WithCustomTimeAPI(time chrono.TimeAPI) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.time = time
	}
}

func WithCustomTelemetryAPI(tel telemetry.API) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.tel = tel
	}
}

// NewService creates a Service, the registry is passed in so that every
// cache of the process can be purged together.
func NewService(portal PortalAPI, sessions *sessionstore.Store, registry *cache.Registry, options ...ServiceOption) *Service {
	assert.NotNil(portal)
	assert.NotNil(sessions)
	assert.NotNil(registry)

	cfg := serviceConfig{
		cacheSize: cache.DefaultSize,
		time:      chrono.NewStandardTime(),
		tel:       telemetry.SlogAPI{},
	}
	for _, opt := range options {
		opt(&cfg)
	}
	assert.Positive(cfg.cacheSize)

	s := &Service{
		portal:    portal,
		sessions:  sessions,
		snapshots: cfg.snapshots,
		registry:  registry,

		semesters:  cache.New[[]extract.Semester](cfg.cacheSize, ttls[KindSemesters], cfg.time),
		attendance: cache.New[extract.AttendanceData](cfg.cacheSize, ttls[KindAttendance], cfg.time),
		timetable:  cache.New[extract.TimetableData](cfg.cacheSize, ttls[KindTimetable], cfg.time),
		curriculum: cache.New[extract.CurriculumData](cfg.cacheSize, ttls[KindCurriculum], cfg.time),
		marks:      cache.New[extract.MarksData](cfg.cacheSize, ttls[KindMarks], cfg.time),
		grades:     cache.New[extract.GradesData](cfg.cacheSize, ttls[KindGrades], cfg.time),
		exams:      cache.New[extract.ExamScheduleData](cfg.cacheSize, ttls[KindExams], cfg.time),
		profile:    cache.New[extract.ProfileData](cfg.cacheSize, ttls[KindProfile], cfg.time),

		time: cfg.time,
		tel:  telemetry.NewScopedAPI("service", cfg.tel),
	}

	registry.Register(string(KindSemesters), s.semesters)
	registry.Register(string(KindAttendance), s.attendance)
	registry.Register(string(KindTimetable), s.timetable)
	registry.Register(string(KindCurriculum), s.curriculum)
	registry.Register(string(KindMarks), s.marks)
	registry.Register(string(KindGrades), s.grades)
	registry.Register(string(KindExams), s.exams)
	registry.Register(string(KindProfile), s.profile)

	return s
}

// Invalidate drops every cached record of user.
func (s *Service) Invalidate(user string) int {
	if user == "" {
		return 0
	}
	n := s.registry.InvalidatePattern(cache.UserPattern(user))
	s.tel.ReportDebug(report_cache_purge, user, n)
	return n
}
