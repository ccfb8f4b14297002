package classes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/cadence/internal/schedule"
	"github.com/roach88/cadence/internal/store"
)

// Repository is the persistence surface the service needs.
// Implemented by *store.Store.
type Repository interface {
	CreateClass(ctx context.Context, rec store.ClassRecord) error
	ListClasses(ctx context.Context) ([]store.ClassRecord, error)
	GetLedgerState(ctx context.Context, classID string) (store.LedgerState, error)
	AppendEntry(ctx context.Context, entry store.LedgerEntry, expectedVersion int64) (bool, error)
}

// DefaultMaxAttempts bounds how many times a mutator reloads and revalidates
// after losing a version race.
const DefaultMaxAttempts = 5

// Service is the write path for classes and their override ledgers.
//
// Thread-safety: all methods are safe for concurrent use. Mutations on the
// same class are serialized in-process by a per-class lock; across processes
// they are serialized by the store's version check.
type Service struct {
	repo        Repository
	clock       Clock
	ids         IDGenerator
	logger      *slog.Logger
	validate    *validator.Validate
	maxAttempts int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for locking and applied_at stamps.
// Default: SystemClock.
func WithClock(c Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithIDGenerator sets the class ID generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) {
		s.ids = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMaxAttempts sets how many version conflicts a mutator tolerates.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		s.maxAttempts = n
	}
}

// NewService creates a Service over repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		clock:       SystemClock{},
		ids:         UUIDv7Generator{},
		logger:      slog.Default(),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		maxAttempts: DefaultMaxAttempts,
		locks:       make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lockClass takes the in-process lock for classID and returns its release.
func (s *Service) lockClass(classID string) func() {
	s.mu.Lock()
	l, ok := s.locks[classID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[classID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// CreateRequest holds the class-creation form inputs.
type CreateRequest struct {
	Name      string `validate:"required,max=200"`
	Pattern   string `validate:"required"`
	StartDate string `validate:"required,datetime=2006-01-02"`
	Sessions  int    `validate:"gt=0"`
	Timezone  string `validate:"omitempty,timezone"`
}

// CreateClass validates req and stores a new class with an empty ledger.
// Invalid input is an INVALID_SCHEDULE error.
func (s *Service) CreateClass(ctx context.Context, req CreateRequest) (Class, error) {
	if err := s.validate.Struct(req); err != nil {
		return Class{}, validationError(err)
	}

	tz := req.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Class{}, schedule.NewInvalidScheduleError("unknown timezone %q", tz)
	}
	pattern, err := schedule.ParsePattern(req.Pattern)
	if err != nil {
		return Class{}, err
	}
	start, err := schedule.ParseDate(req.StartDate, loc)
	if err != nil {
		return Class{}, err
	}
	cfg := schedule.NewConfig(pattern, start, req.Sessions, loc)
	end, err := schedule.ProjectEndDate(cfg)
	if err != nil {
		return Class{}, err
	}

	now := s.clock.Now().UTC().Truncate(time.Second)
	rec := store.ClassRecord{
		ID:             s.ids.Generate(),
		Name:           strings.TrimSpace(req.Name),
		Pattern:        pattern.String(),
		StartDate:      schedule.DateKey(start),
		TargetSessions: req.Sessions,
		Timezone:       tz,
		CreatedAt:      now.Format(time.RFC3339),
	}
	if err := s.repo.CreateClass(ctx, rec); err != nil {
		return Class{}, err
	}

	s.logger.Info("class created",
		"class_id", rec.ID,
		"pattern", rec.Pattern,
		"start_date", rec.StartDate,
		"sessions", rec.TargetSessions,
		"projected_end", schedule.DateKey(end),
	)

	return Class{
		ID:        rec.ID,
		Name:      rec.Name,
		Timezone:  tz,
		Config:    cfg,
		CreatedAt: now,
	}, nil
}

// validationError converts validator failures into one INVALID_SCHEDULE error.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return schedule.NewInvalidScheduleError("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return schedule.NewInvalidScheduleError("invalid class: %s", strings.Join(msgs, ", "))
}

// Load reads a class and its ledger.
// An unknown class is a NOT_FOUND error.
func (s *Service) Load(ctx context.Context, classID string) (Class, error) {
	state, err := s.repo.GetLedgerState(ctx, classID)
	if errors.Is(err, store.ErrClassNotFound) {
		return Class{}, classNotFound(classID)
	}
	if err != nil {
		return Class{}, err
	}
	return classFromState(state)
}

// List returns all classes, oldest first.
func (s *Service) List(ctx context.Context) ([]Class, error) {
	recs, err := s.repo.ListClasses(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Class, 0, len(recs))
	for _, rec := range recs {
		c, err := s.Load(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Sessions materializes a class's sessions relative to the service clock.
func (s *Service) Sessions(ctx context.Context, classID string) ([]schedule.Session, error) {
	c, err := s.Load(ctx, classID)
	if err != nil {
		return nil, err
	}
	return c.Materialize(s.clock.Now())
}

// Entries returns a class's raw ledger entries in seq order.
func (s *Service) Entries(ctx context.Context, classID string) ([]store.LedgerEntry, error) {
	state, err := s.repo.GetLedgerState(ctx, classID)
	if errors.Is(err, store.ErrClassNotFound) {
		return nil, classNotFound(classID)
	}
	if err != nil {
		return nil, err
	}
	return state.Entries, nil
}

func classNotFound(classID string) *schedule.Error {
	e := schedule.NewNotFoundError("class %q does not exist", classID)
	e.ClassID = classID
	return e
}
