package classes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/cadence/internal/schedule"
	"github.com/roach88/cadence/internal/store"
)

// proposal is a validated ledger append and its success message.
type proposal struct {
	kind    string
	payload payload
	message func(after []schedule.Session) string
}

// planFunc validates a request against the current view of a class.
// A *schedule.Error rejects the request.
type planFunc func(c Class, sessions []schedule.Session, now time.Time) (proposal, error)

// mutate runs plan against a freshly loaded class and appends the proposed
// entry conditioned on the loaded version, retrying on version conflicts.
func (s *Service) mutate(ctx context.Context, op, classID string, plan planFunc) (Result, error) {
	unlock := s.lockClass(classID)
	defer unlock()

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result, retry, err := s.tryMutate(ctx, op, classID, plan)
		if err != nil {
			var se *schedule.Error
			if errors.As(err, &se) {
				s.logger.Warn("mutation rejected",
					"op", op,
					"class_id", classID,
					"code", string(se.Code),
					"reason", se.Message,
				)
				return rejected(se), nil
			}
			return Result{}, err
		}
		if !retry {
			return result, nil
		}
		s.logger.Debug("version conflict, revalidating",
			"op", op,
			"class_id", classID,
			"attempt", attempt,
		)
	}

	return Result{}, fmt.Errorf("%s %s: gave up after %d attempts: %w", op, classID, s.maxAttempts, store.ErrVersionConflict)
}

func (s *Service) tryMutate(ctx context.Context, op, classID string, plan planFunc) (Result, bool, error) {
	c, err := s.Load(ctx, classID)
	if err != nil {
		return Result{}, false, err
	}

	now := s.clock.Now()
	sessions, err := c.Materialize(now)
	if err != nil {
		return Result{}, false, err
	}

	p, err := plan(c, sessions, now)
	if err != nil {
		var se *schedule.Error
		if errors.As(err, &se) && se.ClassID == "" {
			se.ClassID = classID
		}
		return Result{}, false, err
	}

	seq := c.Version + 1
	entry, err := newEntry(classID, seq, p.kind, p.payload, now)
	if err != nil {
		return Result{}, false, err
	}

	// Preview the post-append schedule before committing, so a payload the
	// ledger cannot replay or one that reorders sessions is never written.
	next := c.Ledger
	if err := applyEntry(&next, entry); err != nil {
		return Result{}, false, err
	}
	after, err := schedule.GenerateClassSessions(c.Config, next, now)
	if err != nil {
		return Result{}, false, err
	}
	if e := schedule.CheckOrder(after); e != nil {
		e.ClassID = classID
		e.Message = fmt.Sprintf("%s would put %s", op, e.Message)
		return Result{}, false, e
	}

	inserted, err := s.repo.AppendEntry(ctx, entry, c.Version)
	switch {
	case errors.Is(err, store.ErrVersionConflict):
		return Result{}, true, nil
	case errors.Is(err, store.ErrClassNotFound):
		return Result{}, false, classNotFound(classID)
	case err != nil:
		return Result{}, false, err
	}

	if inserted {
		s.logger.Info("ledger entry appended",
			"op", op,
			"class_id", classID,
			"kind", p.kind,
			"seq", seq,
		)
	} else {
		s.logger.Info("ledger entry already present",
			"op", op,
			"class_id", classID,
			"seq", seq,
		)
	}

	return accepted(seq, p.message(after)), false, nil
}

// UpdateScheduleChain moves session index to the calendar day of newDateTime
// and every later regular session by the same number of days.
//
// Validation, in order: the class exists and index is a regular session
// (NOT_FOUND); the session is not locked (LOCKED_SESSION); the moved session
// stays strictly after the preceding session, is not in the past and
// actually moves (INVALID_SHIFT). The time of day of newDateTime is ignored;
// sessions keep the class's session time.
func (s *Service) UpdateScheduleChain(ctx context.Context, classID string, index int, newDateTime time.Time) (Result, error) {
	return s.mutate(ctx, "shift", classID, func(c Class, sessions []schedule.Session, now time.Time) (proposal, error) {
		target, ok := schedule.FindByIndex(sessions, index)
		if !ok {
			return proposal{}, schedule.NewNotFoundError("class has no session %d", index)
		}
		if target.IsExtra {
			return proposal{}, schedule.NewInvalidShiftError(index,
				"session %d is an extra session and keeps its fixed date", index)
		}
		if target.IsLocked {
			return proposal{}, schedule.NewLockedSessionError(index, schedule.DateKey(target.Date))
		}

		loc := c.Config.Loc()
		delta := schedule.DaysBetween(target.Date, newDateTime, loc)
		moved := target.Date.AddDate(0, 0, delta)

		if index > 1 {
			prev, _ := schedule.FindByIndex(sessions, index-1)
			if !moved.After(prev.Date) {
				return proposal{}, schedule.NewInvalidShiftError(index,
					"session %d cannot move to %s: session %d is on %s",
					index, schedule.DateKey(moved), prev.Index, schedule.DateKey(prev.Date))
			}
		}
		if moved.Before(now) {
			return proposal{}, schedule.NewInvalidShiftError(index,
				"session %d cannot move to %s: date is in the past", index, schedule.DateKey(moved))
		}
		if delta == 0 {
			return proposal{}, schedule.NewInvalidShiftError(index,
				"session %d is already on %s", index, schedule.DateKey(target.Date))
		}

		return proposal{
			kind:    store.KindShift,
			payload: shiftPayload{FromIndex: index, DeltaDays: delta},
			message: func(after []schedule.Session) string {
				end, _ := schedule.EndDate(after)
				return fmt.Sprintf("Session %d moved to %s; sessions %d-%d shifted by %+d days (course ends %s)",
					index, schedule.DateKey(moved), index, c.Config.TargetSessionCount, delta, schedule.DateKey(end))
			},
		}, nil
	})
}

// CancelClassSession cancels the session held on dateStr (YYYY-MM-DD).
//
// Cancelling a regular session records its canonical date, so generation
// skips it and the course gains one occurrence at the tail. Shifts stay on
// their index, so the result is rejected with INVALID_SHIFT when the
// renumbered sessions would fall out of order. Cancelling an
// extra session removes it without extending the course. When a regular and
// an extra session share the day, the regular one is cancelled.
func (s *Service) CancelClassSession(ctx context.Context, classID, dateStr string) (Result, error) {
	return s.mutate(ctx, "cancel", classID, func(c Class, sessions []schedule.Session, now time.Time) (proposal, error) {
		day, err := schedule.ParseDate(dateStr, c.Config.Loc())
		if err != nil {
			return proposal{}, schedule.NewNotFoundError("no session on %q", dateStr)
		}
		key := schedule.DateKey(day)

		candidates := schedule.OnDate(sessions, key)
		if len(candidates) == 0 {
			e := schedule.NewNotFoundError("no session on %s", key)
			e.Date = key
			return proposal{}, e
		}

		target, ok := pickCancellable(candidates)
		if !ok {
			return proposal{}, schedule.NewLockedSessionError(candidates[0].Index, key)
		}

		var p payload
		if target.IsExtra {
			p = cancelPayload{Date: key, Target: string(schedule.CancelExtra), ExtraSeq: target.LedgerSeq}
		} else {
			p = cancelPayload{Date: schedule.DateKey(target.CanonicalDate), Target: string(schedule.CancelRegular)}
		}

		return proposal{
			kind:    store.KindCancel,
			payload: p,
			message: func(after []schedule.Session) string {
				if target.IsExtra {
					return fmt.Sprintf("Extra session on %s cancelled", key)
				}
				end, _ := schedule.EndDate(after)
				msg := fmt.Sprintf("Session on %s cancelled; schedule advanced, course now ends %s",
					key, schedule.DateKey(end))
				if moved := movedShifted(sessions, after); len(moved) > 0 {
					msg += "; shifted sessions moved: " + strings.Join(moved, ", ")
				}
				return msg
			},
		}, nil
	})
}

// movedShifted lists the shifted regular sessions whose date differs between
// before and after, as "index to date".
func movedShifted(before, after []schedule.Session) []string {
	var out []string
	for _, a := range schedule.Regular(after) {
		if a.Date.Equal(a.CanonicalDate) {
			continue
		}
		b, ok := schedule.FindByIndex(before, a.Index)
		if ok && b.Date.Equal(a.Date) {
			continue
		}
		out = append(out, fmt.Sprintf("%d to %s", a.Index, schedule.DateKey(a.Date)))
	}
	return out
}

// pickCancellable prefers an unlocked regular session over an unlocked extra.
func pickCancellable(candidates []schedule.Session) (schedule.Session, bool) {
	var extra *schedule.Session
	for i := range candidates {
		c := candidates[i]
		if c.IsLocked {
			continue
		}
		if !c.IsExtra {
			return c, true
		}
		if extra == nil {
			extra = &candidates[i]
		}
	}
	if extra != nil {
		return *extra, true
	}
	return schedule.Session{}, false
}

// AddExtraSession schedules a one-off session at a fixed date and time.
// Extras never shift and do not count toward the target session count.
// A time in the past is a LOCKED_SESSION rejection.
func (s *Service) AddExtraSession(ctx context.Context, classID string, at time.Time, note string) (Result, error) {
	return s.mutate(ctx, "extra", classID, func(c Class, sessions []schedule.Session, now time.Time) (proposal, error) {
		local := at.In(c.Config.Loc())
		if local.Before(now) {
			e := schedule.NewLockedSessionError(0, schedule.DateKey(local))
			e.Message = fmt.Sprintf("extra session on %s would be in the past", local.Format("2006-01-02 15:04"))
			return proposal{}, e
		}

		return proposal{
			kind:    store.KindExtra,
			payload: extraPayload{At: at.UTC().Format(time.RFC3339), Note: note},
			message: func(after []schedule.Session) string {
				return fmt.Sprintf("Extra session added on %s (%d sessions scheduled)",
					local.Format("2006-01-02 15:04"), len(after))
			},
		}, nil
	})
}
