package actors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Eduardaskuliesa/Alina-workers/internal/domain"
	"github.com/Eduardaskuliesa/Alina-workers/internal/gateway"
	"github.com/Eduardaskuliesa/Alina-workers/internal/runtime"
	"github.com/Eduardaskuliesa/Alina-workers/internal/store"
)

// ExpiryActor sends a one-shot reminder some lead time before a user's
// course access expires. One actor instance exists per
// (user, course, lead time) triple.
//
// Rescheduling while an alarm is armed always overrides the previous
// schedule; the returned message says so. If the gateway call fails when the
// alarm fires, the record is kept so the condition stays visible, but no
// retry is armed: recovery requires a new ScheduleReminder call.
type ExpiryActor struct {
	rt       *runtime.Runtime
	store    store.Store
	notifier gateway.Notifier
	leadDays int
	lead     time.Duration
	kind     string
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewExpiryActor builds the reminder actor for the given lead time in days.
// The actor registers itself under the "expiry<days>" key kind.
func NewExpiryActor(rt *runtime.Runtime, st store.Store, notifier gateway.Notifier, leadDays int, logger *zap.SugaredLogger) *ExpiryActor {
	kind := fmt.Sprintf("expiry%d", leadDays)
	return &ExpiryActor{
		rt:       rt,
		store:    st,
		notifier: notifier,
		leadDays: leadDays,
		lead:     time.Duration(leadDays) * 24 * time.Hour,
		kind:     kind,
		logger:   logger.Named(kind),
		now:      time.Now,
	}
}

// Kind returns the key kind this actor handles, for runtime registration.
func (a *ExpiryActor) Kind() string {
	return a.kind
}

// Key derives the actor key for a (user, course) pair.
func (a *ExpiryActor) Key(userID, courseID string) string {
	return a.kind + ":" + userID + "-" + courseID
}

// ScheduleReminder arms the reminder at expiresAt minus the lead time. A
// reminder time that is not strictly in the future is rejected with a
// too-late result and nothing is persisted or armed.
func (a *ExpiryActor) ScheduleReminder(ctx context.Context, rec domain.ExpiryRecord) (Result, error) {
	key := a.Key(rec.UserID, rec.CourseID)

	var res Result
	err := a.rt.Do(ctx, key, func(ctx context.Context) error {
		reminderTime := rec.ExpiresAt.Add(-a.lead)
		if !reminderTime.After(a.now()) {
			res = tooLate(fmt.Sprintf("Too late to schedule %d-day reminder", a.leadDays))
			return nil
		}

		_, replaced, err := a.store.Alarm(ctx, key)
		if err != nil {
			return err
		}

		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode expiry record: %w", err)
		}
		if err := a.store.Put(ctx, key, raw); err != nil {
			return err
		}
		if err := a.rt.SetAlarm(ctx, key, reminderTime); err != nil {
			return err
		}

		msg := fmt.Sprintf("%d-day reminder scheduled for course %s for user %s", a.leadDays, rec.CourseID, rec.UserID)
		if replaced {
			msg += " (replaced previous schedule)"
		}
		res = ok("%s", msg)

		a.logger.Infow("reminder scheduled", "user", rec.UserID, "course", rec.CourseID, "at", reminderTime, "replaced", replaced)
		return nil
	})
	return res, err
}

// HandleAlarm is the wake-up handler registered with the runtime. A missing
// record means the reminder was already delivered, so a stale re-fire is a
// no-op. On delivery failure the record is retained and the error surfaced.
func (a *ExpiryActor) HandleAlarm(ctx context.Context, key string) error {
	raw, err := a.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var rec domain.ExpiryRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("failed to decode expiry record: %w", err)
	}

	if err := a.notifier.SendExpiryReminder(ctx, rec.UserID, rec.CourseID, a.leadDays); err != nil {
		a.logger.Errorw("failed to send expiry reminder", "user", rec.UserID, "course", rec.CourseID, "error", err)
		return err
	}

	a.logger.Infow("expiry reminder sent", "user", rec.UserID, "course", rec.CourseID, "leadDays", a.leadDays)
	return a.store.Delete(ctx, key)
}
