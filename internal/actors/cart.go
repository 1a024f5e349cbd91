package actors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Eduardaskuliesa/Alina-workers/internal/cooldown"
	"github.com/Eduardaskuliesa/Alina-workers/internal/domain"
	"github.com/Eduardaskuliesa/Alina-workers/internal/gateway"
	"github.com/Eduardaskuliesa/Alina-workers/internal/runtime"
	"github.com/Eduardaskuliesa/Alina-workers/internal/store"
)

// CartKind prefixes every cart actor key.
const CartKind = "cart"

// CartActor owns per-user cart documents. Every mutation re-derives the
// abandonment alarm from the resulting item list: non-empty arms the alarm
// at now+delay, empty disarms it. The alarm handler sends at most one
// abandonment reminder, suppressed by the cooldown ledger, and never
// re-arms itself.
type CartActor struct {
	rt       *runtime.Runtime
	store    store.Store
	cooldown cooldown.Ledger
	notifier gateway.Notifier
	delay    time.Duration
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewCartActor(
	rt *runtime.Runtime,
	st store.Store,
	ledger cooldown.Ledger,
	notifier gateway.Notifier,
	delay time.Duration,
	logger *zap.SugaredLogger,
) *CartActor {
	return &CartActor{
		rt:       rt,
		store:    st,
		cooldown: ledger,
		notifier: notifier,
		delay:    delay,
		logger:   logger.Named("cart"),
		now:      time.Now,
	}
}

// CartKey derives the actor key for a user's cart.
func CartKey(userID string) string {
	return CartKind + ":user-" + userID
}

func cartUserID(key string) string {
	return strings.TrimPrefix(key, CartKind+":user-")
}

func (a *CartActor) AddToCart(ctx context.Context, userID string, item domain.CartItem) (Result, error) {
	var res Result
	err := a.rt.Do(ctx, CartKey(userID), func(ctx context.Context) error {
		doc, err := a.load(ctx, CartKey(userID))
		if err != nil {
			return err
		}

		if doc.FindItem(item.CourseID) != nil {
			res = duplicate("Item already exists in the cart")
			return nil
		}

		doc.Items = append(doc.Items, item)
		if err := a.persistAndDeriveReminder(ctx, CartKey(userID), doc); err != nil {
			return err
		}

		res = ok("Item %s added to cart successfully", item.Title)
		return nil
	})
	return res, err
}

func (a *CartActor) RemoveFromCart(ctx context.Context, userID, courseID string) (Result, error) {
	var res Result
	err := a.rt.Do(ctx, CartKey(userID), func(ctx context.Context) error {
		doc, err := a.load(ctx, CartKey(userID))
		if err != nil {
			return err
		}

		kept := doc.Items[:0]
		for _, it := range doc.Items {
			if it.CourseID != courseID {
				kept = append(kept, it)
			}
		}
		doc.Items = kept

		if err := a.persistAndDeriveReminder(ctx, CartKey(userID), doc); err != nil {
			return err
		}

		res = ok("Item removed from cart")
		return nil
	})
	return res, err
}

func (a *CartActor) UpdateCart(ctx context.Context, userID, courseID string, updates domain.CartItemUpdate) (Result, error) {
	var res Result
	err := a.rt.Do(ctx, CartKey(userID), func(ctx context.Context) error {
		doc, err := a.load(ctx, CartKey(userID))
		if err != nil {
			return err
		}

		item := doc.FindItem(courseID)
		if item == nil {
			res = notFound("Item %s not found in cart", courseID)
			return nil
		}

		updates.Apply(item)
		if err := a.persistAndDeriveReminder(ctx, CartKey(userID), doc); err != nil {
			return err
		}

		res = ok("Item %s updated successfully", courseID)
		return nil
	})
	return res, err
}

func (a *CartActor) GetCart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := a.rt.Do(ctx, CartKey(userID), func(ctx context.Context) error {
		doc, err := a.load(ctx, CartKey(userID))
		if err != nil {
			return err
		}
		items = doc.Items
		return nil
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}

func (a *CartActor) ClearCart(ctx context.Context, userID string) (Result, error) {
	var res Result
	err := a.rt.Do(ctx, CartKey(userID), func(ctx context.Context) error {
		doc, err := a.load(ctx, CartKey(userID))
		if err != nil {
			return err
		}

		doc.Items = nil
		if err := a.persistAndDeriveReminder(ctx, CartKey(userID), doc); err != nil {
			return err
		}

		res = ok("Cart cleared successfully")
		return nil
	})
	return res, err
}

// ResetCartReminder re-derives the alarm from the current item list without
// touching the items.
func (a *CartActor) ResetCartReminder(ctx context.Context, userID string) (Result, error) {
	var res Result
	err := a.rt.Do(ctx, CartKey(userID), func(ctx context.Context) error {
		doc, err := a.load(ctx, CartKey(userID))
		if err != nil {
			return err
		}

		if err := a.persistAndDeriveReminder(ctx, CartKey(userID), doc); err != nil {
			return err
		}

		if len(doc.Items) > 0 {
			res = ok("Cart reminder reset")
		} else {
			res = ok("No items in cart, reminder not set")
		}
		return nil
	})
	return res, err
}

// HandleAlarm is the wake-up handler registered with the runtime. It runs
// under the cart key's exclusive lock with the alarm slot already cleared.
// Gateway and ledger failures are logged, not returned: the reminder flag
// must be reset regardless of delivery outcome.
func (a *CartActor) HandleAlarm(ctx context.Context, key string) error {
	doc, err := a.load(ctx, key)
	if err != nil {
		return err
	}

	if len(doc.Items) > 0 && doc.ReminderScheduled {
		userID := doc.Items[0].UserID
		if userID == "" {
			userID = cartUserID(key)
		}

		onCooldown, err := a.cooldown.Active(ctx, userID)
		if err != nil {
			// suppress rather than risk a duplicate reminder
			a.logger.Warnw("cooldown check failed, skipping reminder", "user", userID, "error", err)
			onCooldown = true
		}

		if !onCooldown {
			if err := a.notifier.SendCartReminder(ctx, userID, doc.Items); err != nil {
				a.logger.Errorw("failed to send cart reminder", "user", userID, "error", err)
			} else {
				a.logger.Infow("cart reminder sent", "user", userID, "items", len(doc.Items))
				if err := a.cooldown.Mark(ctx, userID); err != nil {
					a.logger.Warnw("failed to write cooldown marker", "user", userID, "error", err)
				}
			}
		}
	}

	doc.ReminderScheduled = false
	return a.save(ctx, key, doc)
}

// persistAndDeriveReminder saves the document with the reminder flag matching
// the item list, then arms or cancels the alarm to match. Flag and alarm are
// always updated as one step so the invariant
// reminderScheduled == (len(items) > 0) holds after every mutation.
func (a *CartActor) persistAndDeriveReminder(ctx context.Context, key string, doc *domain.CartDocument) error {
	doc.ReminderScheduled = len(doc.Items) > 0

	if err := a.save(ctx, key, doc); err != nil {
		return err
	}

	if doc.ReminderScheduled {
		return a.rt.SetAlarm(ctx, key, a.now().Add(a.delay))
	}
	return a.rt.CancelAlarm(ctx, key)
}

func (a *CartActor) load(ctx context.Context, key string) (*domain.CartDocument, error) {
	raw, err := a.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return &domain.CartDocument{}, nil
	}
	if err != nil {
		return nil, err
	}

	var doc domain.CartDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode cart document: %w", err)
	}
	return &doc, nil
}

func (a *CartActor) save(ctx context.Context, key string, doc *domain.CartDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode cart document: %w", err)
	}
	return a.store.Put(ctx, key, raw)
}
