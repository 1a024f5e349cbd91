package actors

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Eduardaskuliesa/Alina-workers/internal/domain"
	"github.com/Eduardaskuliesa/Alina-workers/internal/runtime"
	"github.com/Eduardaskuliesa/Alina-workers/internal/store"
	"github.com/Eduardaskuliesa/Alina-workers/pkg/logger"
)

type cartCall struct {
	userID string
	items  []domain.CartItem
}

type expiryCall struct {
	userID   string
	courseID string
	days     int
}

type mockNotifier struct {
	m           sync.Mutex
	err         error
	cartCalls   []cartCall
	expiryCalls []expiryCall
}

func (n *mockNotifier) SendCartReminder(_ context.Context, userID string, items []domain.CartItem) error {
	n.m.Lock()
	defer n.m.Unlock()
	if n.err != nil {
		return n.err
	}
	n.cartCalls = append(n.cartCalls, cartCall{userID: userID, items: items})
	return nil
}

func (n *mockNotifier) SendExpiryReminder(_ context.Context, userID, courseID string, days int) error {
	n.m.Lock()
	defer n.m.Unlock()
	if n.err != nil {
		return n.err
	}
	n.expiryCalls = append(n.expiryCalls, expiryCall{userID: userID, courseID: courseID, days: days})
	return nil
}

func (n *mockNotifier) cartCallCount() int {
	n.m.Lock()
	defer n.m.Unlock()
	return len(n.cartCalls)
}

func (n *mockNotifier) expiryCallCount() int {
	n.m.Lock()
	defer n.m.Unlock()
	return len(n.expiryCalls)
}

type mockLedger struct {
	m      sync.Mutex
	active bool
	err    error
	marked []string
}

func (l *mockLedger) Mark(_ context.Context, userID string) error {
	l.m.Lock()
	defer l.m.Unlock()
	if l.err != nil {
		return l.err
	}
	l.marked = append(l.marked, userID)
	return nil
}

func (l *mockLedger) Active(context.Context, string) (bool, error) {
	l.m.Lock()
	defer l.m.Unlock()
	if l.err != nil {
		return false, l.err
	}
	return l.active, nil
}

func newTestRuntime(t *testing.T, st store.Store) *runtime.Runtime {
	rt := runtime.New(st, logger.NewNop())
	require.NoError(t, rt.Start(context.Background()))
	t.Cleanup(func() { rt.Stop(context.Background(), time.Second) })
	return rt
}

func testItem(courseID, title string) domain.CartItem {
	return domain.CartItem{
		CourseID:       courseID,
		Slug:           "slug-" + courseID,
		Title:          title,
		UserID:         "u1",
		Price:          49.99,
		Language:       "en",
		ImageURL:       "https://img.example.com/" + courseID + ".png",
		Duration:       120,
		LessonCount:    24,
		AccessDuration: 365,
		AccessPlanID:   "plan-basic",
	}
}

func testWishlistItem(courseID, title string) domain.WishlistItem {
	return domain.WishlistItem{
		CourseID:       courseID,
		Slug:           "slug-" + courseID,
		Title:          title,
		UserID:         "u1",
		Price:          49.99,
		Language:       "en",
		ImageURL:       "https://img.example.com/" + courseID + ".png",
		Duration:       120,
		LessonCount:    24,
		AccessDuration: 365,
		AccessPlanID:   "plan-basic",
	}
}
