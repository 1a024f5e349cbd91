package actors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Eduardaskuliesa/Alina-workers/internal/domain"
	"github.com/Eduardaskuliesa/Alina-workers/internal/runtime"
	"github.com/Eduardaskuliesa/Alina-workers/internal/store"
)

// WishlistKind prefixes every wishlist actor key.
const WishlistKind = "wishlist"

// WishlistActor is the cart actor's timerless sibling: plain CRUD over a
// per-user saved-items list.
type WishlistActor struct {
	rt     *runtime.Runtime
	store  store.Store
	logger *zap.SugaredLogger
}

func NewWishlistActor(rt *runtime.Runtime, st store.Store, logger *zap.SugaredLogger) *WishlistActor {
	return &WishlistActor{
		rt:     rt,
		store:  st,
		logger: logger.Named("wishlist"),
	}
}

// WishlistKey derives the actor key for a user's wishlist.
func WishlistKey(userID string) string {
	return WishlistKind + ":user-" + userID
}

func (a *WishlistActor) AddToWishlist(ctx context.Context, userID string, item domain.WishlistItem) (Result, error) {
	var res Result
	err := a.rt.Do(ctx, WishlistKey(userID), func(ctx context.Context) error {
		doc, err := a.load(ctx, WishlistKey(userID))
		if err != nil {
			return err
		}

		if doc.FindItem(item.CourseID) != nil {
			res = duplicate("Item already exists in the wishlist")
			return nil
		}

		doc.Items = append(doc.Items, item)
		if err := a.save(ctx, WishlistKey(userID), doc); err != nil {
			return err
		}

		res = ok("Item %s added to wishlist successfully", item.Title)
		return nil
	})
	return res, err
}

func (a *WishlistActor) RemoveFromWishlist(ctx context.Context, userID, courseID string) (Result, error) {
	var res Result
	err := a.rt.Do(ctx, WishlistKey(userID), func(ctx context.Context) error {
		doc, err := a.load(ctx, WishlistKey(userID))
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

		if err := a.save(ctx, WishlistKey(userID), doc); err != nil {
			return err
		}

		res = ok("Item removed from wishlist")
		return nil
	})
	return res, err
}

func (a *WishlistActor) UpdateWishlist(ctx context.Context, userID, courseID string, updates domain.WishlistItemUpdate) (Result, error) {
	var res Result
	err := a.rt.Do(ctx, WishlistKey(userID), func(ctx context.Context) error {
		doc, err := a.load(ctx, WishlistKey(userID))
		if err != nil {
			return err
		}

		item := doc.FindItem(courseID)
		if item == nil {
			res = notFound("Item %s not found in wishlist", courseID)
			return nil
		}

		updates.Apply(item)
		if err := a.save(ctx, WishlistKey(userID), doc); err != nil {
			return err
		}

		res = ok("Item %s updated successfully", courseID)
		return nil
	})
	return res, err
}

func (a *WishlistActor) GetWishlist(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	var items []domain.WishlistItem
	err := a.rt.Do(ctx, WishlistKey(userID), func(ctx context.Context) error {
		doc, err := a.load(ctx, WishlistKey(userID))
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
		items = []domain.WishlistItem{}
	}
	return items, nil
}

func (a *WishlistActor) load(ctx context.Context, key string) (*domain.WishlistDocument, error) {
	raw, err := a.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return &domain.WishlistDocument{}, nil
	}
	if err != nil {
		return nil, err
	}

	var doc domain.WishlistDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode wishlist document: %w", err)
	}
	return &doc, nil
}

func (a *WishlistActor) save(ctx context.Context, key string, doc *domain.WishlistDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode wishlist document: %w", err)
	}
	return a.store.Put(ctx, key, raw)
}
