package domain

// WishlistItem mirrors CartItem without the pricing hint; wishlists carry no
// reminder logic so the shape is slightly smaller.
type WishlistItem struct {
	CourseID       string  `json:"courseId"`
	Slug           string  `json:"slug"`
	Title          string  `json:"title"`
	UserID         string  `json:"userId"`
	Price          float64 `json:"price"`
	Language       string  `json:"language"`
	ImageURL       string  `json:"imageUrl"`
	Duration       int     `json:"duration"`
	LessonCount    int     `json:"lessonCount"`
	AccessDuration int     `json:"accessDuration"`
	AccessPlanID   string  `json:"accessPlanId"`
}

// WishlistItemUpdate enumerates the updatable fields of a wishlist item.
type WishlistItemUpdate struct {
	Slug           *string  `json:"slug,omitempty"`
	Title          *string  `json:"title,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	Language       *string  `json:"language,omitempty"`
	ImageURL       *string  `json:"imageUrl,omitempty"`
	Duration       *int     `json:"duration,omitempty"`
	LessonCount    *int     `json:"lessonCount,omitempty"`
	AccessDuration *int     `json:"accessDuration,omitempty"`
	AccessPlanID   *string  `json:"accessPlanId,omitempty"`
}

// Apply merges the provided fields into item.
func (u WishlistItemUpdate) Apply(item *WishlistItem) {
	if u.Slug != nil {
		item.Slug = *u.Slug
	}
	if u.Title != nil {
		item.Title = *u.Title
	}
	if u.Price != nil {
		item.Price = *u.Price
	}
	if u.Language != nil {
		item.Language = *u.Language
	}
	if u.ImageURL != nil {
		item.ImageURL = *u.ImageURL
	}
	if u.Duration != nil {
		item.Duration = *u.Duration
	}
	if u.LessonCount != nil {
		item.LessonCount = *u.LessonCount
	}
	if u.AccessDuration != nil {
		item.AccessDuration = *u.AccessDuration
	}
	if u.AccessPlanID != nil {
		item.AccessPlanID = *u.AccessPlanID
	}
}

// WishlistDocument is the durable state owned by one wishlist actor.
type WishlistDocument struct {
	Items []WishlistItem `json:"items"`
}

// FindItem returns a pointer into Items for the given course, or nil.
func (d *WishlistDocument) FindItem(courseID string) *WishlistItem {
	for i := range d.Items {
		if d.Items[i].CourseID == courseID {
			return &d.Items[i]
		}
	}
	return nil
}
