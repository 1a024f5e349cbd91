package domain

// CartItem is a course placed in a user's cart. CourseID is the identity of
// the item within a cart; UserID ties the item back to its owner and is used
// by the abandonment reminder payload.
type CartItem struct {
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
	IsFromPrice    *bool   `json:"isFromPrice,omitempty"`
}

// CartItemUpdate enumerates the fields of a cart item that may be changed
// after the item has been added. CourseID and UserID are identity fields and
// are deliberately absent. Nil fields are left untouched.
type CartItemUpdate struct {
	Slug           *string  `json:"slug,omitempty"`
	Title          *string  `json:"title,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	Language       *string  `json:"language,omitempty"`
	ImageURL       *string  `json:"imageUrl,omitempty"`
	Duration       *int     `json:"duration,omitempty"`
	LessonCount    *int     `json:"lessonCount,omitempty"`
	AccessDuration *int     `json:"accessDuration,omitempty"`
	AccessPlanID   *string  `json:"accessPlanId,omitempty"`
	IsFromPrice    *bool    `json:"isFromPrice,omitempty"`
}

// Apply merges the provided fields into item.
func (u CartItemUpdate) Apply(item *CartItem) {
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
	if u.IsFromPrice != nil {
		item.IsFromPrice = u.IsFromPrice
	}
}

// CartDocument is the durable state owned by one cart actor.
// ReminderScheduled is true iff an abandonment alarm is armed; the two are
// re-derived together after every mutation.
type CartDocument struct {
	Items             []CartItem `json:"items"`
	ReminderScheduled bool       `json:"reminderScheduled"`
}

// FindItem returns a pointer into Items for the given course, or nil.
func (d *CartDocument) FindItem(courseID string) *CartItem {
	for i := range d.Items {
		if d.Items[i].CourseID == courseID {
			return &d.Items[i]
		}
	}
	return nil
}
