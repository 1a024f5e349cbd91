package domain

import "time"

// ExpiryRecord is the durable state owned by one expiry reminder actor:
// which course access expires, for whom, and when. It is written by
// ScheduleReminder and deleted once the reminder has been delivered.
type ExpiryRecord struct {
	CourseID  string    `json:"courseId"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}
