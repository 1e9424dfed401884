package models

import (
	"strings"
	"time"
)

// Worker is the public profile of a tradesperson. The id equals the owning identity's uid.
type Worker struct {
	ID         string    `json:"id" bson:"_id" firestore:"-"`
	Name       string    `json:"name" bson:"name" firestore:"name"`
	Email      string    `json:"email,omitempty" bson:"email" firestore:"email"`
	Phone      string    `json:"phone" bson:"phone" firestore:"phone"`
	Trade      string    `json:"trade" bson:"trade" firestore:"trade"`
	Location   string    `json:"location" bson:"location" firestore:"location"`
	Skills     []string  `json:"skills" bson:"skills" firestore:"skills"`
	ProfileURL string    `json:"profileUrl" bson:"profile_url" firestore:"profileUrl"`
	TrustScore float64   `json:"trustScore" bson:"trust_score" firestore:"trustScore"`
	JobsCount  int64     `json:"jobsCount" bson:"jobs_count" firestore:"jobsCount"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updated_at" firestore:"updatedAt"`
}

// WorkerSummary is the denormalized trust summary kept on the profile.
type WorkerSummary struct {
	TrustScore float64
	JobsCount  int64
}

type WorkerFilter struct {
	Trade    string
	Location string
}

// Matches reports whether w satisfies the filter. Both fields are
// case-insensitive substring matches; an empty field matches everything.
func (f WorkerFilter) Matches(w *Worker) bool {
	if w == nil {
		return false
	}
	return containsFold(w.Trade, f.Trade) && containsFold(w.Location, f.Location)
}

func containsFold(s, sub string) bool {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
