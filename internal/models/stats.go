package models

import (
	"time"
)

// WorkerStats holds the running totals for one worker. It is created on the first
// accepted review and never deleted.
type WorkerStats struct {
	WorkerID      string    `json:"workerId" bson:"_id" firestore:"-"`
	TotalRatings  int64     `json:"totalRatings" bson:"total_ratings" firestore:"totalRatings"`
	TotalScore    float64   `json:"totalScore" bson:"total_score" firestore:"totalScore"`
	AverageRating float64   `json:"averageRating" bson:"average_rating" firestore:"averageRating"`
	Version       int64     `json:"version" bson:"version" firestore:"version"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at" firestore:"updatedAt"`
}

// Apply returns the statistics after accepting one more rating.
func (s WorkerStats) Apply(rating int) WorkerStats {
	next := s
	next.TotalRatings = s.TotalRatings + 1
	next.TotalScore = s.TotalScore + float64(rating)
	next.AverageRating = next.TotalScore / float64(next.TotalRatings)
	next.Version = s.Version + 1
	return next
}
