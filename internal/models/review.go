package models

import (
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is one immutable rating left by a client for a worker.
type Review struct {
	ID             string     `json:"id" bson:"_id" firestore:"-"`
	WorkerID       string     `json:"workerId" bson:"worker_id" firestore:"workerId"`
	ClientID       string     `json:"clientId" bson:"client_id" firestore:"clientId"`
	ClientEmail    string     `json:"clientEmail" bson:"client_email" firestore:"clientEmail"`
	ClientName     string     `json:"clientName" bson:"client_name" firestore:"clientName"`
	Rating         int        `json:"rating" bson:"rating" firestore:"rating"`
	Review         string     `json:"review" bson:"review" firestore:"review"`
	IdempotencyKey string     `json:"-" bson:"idempotency_key,omitempty" firestore:"idempotencyKey,omitempty"`
	Timestamp      *time.Time `json:"timestamp" bson:"timestamp" firestore:"timestamp"`
}

// Submission records that an idempotency key has already produced a review.
type Submission struct {
	Key       string    `json:"key" bson:"key" firestore:"-"`
	WorkerID  string    `json:"workerId" bson:"worker_id" firestore:"workerId"`
	ReviewID  string    `json:"reviewId" bson:"review_id" firestore:"reviewId"`
	ClientID  string    `json:"clientId" bson:"client_id" firestore:"clientId"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at" firestore:"createdAt"`
}
