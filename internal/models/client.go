package models

import (
	"time"
)

type Client struct {
	ID           string    `json:"id" bson:"_id" firestore:"-"`
	Name         string    `json:"name" bson:"name" firestore:"name"`
	Email        string    `json:"email" bson:"email" firestore:"email"`
	ReviewsGiven []string  `json:"reviewsGiven" bson:"reviews_given" firestore:"reviewsGiven"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at" firestore:"createdAt"`
}

// Identity is the verified caller, resolved from a bearer credential.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// IdentityProfile is the best-effort display data looked up for a uid.
type IdentityProfile struct {
	Email       string
	DisplayName string
}
