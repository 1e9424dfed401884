package validators

import (
	"strings"
)

// ReviewCreateRequest is the body of a review submission. Rating is left
// undecoded so that numeric strings can be coerced.
type ReviewCreateRequest struct {
	WorkerID  string      `json:"workerId" validate:"not_blank"`
	Rating    interface{} `json:"rating"`
	Review    string      `json:"review" validate:"max=1000"`
	RequestID string      `json:"requestId" validate:"omitempty,max=128"`
}

func (r *ReviewCreateRequest) Normalize() {
	r.WorkerID = strings.TrimSpace(r.WorkerID)
	r.Review = strings.TrimSpace(r.Review)
	r.RequestID = strings.TrimSpace(r.RequestID)
}

func ValidateReviewCreate(req *ReviewCreateRequest) ValidationErrors {
	return ValidateStruct(req)
}
