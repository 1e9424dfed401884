package validators

import (
	"strings"
)

type WorkerCreateRequest struct {
	Name     string `json:"name" validate:"not_blank,max=100"`
	Trade    string `json:"trade" validate:"not_blank,max=100"`
	Phone    string `json:"phone" validate:"not_blank,phone_number"`
	Location string `json:"location" validate:"not_blank,max=200"`
}

func (r *WorkerCreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Trade = strings.TrimSpace(r.Trade)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Location = strings.TrimSpace(r.Location)
}

func ValidateWorkerCreate(req *WorkerCreateRequest) ValidationErrors {
	return ValidateStruct(req)
}
