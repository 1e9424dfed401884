package validators

import (
	"strings"
)

type ClientCreateRequest struct {
	Name string `json:"name" validate:"not_blank,max=100"`
}

func (r *ClientCreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func ValidateClientCreate(req *ClientCreateRequest) ValidationErrors {
	return ValidateStruct(req)
}
