package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"hunarscan/internal/middleware"
	"hunarscan/internal/services"
	"hunarscan/internal/utils"
	"hunarscan/internal/validators"
)

type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// SubmitReview records a rating for a worker. An Idempotency-Key header takes
// precedence over a requestId in the body.
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var request validators.ReviewCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if key := strings.TrimSpace(c.GetHeader(utils.IdempotencyKeyHeader)); key != "" {
		request.RequestID = key
	}

	result, err := h.reviewService.SubmitReview(c.Request.Context(), middleware.GetIdentity(c), &request)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	if result.Replayed {
		utils.SuccessResponse(c, "Review already recorded", result)
		return
	}
	utils.CreatedResponse(c, "Review submitted successfully", result)
}

// ListReviews returns a worker's reviews, newest first.
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Reviews retrieved successfully", reviews, &utils.Meta{Count: len(reviews)})
}
