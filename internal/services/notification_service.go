package services

import (
	"context"
	"fmt"
	"time"

	"hunarscan/internal/models"
	"hunarscan/internal/utils"
	"hunarscan/pkg/logger"
	"hunarscan/pkg/sms"
)

type NotificationService interface {
	NotifyNewReview(ctx context.Context, worker *models.Worker, review *models.Review)
}

type notificationService struct {
	provider    sms.SMSProvider
	countryCode string
	timeout     time.Duration
	log         *logger.Logger
}

// NewNotificationService sends review alerts through provider. A nil provider
// disables notifications.
func NewNotificationService(provider sms.SMSProvider, countryCode string, timeout time.Duration, log *logger.Logger) NotificationService {
	if timeout <= 0 {
		timeout = utils.NotificationTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &notificationService{
		provider:    provider,
		countryCode: countryCode,
		timeout:     timeout,
		log:         log.WithField("service", "NotificationService"),
	}
}

func (s *notificationService) NotifyNewReview(ctx context.Context, worker *models.Worker, review *models.Review) {
	if s.provider == nil || worker == nil || review == nil || worker.Phone == "" {
		return
	}
	to := utils.NormalizePhone(worker.Phone, s.countryCode)
	if !utils.IsValidPhone(to) {
		s.log.WithWorkerID(worker.ID).Warn("Skipping review notification: invalid phone number")
		return
	}

	// Detached from the request so a client disconnect does not cut the send short.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	resp, err := s.provider.SendSMS(sendCtx, &sms.SMSRequest{
		To:      to,
		Message: reviewMessage(review),
		Type:    "transactional",
	})
	if err != nil {
		s.log.WithError(err).WithWorkerID(worker.ID).WithField("provider", s.provider.Name()).
			WithField("to", utils.MaskPhone(to)).Warn("Failed to send review notification")
		return
	}
	s.log.WithWorkerID(worker.ID).WithField("message_id", resp.MessageID).Debug("Review notification sent")
}

func reviewMessage(review *models.Review) string {
	from := review.ClientName
	if from == "" {
		from = "A client"
	}
	return fmt.Sprintf("%s rated your work %d/5 on %s.", from, review.Rating, utils.AppName)
}
