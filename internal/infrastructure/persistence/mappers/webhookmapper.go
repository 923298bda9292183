package mappers

import (
	"fmt"

	"github.com/orris-inc/satsgate/internal/domain/webhook"
	vo "github.com/orris-inc/satsgate/internal/domain/webhook/valueobjects"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/satsgate/internal/shared/mapper"
)

func SubscriptionToModel(s *webhook.Subscription) *models.WebhookSubscriptionModel {
	return &models.WebhookSubscriptionModel{
		ID:                  s.ID(),
		SID:                 s.SID(),
		URL:                 s.URL(),
		SecretKey:           s.SecretKey(),
		EventTypes:          s.EventTypes(),
		MaxRetries:          s.MaxRetries(),
		IsActive:            s.IsActive(),
		ConsecutiveFailures: s.ConsecutiveFailures(),
		LastFailureAt:       s.LastFailureAt(),
		LastSuccessAt:       s.LastSuccessAt(),
		CreatedAt:           s.CreatedAt(),
		UpdatedAt:           s.UpdatedAt(),
	}
}

func SubscriptionToDomain(model *models.WebhookSubscriptionModel) *webhook.Subscription {
	return webhook.ReconstructSubscription(
		model.ID, model.SID, model.URL, model.SecretKey, []string(model.EventTypes),
		model.MaxRetries, model.IsActive, model.ConsecutiveFailures,
		model.LastFailureAt, model.LastSuccessAt, model.CreatedAt, model.UpdatedAt,
	)
}

func SubscriptionsToDomain(list []models.WebhookSubscriptionModel) []*webhook.Subscription {
	return mapper.MapSlice(list, func(m models.WebhookSubscriptionModel) *webhook.Subscription {
		return SubscriptionToDomain(&m)
	})
}

func DeliveryToModel(d *webhook.Delivery) *models.WebhookDeliveryModel {
	return &models.WebhookDeliveryModel{
		ID:             d.ID(),
		DeliveryID:     d.DeliveryID(),
		SubscriptionID: d.SubscriptionID(),
		EventType:      d.EventType(),
		Payload:        d.Payload(),
		AttemptNumber:  d.AttemptNumber(),
		MaxRetries:     d.MaxRetries(),
		Status:         d.Status().String(),
		ResponseCode:   d.ResponseCode(),
		LastError:      d.LastError(),
		NextAttemptAt:  d.NextAttemptAt(),
		DeliveredAt:    d.DeliveredAt(),
		CreatedAt:      d.CreatedAt(),
		UpdatedAt:      d.UpdatedAt(),
	}
}

func DeliveryToDomain(model *models.WebhookDeliveryModel) (*webhook.Delivery, error) {
	status := vo.DeliveryStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid delivery status: %s", model.Status)
	}

	return webhook.ReconstructDelivery(
		model.ID, model.DeliveryID, model.SubscriptionID, model.EventType, model.Payload,
		model.AttemptNumber, model.MaxRetries, status, model.ResponseCode, model.LastError,
		model.NextAttemptAt, model.DeliveredAt, model.CreatedAt, model.UpdatedAt,
	), nil
}
