package mappers

import (
	"github.com/orris-inc/satsgate/internal/domain/outbox"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/models"
)

func OutboxMessageToModel(m *outbox.Message) *models.OutboxMessageModel {
	return &models.OutboxMessageModel{
		ID:            m.ID(),
		DedupKey:      m.DedupKey(),
		EventType:     m.EventType(),
		AggregateID:   m.AggregateID(),
		Effect:        string(m.Effect()),
		Payload:       m.Payload(),
		Status:        string(m.Status()),
		Attempts:      m.Attempts(),
		MaxAttempts:   m.MaxAttempts(),
		NextAttemptAt: m.NextAttemptAt(),
		LastError:     m.LastError(),
		ProcessedAt:   m.ProcessedAt(),
		CreatedAt:     m.CreatedAt(),
		UpdatedAt:     m.UpdatedAt(),
	}
}

func OutboxMessageToDomain(model *models.OutboxMessageModel) *outbox.Message {
	return outbox.ReconstructMessage(
		model.ID, model.DedupKey, model.EventType, model.AggregateID,
		outbox.Effect(model.Effect), model.Payload, outbox.Status(model.Status),
		model.Attempts, model.MaxAttempts, model.NextAttemptAt, model.LastError,
		model.ProcessedAt, model.CreatedAt, model.UpdatedAt,
	)
}
