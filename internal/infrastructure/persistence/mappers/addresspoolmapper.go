package mappers

import (
	"fmt"

	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
	"github.com/orris-inc/satsgate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/satsgate/internal/shared/mapper"
)

func ExtendedKeyToModel(k *addresspool.ExtendedKey) *models.ExtendedKeyModel {
	return &models.ExtendedKeyModel{
		ID:          k.ID(),
		SID:         k.SID(),
		KeyMaterial: k.KeyMaterial(),
		Network:     k.Network().String(),
		Label:       k.Label(),
		IsActive:    k.IsActive(),
		NextIndex:   k.NextIndex(),
		CreatedAt:   k.CreatedAt(),
		UpdatedAt:   k.UpdatedAt(),
	}
}

func ExtendedKeyToDomain(model *models.ExtendedKeyModel) (*addresspool.ExtendedKey, error) {
	network := vo.Network(model.Network)
	if !network.IsValid() {
		return nil, fmt.Errorf("invalid network on extended key %d: %s", model.ID, model.Network)
	}

	return addresspool.ReconstructExtendedKey(
		model.ID, model.SID, model.KeyMaterial, network, model.Label,
		model.IsActive, model.NextIndex, model.CreatedAt, model.UpdatedAt,
	), nil
}

func PoolEntryToModel(e *addresspool.PoolEntry) *models.PoolEntryModel {
	return &models.PoolEntryModel{
		ID:                   e.ID(),
		Address:              e.Address(),
		Source:               e.Source().String(),
		KeyID:                e.KeyID(),
		DerivationIndex:      e.DerivationIndex(),
		DerivationPath:       e.DerivationPath(),
		IsReserved:           e.IsReserved(),
		ReservedToOrder:      e.ReservedToOrder(),
		ReservedAt:           e.ReservedAt(),
		ReservationExpiresAt: e.ReservationExpiresAt(),
		PaymentConfirmed:     e.PaymentConfirmed(),
		ConfirmedAt:          e.ConfirmedAt(),
		Version:              e.Version(),
		CreatedAt:            e.CreatedAt(),
		UpdatedAt:            e.UpdatedAt(),
	}
}

func PoolEntryToDomain(model *models.PoolEntryModel) (*addresspool.PoolEntry, error) {
	source := vo.EntrySource(model.Source)
	if !source.IsValid() {
		return nil, fmt.Errorf("invalid source on pool entry %d: %s", model.ID, model.Source)
	}

	return addresspool.ReconstructPoolEntry(
		model.ID, model.Address, source, model.KeyID, model.DerivationIndex, model.DerivationPath,
		model.IsReserved, model.ReservedToOrder, model.ReservedAt, model.ReservationExpiresAt,
		model.PaymentConfirmed, model.ConfirmedAt, model.Version, model.CreatedAt, model.UpdatedAt,
	), nil
}

func PoolEntriesToDomain(list []models.PoolEntryModel) ([]*addresspool.PoolEntry, error) {
	return mapper.MapSliceErr(list, func(m models.PoolEntryModel) (*addresspool.PoolEntry, error) {
		return PoolEntryToDomain(&m)
	})
}
