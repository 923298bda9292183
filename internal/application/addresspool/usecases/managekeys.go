package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/satsgate/internal/application/addresspool/derivation"
	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
	"github.com/orris-inc/satsgate/internal/shared/biztime"
	apperrors "github.com/orris-inc/satsgate/internal/shared/errors"
	"github.com/orris-inc/satsgate/internal/shared/id"
	"github.com/orris-inc/satsgate/internal/shared/logger"
	"github.com/orris-inc/satsgate/internal/shared/utils"
)

const maxPreviewCount = 100

type RegisterKeyCommand struct {
	KeyMaterial string
	Network     vo.Network
	Label       string
	Activate    bool
}

// KeyView is the outward representation of an extended key. Key material is masked.
type KeyView struct {
	ID        string `json:"id"`
	Key       string `json:"key"`
	Network   string `json:"network"`
	Label     string `json:"label,omitempty"`
	Active    bool   `json:"active"`
	NextIndex uint32 `json:"nextIndex"`
}

func ToKeyView(k *addresspool.ExtendedKey) *KeyView {
	return &KeyView{
		ID:        k.SID(),
		Key:       utils.MaskKey(k.KeyMaterial()),
		Network:   k.Network().String(),
		Label:     k.Label(),
		Active:    k.IsActive(),
		NextIndex: k.NextIndex(),
	}
}

// ManageKeysUseCase registers, lists and toggles extended keys.
type ManageKeysUseCase struct {
	keyRepo addresspool.ExtendedKeyRepository
	deriver derivation.Deriver
	clock   biztime.Clock
	logger  logger.Interface
}

func NewManageKeysUseCase(
	keyRepo addresspool.ExtendedKeyRepository,
	deriver derivation.Deriver,
	clock biztime.Clock,
	logger logger.Interface,
) *ManageKeysUseCase {
	return &ManageKeysUseCase{
		keyRepo: keyRepo,
		deriver: deriver,
		clock:   clock,
		logger:  logger,
	}
}

// Register validates and stores a key. Derivation is checked up front so a
// broken key never becomes active.
func (uc *ManageKeysUseCase) Register(ctx context.Context, cmd RegisterKeyCommand) (*KeyView, error) {
	if !cmd.Network.IsValid() {
		return nil, apperrors.NewValidationError("invalid network", string(cmd.Network))
	}
	if err := uc.deriver.ValidateKey(cmd.KeyMaterial, cmd.Network); err != nil {
		return nil, apperrors.NewValidationError("unusable extended key", err.Error()).WithCause(err)
	}

	sid, err := id.New(id.PrefixExtendedKey)
	if err != nil {
		return nil, err
	}
	key, err := addresspool.NewExtendedKey(sid, cmd.KeyMaterial, cmd.Network, cmd.Label, uc.clock.Now())
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := uc.keyRepo.Create(ctx, key); err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, apperrors.NewConflictError("extended key already registered")
		}
		return nil, fmt.Errorf("failed to create extended key: %w", err)
	}

	uc.logger.Infow("extended key registered", "key_sid", sid, "network", cmd.Network)

	if cmd.Activate {
		return uc.Activate(ctx, sid)
	}
	return ToKeyView(key), nil
}

func (uc *ManageKeysUseCase) List(ctx context.Context) ([]*KeyView, error) {
	keys, err := uc.keyRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list extended keys: %w", err)
	}
	views := make([]*KeyView, 0, len(keys))
	for _, k := range keys {
		views = append(views, ToKeyView(k))
	}
	return views, nil
}

// Activate makes sid the single active key.
func (uc *ManageKeysUseCase) Activate(ctx context.Context, sid string) (*KeyView, error) {
	key, err := uc.getKey(ctx, sid)
	if err != nil {
		return nil, err
	}
	if err := uc.keyRepo.Activate(ctx, key.ID()); err != nil {
		return nil, fmt.Errorf("failed to activate extended key: %w", err)
	}
	uc.logger.Infow("extended key activated", "key_sid", sid)
	return uc.reload(ctx, sid)
}

func (uc *ManageKeysUseCase) Deactivate(ctx context.Context, sid string) (*KeyView, error) {
	key, err := uc.getKey(ctx, sid)
	if err != nil {
		return nil, err
	}
	if err := uc.keyRepo.Deactivate(ctx, key.ID()); err != nil {
		return nil, fmt.Errorf("failed to deactivate extended key: %w", err)
	}
	uc.logger.Infow("extended key deactivated", "key_sid", sid)
	return uc.reload(ctx, sid)
}

// Preview derives count addresses starting at from without touching the pool
// or the index counter.
func (uc *ManageKeysUseCase) Preview(ctx context.Context, sid string, from uint32, count int) ([]addresspool.DerivedAddress, error) {
	if count <= 0 || count > maxPreviewCount {
		return nil, apperrors.NewValidationError(fmt.Sprintf("count must be between 1 and %d", maxPreviewCount))
	}
	key, err := uc.getKey(ctx, sid)
	if err != nil {
		return nil, err
	}

	out := make([]addresspool.DerivedAddress, 0, count)
	for i := 0; i < count; i++ {
		d, err := uc.deriver.Derive(key.KeyMaterial(), from+uint32(i), key.Network())
		if err != nil {
			return nil, apperrors.NewDerivationError("address derivation failed", err.Error()).WithCause(err)
		}
		d.KeyID = key.ID()
		out = append(out, d)
	}
	return out, nil
}

func (uc *ManageKeysUseCase) getKey(ctx context.Context, sid string) (*addresspool.ExtendedKey, error) {
	key, err := uc.keyRepo.GetBySID(ctx, sid)
	if errors.Is(err, addresspool.ErrKeyNotFound) {
		return nil, apperrors.NewNotFoundError("extended key not found", sid)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load extended key: %w", err)
	}
	return key, nil
}

func (uc *ManageKeysUseCase) reload(ctx context.Context, sid string) (*KeyView, error) {
	key, err := uc.getKey(ctx, sid)
	if err != nil {
		return nil, err
	}
	return ToKeyView(key), nil
}
