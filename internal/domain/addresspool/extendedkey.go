package addresspool

import (
	"fmt"
	"strings"
	"time"

	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
)

// ExtendedKey is operator-supplied account-level public key material. Only the
// active flag and the index counter ever change after creation.
type ExtendedKey struct {
	id          uint
	sid         string
	keyMaterial string
	network     vo.Network
	label       string
	active      bool
	nextIndex   uint32
	createdAt   time.Time
	updatedAt   time.Time
}

func NewExtendedKey(sid, keyMaterial string, network vo.Network, label string, now time.Time) (*ExtendedKey, error) {
	keyMaterial = strings.TrimSpace(keyMaterial)
	if keyMaterial == "" {
		return nil, fmt.Errorf("key material is required")
	}
	if !network.IsValid() {
		return nil, fmt.Errorf("invalid network: %s", network)
	}
	if sid == "" {
		return nil, fmt.Errorf("sid is required")
	}

	return &ExtendedKey{
		sid:         sid,
		keyMaterial: keyMaterial,
		network:     network,
		label:       label,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func ReconstructExtendedKey(
	id uint,
	sid, keyMaterial string,
	network vo.Network,
	label string,
	active bool,
	nextIndex uint32,
	createdAt, updatedAt time.Time,
) *ExtendedKey {
	return &ExtendedKey{
		id:          id,
		sid:         sid,
		keyMaterial: keyMaterial,
		network:     network,
		label:       label,
		active:      active,
		nextIndex:   nextIndex,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (k *ExtendedKey) SetID(id uint) {
	k.id = id
}

func (k *ExtendedKey) ID() uint             { return k.id }
func (k *ExtendedKey) SID() string          { return k.sid }
func (k *ExtendedKey) KeyMaterial() string  { return k.keyMaterial }
func (k *ExtendedKey) Network() vo.Network  { return k.network }
func (k *ExtendedKey) Label() string        { return k.label }
func (k *ExtendedKey) IsActive() bool       { return k.active }
func (k *ExtendedKey) NextIndex() uint32    { return k.nextIndex }
func (k *ExtendedKey) CreatedAt() time.Time { return k.createdAt }
func (k *ExtendedKey) UpdatedAt() time.Time { return k.updatedAt }
