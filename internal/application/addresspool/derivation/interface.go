package derivation

import (
	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
)

// Deriver turns account-level extended public keys into receiving addresses.
// Implementations are pure: no network or disk access.
type Deriver interface {
	// Derive returns the external-chain address at index. Bad key material
	// yields an *addresspool.DerivationError.
	Derive(keyMaterial string, index uint32, network vo.Network) (addresspool.DerivedAddress, error)
	// ValidateKey checks that keyMaterial can be used for derivation on network.
	ValidateKey(keyMaterial string, network vo.Network) error
	// ValidateAddress checks an operator-supplied address and returns its
	// canonical encoding.
	ValidateAddress(address string, network vo.Network) (string, error)
}
