// Package bitcoin derives BIP84 native segwit receiving addresses from
// account-level extended public keys.
package bitcoin

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"

	"github.com/orris-inc/satsgate/internal/domain/addresspool"
	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
)

// accountDepth is the depth of m/84'/coin'/account'.
const accountDepth = 3

// externalChain is the non-hardened receive branch below the account key.
const externalChain = 0

// Deriver implements derivation.Deriver with btcutil/hdkeychain.
type Deriver struct{}

func NewDeriver() *Deriver {
	return &Deriver{}
}

// Derive returns the P2WPKH address at m/84'/coin'/0'/0/index.
func (d *Deriver) Derive(keyMaterial string, index uint32, network vo.Network) (addresspool.DerivedAddress, error) {
	if index >= hdkeychain.HardenedKeyStart {
		return addresspool.DerivedAddress{}, addresspool.NewDerivationError(
			fmt.Sprintf("index %d is hardened", index), addresspool.ErrIndexOutOfRange)
	}

	account, err := d.parseAccountKey(keyMaterial, network)
	if err != nil {
		return addresspool.DerivedAddress{}, err
	}

	chain, err := account.Derive(externalChain)
	if err != nil {
		return addresspool.DerivedAddress{}, addresspool.NewDerivationError("derive external chain", err)
	}
	child, err := chain.Derive(index)
	if err != nil {
		return addresspool.DerivedAddress{}, addresspool.NewDerivationError(fmt.Sprintf("derive child %d", index), err)
	}

	pubKey, err := child.ECPubKey()
	if err != nil {
		return addresspool.DerivedAddress{}, addresspool.NewDerivationError("extract public key", err)
	}

	params := ParamsFor(network)
	addr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pubKey.SerializeCompressed()), params)
	if err != nil {
		return addresspool.DerivedAddress{}, addresspool.NewDerivationError("encode address", err)
	}

	return addresspool.DerivedAddress{
		Address: addr.EncodeAddress(),
		Index:   index,
		Path:    addresspool.DerivationPath(network.CoinType(), index),
	}, nil
}

func (d *Deriver) ValidateKey(keyMaterial string, network vo.Network) error {
	_, err := d.parseAccountKey(keyMaterial, network)
	return err
}

// ValidateAddress decodes address for network and returns its canonical form.
func (d *Deriver) ValidateAddress(address string, network vo.Network) (string, error) {
	params := ParamsFor(network)
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", address, err)
	}
	if !addr.IsForNet(params) {
		return "", fmt.Errorf("address %q is not for %s", address, network)
	}
	return addr.EncodeAddress(), nil
}

func (d *Deriver) parseAccountKey(keyMaterial string, network vo.Network) (*hdkeychain.ExtendedKey, error) {
	if !network.IsValid() {
		return nil, addresspool.NewDerivationError(fmt.Sprintf("unknown network %q", network), nil)
	}

	normalized, err := normalizeVersion(keyMaterial)
	if err != nil {
		return nil, addresspool.NewDerivationError("malformed extended key", err)
	}

	key, err := hdkeychain.NewKeyFromString(normalized)
	if err != nil {
		return nil, addresspool.NewDerivationError("malformed extended key", err)
	}
	if key.IsPrivate() {
		return nil, addresspool.NewDerivationError("private key material is not accepted", nil)
	}
	if !key.IsForNet(ParamsFor(network)) {
		return nil, addresspool.NewDerivationError(fmt.Sprintf("key is not for %s", network), nil)
	}
	if key.Depth() != accountDepth {
		return nil, addresspool.NewDerivationError(
			fmt.Sprintf("expected account-level key at depth %d, got %d", accountDepth, key.Depth()), nil)
	}
	return key, nil
}
