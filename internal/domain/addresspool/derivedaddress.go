package addresspool

import "fmt"

// DerivedAddress is the output of deriving one child of an extended key.
type DerivedAddress struct {
	Address string
	Index   uint32
	KeyID   uint
	Path    string
}

// DerivationPath renders the full BIP84 path for an external-chain index.
func DerivationPath(coinType, index uint32) string {
	return fmt.Sprintf("m/84'/%d'/0'/0/%d", coinType, index)
}
