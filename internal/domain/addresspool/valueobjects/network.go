package valueobjects

// Network is the Bitcoin network a key and its addresses belong to.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

func (n Network) IsValid() bool {
	return n == NetworkMainnet || n == NetworkTestnet
}

// CoinType is the BIP44 coin type used in the derivation path.
func (n Network) CoinType() uint32 {
	if n == NetworkTestnet {
		return 1
	}
	return 0
}

func (n Network) String() string {
	return string(n)
}
