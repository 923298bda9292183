package bitcoin

import (
	"github.com/btcsuite/btcd/chaincfg"

	vo "github.com/orris-inc/satsgate/internal/domain/addresspool/valueobjects"
)

// ParamsFor maps a network to its chain parameters.
func ParamsFor(network vo.Network) *chaincfg.Params {
	if network == vo.NetworkTestnet {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}
