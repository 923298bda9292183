package bitcoin

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Serialized extended keys are 78 bytes plus a 4 byte checksum.
const serializedKeyLen = 82

var (
	versionXpub = []byte{0x04, 0x88, 0xb2, 0x1e}
	versionZpub = []byte{0x04, 0xb2, 0x47, 0x46}
	versionTpub = []byte{0x04, 0x35, 0x87, 0xcf}
	versionVpub = []byte{0x04, 0x5f, 0x1c, 0xf6}
)

// normalizeVersion rewrites SLIP-132 zpub/vpub prefixes to the BIP32 xpub/tpub
// prefixes hdkeychain understands. xpub and tpub pass through unchanged.
func normalizeVersion(key string) (string, error) {
	raw := base58.Decode(key)
	if len(raw) != serializedKeyLen {
		return "", fmt.Errorf("unexpected serialized length %d", len(raw))
	}
	payload, checksum := raw[:78], raw[78:]
	if !bytes.Equal(chainhash.DoubleHashB(payload)[:4], checksum) {
		return "", fmt.Errorf("bad checksum")
	}

	var target []byte
	switch version := payload[:4]; {
	case bytes.Equal(version, versionXpub), bytes.Equal(version, versionTpub):
		return key, nil
	case bytes.Equal(version, versionZpub):
		target = versionXpub
	case bytes.Equal(version, versionVpub):
		target = versionTpub
	default:
		return "", fmt.Errorf("unsupported key version %x", version)
	}

	out := make([]byte, 0, serializedKeyLen)
	out = append(out, target...)
	out = append(out, payload[4:]...)
	out = append(out, chainhash.DoubleHashB(out)[:4]...)
	return base58.Encode(out), nil
}
