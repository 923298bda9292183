package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sign returns the hex HMAC-SHA256 of "<unix ts>.<payload>".
func Sign(secret string, ts time.Time, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeader formats the X-Webhook-Signature value: t=<unix>,v1=<hex>.
func SignatureHeader(secret string, ts time.Time, payload []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), Sign(secret, ts, payload))
}

// VerifySignatureHeader checks a header produced by SignatureHeader. Receivers
// should reject timestamps older than tolerance to limit replays.
func VerifySignatureHeader(secret, header string, payload []byte, now time.Time, tolerance time.Duration) error {
	var (
		ts  int64
		sig string
	)
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid signature timestamp: %w", err)
			}
			ts = parsed
		case "v1":
			sig = v
		}
	}
	if ts == 0 || sig == "" {
		return fmt.Errorf("malformed signature header")
	}

	signedAt := time.Unix(ts, 0)
	if tolerance > 0 && now.Sub(signedAt).Abs() > tolerance {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	expected := Sign(secret, signedAt, payload)
	if subtle.ConstantTimeCompare([]byte(sig), []byte(expected)) != 1 {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
