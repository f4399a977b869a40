package keycodec

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"
)

// signatureLen is the number of digest characters kept in a key.
const signatureLen = 8

// expiryLayout is the YYYYMMDD form used inside keys.
const expiryLayout = "20060102"

// Codec derives license keys from a hardware id, an expiration date and the
// shared secret it was built with.
type Codec struct {
	secret string
}

// New returns a Codec bound to secret. The secret must be the same value at
// issuance and wherever keys are recomputed.
func New(secret string) *Codec {
	return &Codec{secret: secret}
}

// NormalizeHardwareID drops every character outside [A-Za-z0-9] and uppercases
// the rest. This is the only normalization applied before signing.
func NormalizeHardwareID(hardwareID string) string {
	var b strings.Builder
	b.Grow(len(hardwareID))
	for i := 0; i < len(hardwareID); i++ {
		ch := hardwareID[i]
		switch {
		case ch >= 'a' && ch <= 'z':
			b.WriteByte(ch - 'a' + 'A')
		case ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// FormatExpiry renders the date components of t as YYYYMMDD.
func FormatExpiry(t time.Time) string {
	return t.Format(expiryLayout)
}

// DeriveKey returns "YYYYMMDD-SIGNATURE" for the given hardware id and expiry.
func (c *Codec) DeriveKey(hardwareID string, expiry time.Time) string {
	return c.DeriveKeyDigits(hardwareID, FormatExpiry(expiry))
}

// DeriveKeyDigits is DeriveKey with the expiry already rendered as YYYYMMDD.
func (c *Codec) DeriveKeyDigits(hardwareID, expiryDigits string) string {
	return expiryDigits + "-" + c.signature(NormalizeHardwareID(hardwareID)+expiryDigits)
}

// Matches recomputes the key for hardwareID using the expiry embedded in key
// and reports whether the signatures agree.
func (c *Codec) Matches(key, hardwareID string) bool {
	parsed, err := ParseKey(key)
	if err != nil {
		return false
	}
	want := c.DeriveKeyDigits(hardwareID, parsed.ExpiryDigits)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToUpper(key))) == 1
}

// signature computes SHA256(payload + secret) as uppercase hex and keeps the
// first signatureLen characters.
func (c *Codec) signature(payload string) string {
	sum := sha256.Sum256([]byte(payload + c.secret))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	return digest[:signatureLen]
}
