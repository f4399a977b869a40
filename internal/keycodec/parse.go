package keycodec

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedKey is returned when a string does not have the YYYYMMDD-XXXXXXXX shape.
var ErrMalformedKey = errors.New("malformed license key")

// ParsedKey is the inspectable content of a key. The signature cannot be
// checked without the hardware id and secret.
type ParsedKey struct {
	ExpiryDigits string
	Expiry       time.Time
	Signature    string
}

// ParseKey splits a key into its expiry and signature parts.
func ParseKey(key string) (*ParsedKey, error) {
	digits, sig, ok := strings.Cut(strings.TrimSpace(key), "-")
	if !ok {
		return nil, fmt.Errorf("%w: missing separator", ErrMalformedKey)
	}
	if len(digits) != len(expiryLayout) || !isDigits(digits) {
		return nil, fmt.Errorf("%w: expiry must be 8 digits", ErrMalformedKey)
	}
	expiry, err := time.Parse(expiryLayout, digits)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid expiry date %q", ErrMalformedKey, digits)
	}
	if len(sig) != signatureLen || !isHex(sig) {
		return nil, fmt.Errorf("%w: signature must be %d hex characters", ErrMalformedKey, signatureLen)
	}

	return &ParsedKey{
		ExpiryDigits: digits,
		Expiry:       expiry,
		Signature:    strings.ToUpper(sig),
	}, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !(ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'f' || ch >= 'A' && ch <= 'F') {
			return false
		}
	}
	return true
}
