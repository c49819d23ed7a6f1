// Package webhook verifies signed payment-confirmation callbacks before any
// payroll state is touched.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// MaxClockSkew is how far a webhook timestamp may drift from server time.
const MaxClockSkew = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("webhook signature or timestamp header missing")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside the allowed window")
	ErrBadSignature     = errors.New("webhook signature mismatch")
)

// Verifier checks HMAC-SHA256 signatures over "{timestamp}." + rawBody using
// a shared secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// NewVerifierAt builds a verifier with a fixed clock. Test helper.
func NewVerifierAt(secret string, now func() time.Time) *Verifier {
	return &Verifier{secret: []byte(secret), now: now}
}

// Verify checks the signature and timestamp headers against the raw request
// body. The signature is hex, optionally prefixed "sha256="; the timestamp is
// epoch milliseconds and must be within MaxClockSkew of server time.
// Comparison is constant-time.
func (v *Verifier) Verify(signature, timestamp string, body []byte) error {
	if strings.TrimSpace(signature) == "" || strings.TrimSpace(timestamp) == "" {
		return ErrMissingSignature
	}

	millis, err := strconv.ParseInt(strings.TrimSpace(timestamp), 10, 64)
	if err != nil {
		return ErrStaleTimestamp
	}
	sent := time.UnixMilli(millis)
	if drift := v.now().Sub(sent); drift > MaxClockSkew || drift < -MaxClockSkew {
		return ErrStaleTimestamp
	}

	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strings.TrimSpace(timestamp)))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrBadSignature
	}
	return nil
}

// Sign produces the hex signature for a timestamp and body. Used by tests and
// by callers that need to emit signed callbacks.
func (v *Verifier) Sign(timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
