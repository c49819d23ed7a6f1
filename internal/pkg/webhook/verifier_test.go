package webhook

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serverTime = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestVerifier() *Verifier {
	return NewVerifierAt("test-secret", func() time.Time { return serverTime })
}

func freshTimestamp() string {
	return strconv.FormatInt(serverTime.UnixMilli(), 10)
}

func TestVerifier_Verify_ValidSignature(t *testing.T) {
	t.Parallel()
	v := newTestVerifier()
	body := []byte(`{"payroll_id":"p-1","status":"paid"}`)
	ts := freshTimestamp()

	sig := v.Sign(ts, body)

	require.NoError(t, v.Verify(sig, ts, body))
	require.NoError(t, v.Verify("sha256="+sig, ts, body))
}

func TestVerifier_Verify_TamperedBody(t *testing.T) {
	t.Parallel()
	v := newTestVerifier()
	body := []byte(`{"payroll_id":"p-1","status":"paid"}`)
	ts := freshTimestamp()
	sig := v.Sign(ts, body)

	tampered := []byte(`{"payroll_id":"p-2","status":"paid"}`)
	assert.ErrorIs(t, v.Verify(sig, ts, tampered), ErrBadSignature)
}

func TestVerifier_Verify_WrongSecret(t *testing.T) {
	t.Parallel()
	body := []byte(`{"payroll_id":"p-1"}`)
	ts := freshTimestamp()
	sig := NewVerifierAt("other-secret", func() time.Time { return serverTime }).Sign(ts, body)

	assert.ErrorIs(t, newTestVerifier().Verify(sig, ts, body), ErrBadSignature)
}

func TestVerifier_Verify_StaleTimestamp(t *testing.T) {
	t.Parallel()
	v := newTestVerifier()
	body := []byte(`{}`)

	stale := strconv.FormatInt(serverTime.Add(-6*time.Minute).UnixMilli(), 10)
	assert.ErrorIs(t, v.Verify(v.Sign(stale, body), stale, body), ErrStaleTimestamp)

	future := strconv.FormatInt(serverTime.Add(6*time.Minute).UnixMilli(), 10)
	assert.ErrorIs(t, v.Verify(v.Sign(future, body), future, body), ErrStaleTimestamp)

	// Just inside the window on both sides.
	edge := strconv.FormatInt(serverTime.Add(-4*time.Minute).UnixMilli(), 10)
	assert.NoError(t, v.Verify(v.Sign(edge, body), edge, body))
}

func TestVerifier_Verify_MissingHeaders(t *testing.T) {
	t.Parallel()
	v := newTestVerifier()
	body := []byte(`{}`)
	ts := freshTimestamp()

	assert.ErrorIs(t, v.Verify("", ts, body), ErrMissingSignature)
	assert.ErrorIs(t, v.Verify(v.Sign(ts, body), "", body), ErrMissingSignature)
	assert.ErrorIs(t, v.Verify(v.Sign(ts, body), "not-a-number", body), ErrStaleTimestamp)
}
