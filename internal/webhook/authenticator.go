package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Delivery headers set by the provider
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"

	secretPrefix     = "whsec_"
	signatureVersion = "v1"
)

// ErrAuthentication is returned for missing headers, stale timestamps and signature mismatches
var ErrAuthentication = errors.New("webhook authentication failed")

// Headers are the provider-supplied delivery headers
type Headers struct {
	ID        string
	Timestamp string
	Signature string
}

// HeadersFrom extracts delivery headers from an HTTP header set
func HeadersFrom(h http.Header) Headers {
	return Headers{
		ID:        h.Get(HeaderID),
		Timestamp: h.Get(HeaderTimestamp),
		Signature: h.Get(HeaderSignature),
	}
}

// Authenticator checks HMAC-SHA256 signatures over "<id>.<timestamp>.<body>"
type Authenticator struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewAuthenticator decodes a "whsec_" prefixed base64 secret
func NewAuthenticator(secret string, tolerance time.Duration) (*Authenticator, error) {
	encoded := strings.TrimPrefix(strings.TrimSpace(secret), secretPrefix)
	if encoded == "" {
		return nil, errors.New("webhook secret is empty")
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("webhook secret is not valid base64: %w", err)
	}

	return &Authenticator{
		secret:    key,
		tolerance: tolerance,
		now:       time.Now,
	}, nil
}

// Verify checks the signature of the exact raw payload bytes
func (a *Authenticator) Verify(payload []byte, h Headers) error {
	if h.ID == "" || h.Timestamp == "" || h.Signature == "" {
		return fmt.Errorf("%w: missing required headers", ErrAuthentication)
	}

	seconds, err := strconv.ParseInt(h.Timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid timestamp", ErrAuthentication)
	}

	sent := time.Unix(seconds, 0)
	now := a.now()
	if now.Sub(sent) > a.tolerance {
		return fmt.Errorf("%w: timestamp too old", ErrAuthentication)
	}
	if sent.Sub(now) > a.tolerance {
		return fmt.Errorf("%w: timestamp too new", ErrAuthentication)
	}

	expected := []byte(a.sign(h.ID, h.Timestamp, payload))

	for _, candidate := range strings.Fields(h.Signature) {
		version, signature, ok := strings.Cut(candidate, ",")
		if !ok || version != signatureVersion {
			continue
		}
		if hmac.Equal([]byte(signature), expected) {
			return nil
		}
	}

	return fmt.Errorf("%w: no matching signature", ErrAuthentication)
}

// Authenticate verifies the payload and parses it into an event
func (a *Authenticator) Authenticate(payload []byte, h Headers) (Event, error) {
	if err := a.Verify(payload, h); err != nil {
		return nil, err
	}
	return ParseEvent(payload)
}

// Sign returns the signature header value for a payload sent at ts
func (a *Authenticator) Sign(id string, ts time.Time, payload []byte) string {
	return signatureVersion + "," + a.sign(id, strconv.FormatInt(ts.Unix(), 10), payload)
}

func (a *Authenticator) sign(id, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(id))
	mac.Write([]byte{'.'})
	mac.Write([]byte(timestamp))
	mac.Write([]byte{'.'})
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
