package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	maxJWKSResponseSize  = 1 << 20
	minUnknownKidRefresh = time.Minute

	loadFlight       = "load"
	unknownKidFlight = "unknown-kid"
)

var errRefreshThrottled = errors.New("key set refresh throttled")

// secretKeyTransport authenticates JWKS requests with the provider secret key
type secretKeyTransport struct {
	secretKey string
	base      http.RoundTripper
}

func (t *secretKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.secretKey)
	return t.base.RoundTrip(req)
}

func withSecretKey(client *http.Client, secretKey string) *http.Client {
	if secretKey == "" {
		return client
	}
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	authed := *client
	authed.Transport = &secretKeyTransport{secretKey: secretKey, base: base}
	return &authed
}

// keySet caches the provider's JWK Set as a keyfunc.Keyfunc. Fetches run
// detached from the requesting context and are shared by concurrent callers.
type keySet struct {
	url     string
	client  *http.Client
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time

	unknownKid *rate.Limiter

	mu        sync.RWMutex
	keyfunc   keyfunc.Keyfunc
	fetchedAt time.Time

	group singleflight.Group
}

func newKeySet(url string, client *http.Client, ttl, timeout time.Duration) *keySet {
	return &keySet{
		url:        url,
		client:     client,
		ttl:        ttl,
		timeout:    timeout,
		now:        time.Now,
		unknownKid: rate.NewLimiter(rate.Every(minUnknownKidRefresh), 1),
	}
}

// jwtKeyfunc resolves the verification key for a token, refreshing the set
// when it is stale or, at most once per minUnknownKidRefresh, when the kid is unknown
func (s *keySet) jwtKeyfunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		kf, err := s.current(ctx)
		if err != nil {
			return nil, err
		}

		key, err := kf.Keyfunc(token)
		if err == nil {
			return key, nil
		}
		if !errors.Is(err, jwkset.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}

		kf, err = s.refresh(ctx, unknownKidFlight)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown key id", ErrTokenInvalid)
		}

		key, err = kf.Keyfunc(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
		return key, nil
	}
}

// current returns the cached keys, serving stale ones when a refresh fails
func (s *keySet) current(ctx context.Context) (keyfunc.Keyfunc, error) {
	s.mu.RLock()
	kf, fetchedAt := s.keyfunc, s.fetchedAt
	s.mu.RUnlock()

	if kf != nil && s.now().Sub(fetchedAt) < s.ttl {
		return kf, nil
	}

	fresh, err := s.refresh(ctx, loadFlight)
	if err != nil {
		if kf != nil {
			return kf, nil
		}
		return nil, err
	}
	return fresh, nil
}

func (s *keySet) refresh(ctx context.Context, flight string) (keyfunc.Keyfunc, error) {
	ch := s.group.DoChan(flight, func() (interface{}, error) {
		if flight == unknownKidFlight && !s.unknownKid.AllowN(s.now(), 1) {
			return nil, errRefreshThrottled
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		return s.load(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(keyfunc.Keyfunc), nil
	}
}

func (s *keySet) load(ctx context.Context) (keyfunc.Keyfunc, error) {
	raw, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	var set jwkset.JWKSMarshal
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JWKS: %v", ErrProviderUnavailable, err)
	}
	if len(set.Keys) == 0 {
		return nil, fmt.Errorf("%w: JWKS contains no keys", ErrProviderUnavailable)
	}

	kf, err := keyfunc.NewJWKSetJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load JWKS: %v", ErrProviderUnavailable, err)
	}

	s.mu.Lock()
	s.keyfunc = kf
	s.fetchedAt = s.now()
	s.mu.Unlock()

	return kf, nil
}

func (s *keySet) fetch(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create JWKS request: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: JWKS request failed: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: JWKS endpoint returned status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read JWKS: %v", ErrProviderUnavailable, err)
	}
	return raw, nil
}
