// Package tiered fronts a slower provider with a faster one.
//
// The usual arrangement is a local store in front of the networked store:
// reads are served from process memory when possible and writes reach Redis
// through a write policy. The front copy may be stale for up to its TTL after
// another process changes the back store; cross-process invalidation is not
// attempted.
package tiered

import (
	"context"
	"io"
	"time"

	"github.com/apex/log"

	"github.com/krisalay/cacheprovider/api"
	"github.com/krisalay/cacheprovider/writepolicy"
)

var _ api.Provider = (*Provider)(nil)

// Provider combines a front and a back provider.
type Provider struct {
	front  api.Provider
	back   api.Provider
	policy writepolicy.WritePolicy

	// frontTTL is used when a back-store hit is copied into the front.
	frontTTL time.Duration
}

// New builds a tiered provider. A nil policy means write-through to back.
// frontTTL <= 0 lets the front store apply its default TTL.
func New(front, back api.Provider, policy writepolicy.WritePolicy, frontTTL time.Duration) *Provider {
	if policy == nil {
		policy = writepolicy.NewWriteThroughPolicy(back)
	}
	return &Provider{front: front, back: back, policy: policy, frontTTL: frontTTL}
}

// Policy returns the write policy forwarding to the back tier.
func (p *Provider) Policy() writepolicy.WritePolicy { return p.policy }

// Get reads the front, then the back. A back hit is copied to the front.
func (p *Provider) Get(ctx context.Context, key string) (any, bool, error) {
	if v, ok, err := p.front.Get(ctx, key); err != nil || ok {
		return v, ok, err
	}

	v, ok, err := p.back.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	if err := p.front.Set(ctx, key, v, p.frontTTL); err != nil {
		log.WithError(err).WithField("key", key).Warn("failed to populate front cache")
	}
	return v, true, nil
}

// RefreshFront copies the back tier's current value for key into the front.
// A key the back tier no longer has is dropped from the front.
func (p *Provider) RefreshFront(ctx context.Context, key string) error {
	v, ok, err := p.back.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return p.front.Del(ctx, key)
	}
	return p.front.Set(ctx, key, v, p.frontTTL)
}

// Set writes the front, then forwards through the write policy.
func (p *Provider) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	frontTTL := ttl
	if p.frontTTL > 0 && (ttl <= 0 || p.frontTTL < ttl) {
		frontTTL = p.frontTTL
	}
	if err := p.front.Set(ctx, key, value, frontTTL); err != nil {
		return err
	}
	return p.policy.OnWrite(ctx, key, value, ttl)
}

// Del removes key from the back tier, then the front.
func (p *Provider) Del(ctx context.Context, key string) error {
	if err := p.back.Del(ctx, key); err != nil {
		return err
	}
	return p.front.Del(ctx, key)
}

// Has checks the front, then the back.
func (p *Provider) Has(ctx context.Context, key string) (bool, error) {
	if ok, err := p.front.Has(ctx, key); err != nil || ok {
		return ok, err
	}
	return p.back.Has(ctx, key)
}

func (p *Provider) Clear(ctx context.Context) error {
	if err := p.back.Clear(ctx); err != nil {
		return err
	}
	return p.front.Clear(ctx)
}

func (p *Provider) InvalidatePattern(ctx context.Context, pattern string) error {
	if err := p.back.InvalidatePattern(ctx, pattern); err != nil {
		return err
	}
	return p.front.InvalidatePattern(ctx, pattern)
}

// Close flushes the write policy, then closes either tier that holds
// resources.
func (p *Provider) Close() error {
	p.policy.Close()

	var firstErr error
	for _, tier := range []api.Provider{p.front, p.back} {
		if c, ok := tier.(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
