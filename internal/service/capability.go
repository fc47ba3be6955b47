package service

import (
	"context"
	"log"
	"sync"
)

// Tier identifies which search backend a query will run against.
type Tier string

const (
	TierUnknown  Tier = "unknown"
	TierAdvanced Tier = "advanced"
	TierFallback Tier = "fallback"
)

// CapabilityProbe issues a minimal, side-effect-free query against the
// advanced search backend. Any error means the backend is unusable.
type CapabilityProbe interface {
	ProbeIndexed(ctx context.Context) error
}

// CapabilityProber resolves the search tier once per process lifetime. The
// first call runs the probe; every later call is a read of the cached
// verdict. A probe failure pins the process to the fallback tier permanently:
// there is no re-probing after a transient outage.
type CapabilityProber struct {
	probe CapabilityProbe
	once  sync.Once
	tier  Tier
}

func NewCapabilityProber(probe CapabilityProbe) *CapabilityProber {
	return &CapabilityProber{probe: probe, tier: TierUnknown}
}

// NewStaticCapability returns a prober pinned to the given tier without ever
// probing. Used by tests and the CAMPUSHUB_SEARCH_TIER override.
func NewStaticCapability(tier Tier) *CapabilityProber {
	p := &CapabilityProber{tier: tier}
	p.once.Do(func() {})
	return p
}

// EnsureCapability resolves and returns the tier. It never returns an error:
// probe failures are interpreted as fallback.
func (p *CapabilityProber) EnsureCapability(ctx context.Context) Tier {
	p.once.Do(func() {
		if err := p.probe.ProbeIndexed(ctx); err != nil {
			p.tier = TierFallback
			log.Printf("search: advanced tier unavailable, using fallback queries: %v", err)
			return
		}
		p.tier = TierAdvanced
		log.Println("search: advanced tier available")
	})
	return p.tier
}
