package cloud

import (
	"errors"
	"time"
)

// FallbackPolicy selects what LoadResource returns when the network cannot
// be used (fetch failure or open circuit).
type FallbackPolicy string

const (
	// FallbackPlaceholder returns a fixed 1×1 transparent pixel.
	FallbackPlaceholder FallbackPolicy = "placeholder"
	// FallbackCache returns the most recent cached payload, stale or not.
	FallbackCache FallbackPolicy = "cache"
	// FallbackNone surfaces the failure to the caller.
	FallbackNone FallbackPolicy = "none"
)

// ErrResourceUnavailable is returned when a resource cannot be fetched and
// no fallback applies.
var ErrResourceUnavailable = errors.New("resource unavailable")

// ErrCircuitOpen is the recorded cause when the per-URL circuit breaker
// short-circuits a fetch.
var ErrCircuitOpen = errors.New("circuit open: endpoint is failing")

// ResourceReference describes one cloud asset. References are immutable;
// their lifetime is tied to the manifest that declares them.
type ResourceReference struct {
	ID       string            `json:"id"`
	Filename string            `json:"filename"`
	URL      string            `json:"url"`
	Type     string            `json:"type"`
	Size     int64             `json:"size"`
	Checksum ResourceChecksum  `json:"checksum"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Variants *ResourceVariants `json:"variants,omitempty"`
}

// ResourceChecksum pins a resource's expected content digest.
type ResourceChecksum struct {
	Algorithm string `json:"algorithm"`
	Value     string `json:"value"`
}

// ResourceVariants points at reduced renditions of a resource.
type ResourceVariants struct {
	Thumbnail string `json:"thumbnail,omitempty"`
	Preview   string `json:"preview,omitempty"`
}

// ResourceManifest is the cloud-side manifest.json listing a bucket's assets.
type ResourceManifest struct {
	Version    string              `json:"version"`
	BaseURL    string              `json:"base_url"`
	Resources  []ResourceReference `json:"resources"`
	Pagination *Pagination         `json:"pagination,omitempty"`
	Integrity  ManifestIntegrity   `json:"integrity"`
}

// Pagination carries continuation data for large resource listings.
type Pagination struct {
	NextPage string `json:"next_page,omitempty"`
	Total    int    `json:"total,omitempty"`
}

// ManifestIntegrity stamps a resource manifest.
type ManifestIntegrity struct {
	Checksum  string    `json:"checksum"`
	Timestamp time.Time `json:"timestamp"`
}

// LoadOptions tunes one LoadResource call. The zero value means: use the
// cache with the manager's default TTL, and fall back to a placeholder.
type LoadOptions struct {
	// NoCache bypasses the cache for both lookup and store.
	NoCache bool
	// TTL overrides the manager's cache TTL for this entry.
	TTL time.Duration
	// Fallback defaults to FallbackPlaceholder.
	Fallback FallbackPolicy
}

// cacheEntry is one cached payload. Owned solely by the manager.
type cacheEntry struct {
	payload   []byte
	timestamp time.Time
}

// circuitState tracks consecutive failures for one URL. Owned solely by the
// manager; reset on success or after the reset timeout elapses.
type circuitState struct {
	failureCount    int
	lastFailureTime time.Time
}
