package cloud

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Defaults for an unconfigured manager.
const (
	DefaultCacheTTL         = 24 * time.Hour
	DefaultFailureThreshold = 5
	DefaultResetTimeout     = 60 * time.Second
	DefaultFetchTimeout     = 10 * time.Second
)

// placeholderPixel is a 1×1 transparent GIF, returned by the placeholder
// fallback so UI-facing flows always have something to render.
var placeholderPixel, _ = base64.StdEncoding.DecodeString(
	"R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7")

// Options configures a Manager.
type Options struct {
	// Client defaults to an http.Client bounded by FetchTimeout.
	Client *http.Client
	// CacheTTL defaults to 24h.
	CacheTTL time.Duration
	// FailureThreshold is the consecutive-failure count that opens a
	// circuit. Defaults to 5.
	FailureThreshold int
	// ResetTimeout is the cooldown after which an open circuit self-heals.
	// Defaults to 60s.
	ResetTimeout time.Duration
	// FetchTimeout bounds each network fetch. Defaults to 10s.
	FetchTimeout time.Duration
	// Logger defaults to the standard charm logger.
	Logger *log.Logger
}

// Manager fetches byte payloads by URL with a TTL cache, a per-URL circuit
// breaker, and configurable fallback. Safe for concurrent use: the cache and
// circuit tables are guarded by a mutex.
type Manager struct {
	mu       sync.Mutex
	cache    map[string]cacheEntry
	circuits map[string]*circuitState

	client           *http.Client
	cacheTTL         time.Duration
	failureThreshold int
	resetTimeout     time.Duration
	logger           *log.Logger

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewManager builds a manager with the given options.
func NewManager(opts Options) *Manager {
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	cacheTTL := opts.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	threshold := opts.FailureThreshold
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	resetTimeout := opts.ResetTimeout
	if resetTimeout <= 0 {
		resetTimeout = DefaultResetTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Manager{
		cache:            make(map[string]cacheEntry),
		circuits:         make(map[string]*circuitState),
		client:           client,
		cacheTTL:         cacheTTL,
		failureThreshold: threshold,
		resetTimeout:     resetTimeout,
		logger:           logger,
		now:              time.Now,
	}
}

// LoadResource returns the payload for url. Order of attack: fresh cache
// entry, network (unless the circuit is open), then the fallback policy.
func (m *Manager) LoadResource(ctx context.Context, url string, opts LoadOptions) ([]byte, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = m.cacheTTL
	}
	fallback := opts.Fallback
	if fallback == "" {
		fallback = FallbackPlaceholder
	}

	m.mu.Lock()
	if !opts.NoCache {
		if entry, ok := m.cache[url]; ok && m.now().Sub(entry.timestamp) < ttl {
			payload := entry.payload
			m.mu.Unlock()
			return payload, nil
		}
	}
	if m.circuitOpenLocked(url) {
		m.mu.Unlock()
		m.logger.Debug("circuit open, skipping fetch", "url", url)
		return m.applyFallback(url, fallback, ErrCircuitOpen)
	}
	m.mu.Unlock()

	payload, err := m.fetch(ctx, url)
	if err != nil {
		m.recordFailure(url)
		m.logger.Warn("resource fetch failed", "url", url, "err", err)
		return m.applyFallback(url, fallback, err)
	}

	m.mu.Lock()
	if !opts.NoCache {
		m.cache[url] = cacheEntry{payload: payload, timestamp: m.now()}
	}
	delete(m.circuits, url)
	m.mu.Unlock()

	return payload, nil
}

// PrefetchResources loads every URL concurrently with default options.
// Individual failures are logged and swallowed so one bad URL never blocks
// the batch.
func (m *Manager) PrefetchResources(ctx context.Context, urls []string) {
	batch := uuid.NewString()
	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			if _, err := m.LoadResource(ctx, url, LoadOptions{Fallback: FallbackNone}); err != nil {
				m.logger.Warn("prefetch failed", "batch", batch, "url", url, "err", err)
			}
		}(url)
	}
	wg.Wait()
}

// InvalidateCache removes the entry for url.
func (m *Manager) InvalidateCache(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, url)
}

// InvalidateAll clears the whole cache.
func (m *Manager) InvalidateAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]cacheEntry)
}

// LoadResourceManifest fetches and parses {baseURL}/manifest.json. Fetch and
// parse failures propagate directly: the manifest is load-bearing, so there
// is no fallback and no caching.
func (m *Manager) LoadResourceManifest(ctx context.Context, baseURL string) (*ResourceManifest, error) {
	url := strings.TrimSuffix(baseURL, "/") + "/manifest.json"
	payload, err := m.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("loading resource manifest: %w", err)
	}

	var rm ResourceManifest
	if err := json.Unmarshal(payload, &rm); err != nil {
		return nil, fmt.Errorf("parsing resource manifest: %w", err)
	}
	return &rm, nil
}

// fetch performs one bounded HTTP GET.
func (m *Manager) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return payload, nil
}

// applyFallback resolves a failed load according to policy.
func (m *Manager) applyFallback(url string, policy FallbackPolicy, cause error) ([]byte, error) {
	switch policy {
	case FallbackCache:
		m.mu.Lock()
		entry, ok := m.cache[url]
		m.mu.Unlock()
		if ok {
			m.logger.Debug("serving stale cache entry", "url", url)
			return entry.payload, nil
		}
		return nil, fmt.Errorf("%w: %s (no cached copy): %v", ErrResourceUnavailable, url, cause)
	case FallbackPlaceholder:
		return placeholderPixel, nil
	default:
		return nil, fmt.Errorf("%w: %s: %v", ErrResourceUnavailable, url, cause)
	}
}
