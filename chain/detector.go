package chain

import (
	"context"
	"sync"

	"github.com/crytic/solink/logging"
	"github.com/crytic/solink/logging/colors"
	"github.com/crytic/solink/utils"
)

// Detector detects the chain behind JSON-RPC endpoints and memoizes the results. When created with a cache directory,
// results for public networks are also persisted across runs. Development networks are never persisted, as the node
// behind a local endpoint may change between runs.
type Detector struct {
	// Events defines the event system for the Detector.
	Events DetectorEvents

	logger *logging.Logger

	memoLock sync.Mutex
	memo     map[string]*Chain

	cache *persistentChainCache
}

// NewDetector creates a Detector. If cacheDirectory is non-empty, detection results are persisted in it.
func NewDetector(cacheDirectory string) (*Detector, error) {
	d := &Detector{
		logger: logging.GlobalLogger.NewSubLogger("module", logging.CHAIN_SERVICE),
		memo:   make(map[string]*Chain),
	}

	if cacheDirectory != "" {
		cache, err := newPersistentChainCache(cacheDirectory)
		if err != nil {
			return nil, err
		}
		d.cache = cache
	}
	return d, nil
}

// Detect connects to the endpoint and returns the chain it serves.
func (d *Detector) Detect(ctx context.Context, endpoint string) (*Chain, error) {
	if c, source, ok := d.lookup(endpoint); ok {
		return d.detected(endpoint, c, source)
	}

	if utils.CheckContextDone(ctx) {
		return nil, ctx.Err()
	}
	client, err := DialProvider(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return d.DetectWithProvider(ctx, endpoint, client)
}

// DetectWithProvider returns the chain served by provider, using endpoint as the memoization key.
func (d *Detector) DetectWithProvider(ctx context.Context, endpoint string, provider Provider) (*Chain, error) {
	if c, source, ok := d.lookup(endpoint); ok {
		return d.detected(endpoint, c, source)
	}

	c, err := GetChain(ctx, provider)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("Detected chain ", colors.Bold, c.Name, colors.Reset, " (", c.ID, ")")

	d.memoLock.Lock()
	d.memo[endpoint] = c
	d.memoLock.Unlock()

	if d.cache != nil && !c.Development {
		if err := d.cache.put(endpoint, c); err != nil {
			d.logger.Warn("Failed to persist the detected chain", err)
		}
	}
	return d.detected(endpoint, c, DetectionSourceNode)
}

// detected publishes a ChainDetectedEvent and returns the chain, or the error of a failing subscriber.
func (d *Detector) detected(endpoint string, c *Chain, source DetectionSource) (*Chain, error) {
	err := d.Events.ChainDetected.Publish(ChainDetectedEvent{
		Endpoint: endpoint,
		Chain:    c,
		Source:   source,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// lookup returns a previously detected chain for endpoint from memory or the persistent cache.
func (d *Detector) lookup(endpoint string) (*Chain, DetectionSource, bool) {
	d.memoLock.Lock()
	c, ok := d.memo[endpoint]
	d.memoLock.Unlock()
	if ok {
		return c, DetectionSourceMemory, true
	}

	if d.cache == nil {
		return nil, "", false
	}
	c, ok, err := d.cache.get(endpoint)
	if err != nil {
		d.logger.Warn("Failed to read the chain cache", err)
		return nil, "", false
	}
	if ok {
		d.logger.Debug("Using cached chain ", colors.Bold, c.Name, colors.Reset)
		d.memoLock.Lock()
		d.memo[endpoint] = c
		d.memoLock.Unlock()
	}
	return c, DetectionSourceCache, ok
}

// Close releases the persistent cache, if any.
func (d *Detector) Close() error {
	if d.cache == nil {
		return nil
	}
	return d.cache.close()
}
