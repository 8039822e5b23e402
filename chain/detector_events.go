package chain

import "github.com/crytic/solink/events"

// DetectorEvents defines event emitters for a Detector.
type DetectorEvents struct {
	// ChainDetected emits events for every chain returned by the Detector, whether it was queried from the node or
	// served from a cache.
	ChainDetected events.EventEmitter[ChainDetectedEvent]
}

// DetectionSource describes where a Detector obtained a chain from.
type DetectionSource string

const (
	// DetectionSourceNode indicates the chain was detected by querying the node.
	DetectionSourceNode DetectionSource = "node"
	// DetectionSourceMemory indicates the chain was detected earlier during this run.
	DetectionSourceMemory DetectionSource = "memory"
	// DetectionSourceCache indicates the chain was read from the persistent cache.
	DetectionSourceCache DetectionSource = "cache"
)

// ChainDetectedEvent describes an event where a Detector returned a chain for an endpoint.
type ChainDetectedEvent struct {
	// Endpoint refers to the JSON-RPC endpoint the chain was detected for.
	Endpoint string

	// Chain refers to the detected chain.
	Chain *Chain

	// Source describes where the chain was obtained from.
	Source DetectionSource
}
