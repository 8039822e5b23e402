package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ErrUndetectedDevelopmentNetwork indicates a node reported the development chain id but identified as neither Hardhat
// nor Foundry.
var ErrUndetectedDevelopmentNetwork = errors.New("The chain id corresponds to a development network but we couldn't detect which one.\nPlease report this issue if you're using Hardhat or Foundry.")

// UnknownChainError indicates no supported chain has the chain id reported by a node.
type UnknownChainError struct {
	ChainID uint64
}

// Error returns the error message string, implementing the `error` interface.
func (e *UnknownChainError) Error() string {
	return fmt.Sprintf("No network with chain id %d found", e.ChainID)
}

// AmbiguousChainError indicates several supported chains share the chain id reported by a node.
type AmbiguousChainError struct {
	ChainID  uint64
	Matching []Chain
}

// Error returns the error message string, implementing the `error` interface.
func (e *AmbiguousChainError) Error() string {
	names := make([]string, 0, len(e.Matching))
	for _, c := range e.Matching {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("Multiple networks with chain id %d found. Candidates: %s", e.ChainID, strings.Join(names, ", "))
}

// GetChain queries the node behind provider for its chain id and returns the matching chain. Development nodes sharing
// DevelopmentChainID are told apart by the node-specific methods they expose.
func GetChain(ctx context.Context, provider Provider) (*Chain, error) {
	chainID, err := GetChainID(ctx, provider)
	if err != nil {
		return nil, err
	}

	if IsDevelopmentNetwork(chainID) {
		return getDevelopmentChain(ctx, provider)
	}

	matches := GetChainsByID(chainID)
	if len(matches) == 0 {
		return nil, &UnknownChainError{ChainID: chainID}
	} else if len(matches) > 1 {
		return nil, &AmbiguousChainError{ChainID: chainID, Matching: matches}
	}
	return &matches[0], nil
}

// GetChainID queries eth_chainId and decodes the returned hex quantity.
func GetChainID(ctx context.Context, provider Provider) (uint64, error) {
	var result string
	if err := provider.CallContext(ctx, &result, "eth_chainId"); err != nil {
		return 0, errors.Wrap(err, "could not query the chain id")
	}
	return parseChainID(result)
}

// parseChainID decodes a hex quantity into a chain id. Leading zeros are tolerated.
func parseChainID(quantity string) (uint64, error) {
	digits := strings.TrimLeft(strings.TrimPrefix(strings.TrimPrefix(quantity, "0x"), "0X"), "0")
	if digits == "" {
		digits = "0"
	}

	value, err := uint256.FromHex("0x" + digits)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid chain id %q", quantity)
	}
	if !value.IsUint64() {
		return 0, errors.Errorf("chain id %s does not fit in 64 bits", value.Dec())
	}
	return value.Uint64(), nil
}

// getDevelopmentChain identifies which development node is behind provider.
func getDevelopmentChain(ctx context.Context, provider Provider) (*Chain, error) {
	if supportsMethod(ctx, provider, "hardhat_metadata") {
		hardhat := Hardhat
		return &hardhat, nil
	}
	if supportsMethod(ctx, provider, "anvil_nodeInfo") {
		foundry := Foundry
		return &foundry, nil
	}
	return nil, ErrUndetectedDevelopmentNetwork
}

// supportsMethod indicates whether a call to the parameterless method succeeds.
func supportsMethod(ctx context.Context, provider Provider, method string) bool {
	var result json.RawMessage
	return provider.CallContext(ctx, &result, method) == nil
}
