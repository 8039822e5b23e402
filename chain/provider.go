package chain

import (
	"context"

	"github.com/crytic/medusa-geth/rpc"
	"github.com/pkg/errors"
)

// Provider describes a JSON-RPC connection to a node. It is satisfied by *rpc.Client.
type Provider interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

var _ Provider = (*rpc.Client)(nil)

// DialProvider connects to the JSON-RPC endpoint at url. The caller is responsible for closing the returned client.
func DialProvider(ctx context.Context, url string) (*rpc.Client, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "could not connect to %s", url)
	}
	return client, nil
}
