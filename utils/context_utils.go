package utils

import "golang.org/x/net/context"

// CheckContextDone checks if a provided context has indicated it is done, and returns a boolean indicating if it is.
// It never blocks.
func CheckContextDone(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
