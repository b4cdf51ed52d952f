//go:build !linux && !darwin

package netstat

import "context"

func snapshot(ctx context.Context) ([]Binding, error) {
	return nil, ErrUnsupported
}
