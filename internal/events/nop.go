package events

import "context"

// NopBackend discards published messages. It is the default when no broker
// is configured, so the server runs with no external dependencies.
type NopBackend struct{}

func NewNopBackend() *NopBackend {
	return &NopBackend{}
}

func (*NopBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return "", nil
}

func (*NopBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (*NopBackend) Close() error {
	return nil
}
