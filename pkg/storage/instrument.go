package storage

import (
	"context"
	"time"

	"github.com/matzehuels/tensionlab/pkg/observability"
)

type instrumented struct {
	Backend
	name string
}

// Instrument reports reads and writes on b to the registered storage hooks
// under the given backend name.
func Instrument(name string, b Backend) Backend {
	return &instrumented{Backend: b, name: name}
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := i.Backend.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Storage().OnHit(ctx, i.name)
		} else {
			observability.Storage().OnMiss(ctx, i.name)
		}
	}
	return data, hit, err
}

func (i *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	start := time.Now()
	err := i.Backend.Set(ctx, key, data, ttl)
	observability.Storage().OnWrite(ctx, i.name, len(data), time.Since(start), err)
	return err
}
