package postgres

import (
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestULIDGenerator_SortsInCreationOrder(t *testing.T) {
	gen := NewULIDGenerator()

	prev := gen.Generate()
	for range 1000 {
		next := gen.Generate()
		require.Less(t, prev, next)
		prev = next
	}
}

func TestULIDGenerator_ConcurrentUnique(t *testing.T) {
	gen := NewULIDGenerator()

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1600)

	for id := range seen {
		_, err := ulid.ParseStrict(id)
		require.NoError(t, err)
		break
	}
}
