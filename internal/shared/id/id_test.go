package id

import (
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{RunPrefix, SessionPrefix, RequestPrefix} {
		t.Run(prefix, func(t *testing.T) {
			id := gen.GenerateWithPrefix(prefix)

			require.True(t, strings.HasPrefix(id, prefix+"_"), id)
			assert.Len(t, strings.TrimPrefix(id, prefix+"_"), 26)
			assert.True(t, IsValid(id))
		})
	}
}

func TestTypedIDs(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewRunID().String(), "run_"))
	assert.True(t, strings.HasPrefix(NewSessionID().String(), "sess_"))
	assert.True(t, strings.HasPrefix(NewRequestID().String(), "req_"))
	assert.NotEqual(t, NewRunID(), NewRunID())
}

func TestMonotonicOrder(t *testing.T) {
	gen := NewGenerator()

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = gen.Generate().String()
	}
	assert.True(t, sort.StringsAreSorted(ids))
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()
	const workers, perWorker = 8, 50

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := gen.GenerateWithPrefix(RunPrefix)
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, err := Timestamp(NewRunID().String())
	require.NoError(t, err)
	assert.True(t, ts.After(before))

	_, err = Timestamp("run_not-a-ulid")
	assert.Error(t, err)
	assert.False(t, IsValid("garbage"))
}
