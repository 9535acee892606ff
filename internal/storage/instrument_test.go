package storage

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu  sync.Mutex
	ops []string
	bad []string
}

func (r *recordingObserver) ObserveStorageOp(op string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
	if err != nil {
		r.bad = append(r.bad, op)
	}
}

func TestInstrument_ReportsEveryCall(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	s := Instrument(NewMemoryStorage("http://cdn"), obs)

	require.NoError(t, s.Upload(ctx, "a.txt", strings.NewReader("a"), 1, ""))
	_, err := s.List(ctx, "")
	require.NoError(t, err)
	require.NoError(t, s.Rename(ctx, "a.txt", "b.txt"))
	require.NoError(t, s.Delete(ctx, "b.txt"))
	assert.Error(t, s.Delete(ctx, "b.txt"))

	assert.Equal(t, []string{"upload", "list", "rename", "delete", "delete"}, obs.ops)
	assert.Equal(t, []string{"delete"}, obs.bad)
	assert.Equal(t, "http://cdn/x", s.PublicURL("x"))
}
