package monitoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/updoot/updoot-be/internal/storage"
)

// fakePosts stubs just the reconciliation entry point.
type fakePosts struct {
	storage.PostRepository
	calls    int
	repaired int64
	err      error
}

func (f *fakePosts) ReconcilePoints(context.Context) (int64, error) {
	f.calls++
	return f.repaired, f.err
}

func TestReconcileOnce_SweepsLedger(t *testing.T) {
	posts := &fakePosts{repaired: 2}
	r := NewReconciler(posts)

	r.ReconcileOnce()
	assert.Equal(t, 1, posts.calls)

	r.ReconcileOnce()
	assert.Equal(t, 2, posts.calls)
}

func TestReconcileOnce_SurvivesStorageErrors(t *testing.T) {
	posts := &fakePosts{err: errors.New("db down")}
	r := NewReconciler(posts)

	// Must not panic; the next sweep still runs.
	r.ReconcileOnce()
	r.ReconcileOnce()
	assert.Equal(t, 2, posts.calls)
}
