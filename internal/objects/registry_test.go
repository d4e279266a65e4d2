package objects

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() (*Registry, *fakeScene) {
	scene := &fakeScene{}
	resolver := fakeResolver{
		"Decor/Rock":   &fakeTemplate{name: "Rock"},
		"Decor/Coin":   &fakeTemplate{name: "Coin"},
		"Road/Segment": &fakeTemplate{name: "Segment"},
	}
	return NewRegistry(resolver, scene, zapNop), scene
}

func TestRegistryLoad(t *testing.T) {
	r, _ := newTestRegistry()

	tpl, err := r.Load("Decor/Rock")
	require.NoError(t, err)
	assert.Equal(t, "Rock", tpl.TemplateName())
	assert.True(t, r.Has("Decor/Rock"))

	_, err = r.Load("Decor/Rock")
	assert.ErrorIs(t, err, ErrAlreadyLoaded)

	_, err = r.Load("Decor/Missing")
	assert.ErrorIs(t, err, ErrLoadFailure)
	assert.False(t, r.Has("Decor/Missing"))
}

func TestRegistryCreatePoolValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		size    int
		tpl     Template
		wantErr []error
	}{
		{name: "zero size", key: "Decor/Rock", size: 0, wantErr: []error{ErrInvalidPoolRequest}},
		{name: "negative size", key: "Decor/Rock", size: -2, wantErr: []error{ErrInvalidPoolRequest}},
		{name: "empty key", key: "", size: 3, wantErr: []error{ErrInvalidPoolRequest}},
		{name: "not loaded", key: "Decor/Coin", size: 3, wantErr: []error{ErrInvalidPoolRequest, ErrNotLoaded}},
		{name: "template supplied", key: "Decor/Coin", size: 3, tpl: &fakeTemplate{name: "Coin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRegistry()
			err := r.CreatePool(tt.key, tt.size, tt.tpl)
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				assert.True(t, r.HasPool(tt.key))
				assert.True(t, r.Has(tt.key))
				return
			}
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
			assert.False(t, r.HasPool(tt.key))
		})
	}
}

func TestRegistryCreatePoolTwice(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.Load("Decor/Rock")
	require.NoError(t, err)
	require.NoError(t, r.CreatePool("Decor/Rock", 2, nil))

	err = r.CreatePool("Decor/Rock", 5, nil)
	assert.ErrorIs(t, err, ErrInvalidPoolRequest)
	p, _ := r.Pool("Decor/Rock")
	assert.Equal(t, 2, p.Len())
}

func TestRegistryZeroSizePoolThenAcquire(t *testing.T) {
	r, _ := newTestRegistry()

	err := r.CreatePool("X", 0, nil)
	assert.ErrorIs(t, err, ErrInvalidPoolRequest)
	assert.False(t, r.HasPool("X"))

	_, err = r.Acquire("X", true)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestRegistryAcquireAndRelease(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.Load("Decor/Rock")
	require.NoError(t, err)
	require.NoError(t, r.CreatePool("Decor/Rock", 2, nil))
	p, _ := r.Pool("Decor/Rock")

	inst, err := r.Acquire("Decor/Rock", true)
	require.NoError(t, err)
	assert.Equal(t, "Rock", inst.Name(), "clone suffix is trimmed")
	assert.Equal(t, 1, p.Len())

	key, ok := r.OriginOf(inst)
	require.True(t, ok)
	assert.Equal(t, "Decor/Rock", key)
	assert.True(t, r.HasPoolFor(inst))

	assert.True(t, r.Release(inst))
	assert.Equal(t, 2, p.Len())

	// Second release is reported but does not grow the pool.
	assert.True(t, r.Release(inst))
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 1, p.Stats().TotalRecycled)
}

func TestRegistryAcquireBypassingPool(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.Load("Decor/Rock")
	require.NoError(t, err)
	require.NoError(t, r.CreatePool("Decor/Rock", 1, nil))
	p, _ := r.Pool("Decor/Rock")

	var fresh []Instance
	for range 2 {
		inst, err := r.Acquire("Decor/Rock", false)
		require.NoError(t, err)
		fresh = append(fresh, inst)
	}
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 0, p.Stats().TotalDelivered)

	// The pool did not allocate them, so it will not take them.
	for _, inst := range fresh {
		assert.False(t, r.HasPoolFor(inst))
		assert.False(t, r.Release(inst))
	}
	st := p.Stats()
	assert.Equal(t, 1, st.CurrentCount)
	assert.Zero(t, st.TotalRecycled)
	assert.GreaterOrEqual(t, st.TotalAllocated, st.CurrentCount)
}

func TestRegistryOverflowAllocationsAreReleasable(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.Load("Decor/Rock")
	require.NoError(t, err)
	require.NoError(t, r.CreatePool("Decor/Rock", 1, nil))
	p, _ := r.Pool("Decor/Rock")

	var out []Instance
	for range 3 {
		inst, err := r.Acquire("Decor/Rock", true)
		require.NoError(t, err)
		out = append(out, inst)
	}
	for _, inst := range out {
		assert.True(t, r.Release(inst))
	}
	st := p.Stats()
	assert.Equal(t, 3, st.TotalAllocated)
	assert.Equal(t, 3, st.CurrentCount)
	assert.GreaterOrEqual(t, st.TotalAllocated, st.CurrentCount)
}

func TestRegistryReleaseWithoutPool(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.Load("Decor/Coin")
	require.NoError(t, err)

	inst, err := r.Acquire("Decor/Coin", true)
	require.NoError(t, err)
	assert.False(t, r.HasPoolFor(inst))
	assert.False(t, r.Release(inst))

	_, ok := r.OriginOf(inst)
	assert.False(t, ok)
	assert.False(t, r.Release(&fakeInstance{id: 999}))
	assert.False(t, r.Release(nil))
}

func TestRegistryForgetDropsOrigin(t *testing.T) {
	r, _ := newTestRegistry()
	_, err := r.Load("Decor/Rock")
	require.NoError(t, err)
	require.NoError(t, r.CreatePool("Decor/Rock", 1, nil))

	inst, err := r.Acquire("Decor/Rock", true)
	require.NoError(t, err)
	require.True(t, r.HasPoolFor(inst))

	r.Forget(inst)
	_, ok := r.OriginOf(inst)
	assert.False(t, ok)
	assert.False(t, r.Release(inst))
}

func TestRegistryStatsSortedByKey(t *testing.T) {
	r, _ := newTestRegistry()
	for _, key := range []string{"Road/Segment", "Decor/Rock", "Decor/Coin"} {
		_, err := r.Load(key)
		require.NoError(t, err)
		require.NoError(t, r.CreatePool(key, 1, nil))
	}

	var keys []string
	for _, s := range r.Stats() {
		keys = append(keys, s.Key)
	}
	if diff := cmp.Diff([]string{"Decor/Coin", "Decor/Rock", "Road/Segment"}, keys); diff != "" {
		t.Errorf("Stats() keys mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryResetAndShutdown(t *testing.T) {
	r, scene := newTestRegistry()
	_, err := r.Load("Decor/Rock")
	require.NoError(t, err)
	require.NoError(t, r.CreatePool("Decor/Rock", 3, nil))

	r.Reset()
	assert.Len(t, scene.destroyed, 3)
	assert.False(t, r.Has("Decor/Rock"))
	assert.False(t, r.HasPool("Decor/Rock"))

	_, err = r.Load("Decor/Rock")
	require.NoError(t, err, "registry is usable after Reset")

	r.Shutdown()
	_, err = r.Load("Decor/Coin")
	assert.True(t, errors.Is(err, ErrClosed))
	_, err = r.Acquire("Decor/Rock", true)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, r.CreatePool("Decor/Rock", 1, nil), ErrClosed)
}

func TestTrimClone(t *testing.T) {
	tests := map[string]string{
		"Rock(Clone)":        "Rock",
		"Rock (Clone)":       "Rock",
		"Rock(Clone)(Clone)": "Rock",
		"Rock":               "Rock",
	}
	for in, want := range tests {
		assert.Equal(t, want, trimClone(in), in)
	}
}
