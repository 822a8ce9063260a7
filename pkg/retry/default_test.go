package retry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gcserrors "github.com/Akrog/gcs-client/pkg/errors"
)

// resetDefault restores the process default after a test that mutates it.
func resetDefault(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { require.NoError(t, SetDefault(DefaultPolicy())) })
}

// TestDefaultsGetReturnsCopy tests that mutating a returned policy does not
// leak into the slot
func TestDefaultsGetReturnsCopy(t *testing.T) {
	d := NewDefaults()

	p := d.Get()
	p.MaxRetries = 99

	assert.Equal(t, DefaultMaxRetries, d.Get().MaxRetries)
}

// TestDefaultsSet tests replacing and validating the default policy
func TestDefaultsSet(t *testing.T) {
	t.Run("Replaces the policy", func(t *testing.T) {
		d := NewDefaults()
		p, err := NewPolicy(10, 500*time.Millisecond, 8*time.Second, false)
		require.NoError(t, err)

		require.NoError(t, d.Set(p))

		got := d.Get()
		assert.Equal(t, 10, got.MaxRetries)
		assert.Equal(t, 500*time.Millisecond, got.InitialDelay)
	})

	t.Run("Copies on write", func(t *testing.T) {
		d := NewDefaults()
		p := DefaultPolicy()
		require.NoError(t, d.Set(p))

		p.MaxRetries = 42
		assert.Equal(t, DefaultMaxRetries, d.Get().MaxRetries)
	})

	t.Run("Nil disables retries", func(t *testing.T) {
		d := NewDefaults()
		require.NoError(t, d.Set(nil))
		assert.True(t, d.Get().IsDisabled())
	})

	t.Run("Rejects invalid policies", func(t *testing.T) {
		d := NewDefaults()
		err := d.Set(&Policy{MaxRetries: 3, InitialDelay: -time.Second, MaxBackoff: time.Second})
		assert.ErrorIs(t, err, gcserrors.ErrInvalidPolicy)

		// Slot keeps the previous value.
		assert.Equal(t, DefaultMaxRetries, d.Get().MaxRetries)
	})
}

// TestDefaultsSetParams tests the parameter form of Set
func TestDefaultsSetParams(t *testing.T) {
	d := NewDefaults()

	require.NoError(t, d.SetParams(2, time.Second, 4*time.Second, true))
	got := d.Get()
	assert.Equal(t, 2, got.MaxRetries)
	assert.True(t, got.Randomize)

	assert.ErrorIs(t, d.SetParams(-1, time.Second, 4*time.Second, true), gcserrors.ErrInvalidPolicy)
}

// TestProcessDefault tests the package-level slot
func TestProcessDefault(t *testing.T) {
	resetDefault(t)

	require.NoError(t, SetDefaultParams(7, 2*time.Second, 16*time.Second, false))
	got := Default()
	assert.Equal(t, 7, got.MaxRetries)
	assert.Equal(t, 2*time.Second, got.InitialDelay)

	require.NoError(t, SetDefault(nil))
	assert.True(t, Default().IsDisabled())
}

// TestOverrideResolution tests explicit-wins-over-default resolution
func TestOverrideResolution(t *testing.T) {
	d := NewDefaults()

	t.Run("Zero value defers to live default", func(t *testing.T) {
		var ov Override
		assert.False(t, ov.IsExplicit())
		assert.Nil(t, ov.Policy())
		assert.Equal(t, DefaultMaxRetries, ov.ResolveIn(d).MaxRetries)

		// Changing the default is observable through the deferred override.
		require.NoError(t, d.SetParams(1, time.Second, time.Second, false))
		assert.Equal(t, 1, ov.ResolveIn(d).MaxRetries)

		// Disabling the default makes the deferred handle retry zero times.
		require.NoError(t, d.Set(Disabled()))
		assert.True(t, ov.ResolveIn(d).IsDisabled())
	})

	t.Run("Explicit override ignores default changes", func(t *testing.T) {
		p, err := NewPolicy(9, time.Second, 8*time.Second, false)
		require.NoError(t, err)

		ov := Explicit(p)
		assert.True(t, ov.IsExplicit())

		require.NoError(t, d.SetParams(1, time.Second, time.Second, false))
		assert.Equal(t, 9, ov.ResolveIn(d).MaxRetries)
	})

	t.Run("Explicit disabled is distinct from deferred", func(t *testing.T) {
		ov := Explicit(Disabled())
		assert.True(t, ov.IsExplicit())
		assert.True(t, ov.ResolveIn(d).IsDisabled())

		// A generous default does not resurrect retries for it.
		require.NoError(t, d.Set(DefaultPolicy()))
		assert.True(t, ov.ResolveIn(d).IsDisabled())
	})

	t.Run("Explicit nil pins a disabled policy", func(t *testing.T) {
		ov := Explicit(nil)
		assert.True(t, ov.IsExplicit())
		assert.True(t, ov.ResolveIn(d).IsDisabled())
	})

	t.Run("Explicit deep-copies its argument", func(t *testing.T) {
		p := DefaultPolicy()
		ov := Explicit(p)

		p.MaxRetries = 77
		assert.Equal(t, DefaultMaxRetries, ov.ResolveIn(d).MaxRetries)
	})
}

// TestDefaultsConcurrentAccess tests that readers and the writer do not race
func TestDefaultsConcurrentAccess(t *testing.T) {
	d := NewDefaults()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = d.Get()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = d.Set(DefaultPolicy())
			}
		}()
	}
	wg.Wait()

	assert.NotNil(t, d.Get())
}
