package cvar

import (
	"math"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDefault_SetsOnlyWhenMissing(t *testing.T) {
	s := NewMemory()

	EnsureDefault(s, SaveTime, 120)
	v, ok := s.Get(SaveTime)
	require.True(t, ok)
	assert.Equal(t, 120.0, v)

	s.Set(SaveTime, 30)
	EnsureDefault(s, SaveTime, 120)
	v, _ = s.Get(SaveTime)
	assert.Equal(t, 30.0, v, "existing value must be preserved")
}

func TestSeconds_ReadsFreshValue(t *testing.T) {
	s := NewMemory()
	ttl := Seconds(s, SaveTime, DefaultSaveTime)

	assert.Equal(t, DefaultSaveTime, ttl())

	s.Set(SaveTime, 2.5)
	assert.Equal(t, 2500*time.Millisecond, ttl())

	s.Set(SaveTime, 0)
	assert.Equal(t, time.Duration(0), ttl())
}

func TestSeconds_InvalidValuesFallBack(t *testing.T) {
	s := NewMemory()
	ttl := Seconds(s, SaveTime, DefaultSaveTime)

	for _, v := range []float64{-1, math.NaN(), math.Inf(1)} {
		s.Set(SaveTime, v)
		assert.Equal(t, DefaultSaveTime, ttl(), "value %v", v)
	}
}

func TestSeconds_HugeValuesSaturate(t *testing.T) {
	s := NewMemory()
	ttl := Seconds(s, SaveTime, DefaultSaveTime)

	for _, v := range []float64{9.3e9, 1e11, math.MaxFloat64} {
		s.Set(SaveTime, v)
		assert.Equal(t, time.Duration(math.MaxInt64), ttl(), "value %v", v)
	}

	s.Set(SaveTime, 9e9)
	assert.Equal(t, time.Duration(9e9)*time.Second, ttl())
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/score/vars.json", []byte(`{"_scoreSaveTime": 300, "other": 1}`), 0o644))

	s := NewMemory()
	require.NoError(t, LoadFile(fs, "/etc/score/vars.json", s))

	v, ok := s.Get(SaveTime)
	require.True(t, ok)
	assert.Equal(t, 300.0, v)
}

func TestLoadFile_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewMemory()

	assert.Error(t, LoadFile(fs, "/missing.json", s))

	require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte(`{"_scoreSaveTime": "soon"}`), 0o644))
	assert.Error(t, LoadFile(fs, "/bad.json", s))
}
