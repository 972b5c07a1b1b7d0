package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LookupExactName(t *testing.T) {
	s := NewStore()
	happy := Weights{0, 0.25, 0.5, 1}
	s.Put("Happy_01", happy)

	got, err := s.Lookup("Happy_01")
	require.NoError(t, err)
	assert.Equal(t, happy, got)

	_, err = s.Lookup("happy_01")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Lookup("Happy_01 ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_IsolatesCallerSlices(t *testing.T) {
	s := NewStore()
	w := Weights{0.1, 0.2}
	s.Put("m", w)
	w[0] = 0.9

	got, err := s.Lookup("m")
	require.NoError(t, err)
	assert.Equal(t, float32(0.1), got[0])

	got[1] = 0.7
	again, err := s.Lookup("m")
	require.NoError(t, err)
	assert.Equal(t, float32(0.2), again[1])
}

func TestStore_NamesAndDelete(t *testing.T) {
	s := NewStore()
	s.Put("b", Weights{1})
	s.Put("a", Weights{0})
	s.Put("C", Weights{0})

	assert.Equal(t, []string{"C", "a", "b"}, s.Names())
	assert.Equal(t, 3, s.Len())

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	assert.Equal(t, []string{"C", "b"}, s.Names())
}

func TestStore_CloneIsIndependent(t *testing.T) {
	s := NewStore()
	s.Put("shared", Weights{0.5})

	c := s.Clone()
	c.Put("session_only", Weights{1})
	c.Put("shared", Weights{0})

	_, err := s.Lookup("session_only")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.Lookup("shared")
	require.NoError(t, err)
	assert.Equal(t, Weights{0.5}, got)
}
