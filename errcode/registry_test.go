package errcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	a := New(50, 1, "a", "error.a.one", "one")

	assert.Same(t, a, r.Register(a))
	assert.NotPanics(t, func() { r.Register(a) })

	key, ok := r.Lookup(500001)
	assert.True(t, ok)
	assert.Equal(t, "a:error.a.one", key)
}

func TestRegistry_ConflictPanics(t *testing.T) {
	r := NewRegistry()
	r.Register(New(50, 1, "a", "error.a.one", "one"))

	assert.Panics(t, func() {
		r.Register(New(50, 1, "b", "error.b.other", "other"))
	})
}

func TestRegistry_CommonCodesRegistered(t *testing.T) {
	codes := Registered()
	assert.Contains(t, codes, ErrBadRequest.Code())
	assert.Contains(t, codes, ErrInternal.Code())
	assert.IsIncreasing(t, codes)
}
