package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorWrap(t *testing.T) {
	sentinel := New("something failed")
	cause := fmt.Errorf("root cause")

	wrapped := sentinel.Wrap(cause)
	require.EqualError(t, wrapped, "something failed")
	require.True(t, Is(wrapped, sentinel))
	require.True(t, Is(wrapped, cause))
	require.Equal(t, cause, wrapped.Unwrap())

	// the sentinel itself is left untouched
	require.Nil(t, sentinel.Unwrap())
}

func TestErrorIs(t *testing.T) {
	sentinel := New("oops")
	other := New("oops")

	require.True(t, Is(sentinel, sentinel))
	require.False(t, Is(sentinel, other))
	require.False(t, Is(sentinel.Wrap(fmt.Errorf("cause")), other))
}

func TestErrorAs(t *testing.T) {
	sentinel := New("typed")
	var target *Error
	require.True(t, As(sentinel.Wrap(fmt.Errorf("cause")), &target))
	require.EqualError(t, target, "typed")
}
