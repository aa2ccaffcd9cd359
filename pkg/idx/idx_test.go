package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	a := New()
	b := New()

	require.False(t, a.IsZero())
	require.False(t, b.IsZero())
	require.NotEqual(t, a, b)

	// Monotonic entropy guarantees ordering even within the same millisecond.
	require.Less(t, a.String(), b.String())
}

func TestNewAtEmbedsTimestamp(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	id := NewAt(at)

	require.Equal(t, at, id.Time())
}

func TestParse(t *testing.T) {
	valid := New().String()

	id, err := Parse(valid)
	require.NoError(t, err)
	require.Equal(t, valid, id.String())

	for _, s := range []string{"", "  ", "not-a-ulid", "01ARZ3NDEKTSV4RRFFQ69G5FA"} {
		_, err := Parse(s)
		require.ErrorIs(t, err, ErrInvalid)
	}
}

func TestParseTrimsWhitespace(t *testing.T) {
	valid := New().String()

	id, err := Parse("  " + valid + "  ")
	require.NoError(t, err)
	require.Equal(t, valid, id.String())
}
