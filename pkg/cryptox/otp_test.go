package cryptox

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOTP_Range(t *testing.T) {
	for range 200 {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateOTP_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		code, err := GenerateOTP()
		require.NoError(t, err)
		seen[code] = true
	}

	// 50 draws from a 900k space colliding down to a single value would mean
	// the generator is broken.
	require.Greater(t, len(seen), 1)
}
