package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h, err := Hash("s3cret!")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(h, Prefix))

	require.True(t, Verify("s3cret!", h))
	require.False(t, Verify("wrong", h))
}

func TestHashEmptyRejected(t *testing.T) {
	_, err := Hash("")
	require.Error(t, err)
}

// A hash without the scheme marker never verifies, even if the bare bcrypt
// part would match.
func TestVerifyRequiresPrefix(t *testing.T) {
	h, err := Hash("s3cret!")
	require.NoError(t, err)
	bare := strings.TrimPrefix(h, Prefix)
	require.False(t, Verify("s3cret!", bare))
}

func TestPlaceholderUnique(t *testing.T) {
	a, err := Placeholder()
	require.NoError(t, err)
	b, err := Placeholder()
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(a, Prefix))
	require.NotEqual(t, a, b)
	require.False(t, Verify("", a))
	require.False(t, Verify("password", a))
}
