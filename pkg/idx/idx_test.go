package idx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/memo/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.NotEmpty(t, id.String())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "   ", "not-a-ulid", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3Z"} {
		_, err := idx.Parse(s)
		require.ErrorIs(t, err, idx.ErrInvalid, s)
	}
}

func TestMonotonic(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	a := idx.NewAt(tm)
	b := idx.NewAt(tm)

	// Same millisecond still sorts in issue order.
	require.Less(t, a.String(), b.String())
}

func TestFromHeader(t *testing.T) {
	given := "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV"
	require.Equal(t, idx.ID(given), idx.FromHeader(given))

	generated := idx.FromHeader("<script>")
	require.NotEqual(t, idx.ID("<script>"), generated)
	_, err := idx.Parse(generated.String())
	require.NoError(t, err)
}
