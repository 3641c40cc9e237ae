package numbering_test

import (
	"testing"

	"github.com/finpost/finpost_app/internal/utils/numbering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "JV-2026-00042", numbering.Format("JV", 2026, 42))
	assert.Equal(t, "INV-2026-00001", numbering.Format("INV", 2026, 1))
	// The numeric part grows past five digits without truncation.
	assert.Equal(t, "JV-2026-123456", numbering.Format("JV", 2026, 123456))
}

func TestParse_RoundTrip(t *testing.T) {
	prefix, year, number, err := numbering.Parse(numbering.Format("JV", 2026, 42))
	require.NoError(t, err)
	assert.Equal(t, "JV", prefix)
	assert.Equal(t, 2026, year)
	assert.Equal(t, int64(42), number)
}

func TestParse_PrefixWithDash(t *testing.T) {
	prefix, year, number, err := numbering.Parse("AP-INV-2026-00007")
	require.NoError(t, err)
	assert.Equal(t, "AP-INV", prefix)
	assert.Equal(t, 2026, year)
	assert.Equal(t, int64(7), number)
}

func TestParse_Malformed(t *testing.T) {
	for _, in := range []string{"", "JV", "JV-2026", "JV-abc-00042", "JV-2026-xyz"} {
		_, _, _, err := numbering.Parse(in)
		assert.Error(t, err, "input %q", in)
	}
}
