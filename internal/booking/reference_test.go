package booking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		ref, err := NewReference()
		require.NoError(t, err)
		assert.Len(t, ref, ReferenceLength)
		for _, r := range ref {
			assert.True(t, strings.ContainsRune(referenceAlphabet, r),
				"reference %q contains %q outside the alphabet", ref, r)
		}
		seen[ref] = struct{}{}
	}
	// 50 draws from a 32^8 space should never repeat.
	assert.Len(t, seen, 50)
}
