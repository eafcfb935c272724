package vectorstore

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]{3,63}$`)

func TestCollectionName_AlwaysValid(t *testing.T) {
	tests := []struct {
		name   string
		userID string
	}{
		{"uuid", "3f2b8a44-0b14-4a9e-9c1e-2f1a6d7e8b90"},
		{"plain", "alice"},
		{"empty", ""},
		{"spaces and punctuation", "user 123!"},
		{"leading symbols", "!!weird##"},
		{"unicode", "ütf-8-ıd"},
		{"very long", "x123456789012345678901234567890123456789012345678901234567890123456789"},
		{"trailing dash run", "abc------"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollectionName(tt.userID)
			assert.Regexp(t, validName, got)
			assert.True(t, isAlnum(rune(got[0])), "must start alphanumeric: %q", got)
			assert.True(t, isAlnum(rune(got[len(got)-1])), "must end alphanumeric: %q", got)
		})
	}
}

func TestCollectionName_Deterministic(t *testing.T) {
	first := CollectionName("user 123!")
	for i := 0; i < 10; i++ {
		require.Equal(t, first, CollectionName("user 123!"))
	}
}

func TestCollectionName_DistinctUsersStayDistinct(t *testing.T) {
	assert.NotEqual(t, CollectionName("alice"), CollectionName("bob"))
}

func TestEntryID(t *testing.T) {
	assert.Equal(t, "42_0", EntryID(42, 0))
	assert.Equal(t, "42_17", EntryID(42, 17))
}
