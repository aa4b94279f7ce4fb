package helpers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		pwd, err := GeneratePassword()
		require.NoError(t, err)
		assert.Len(t, pwd, GeneratedPasswordLength)
		for _, r := range pwd {
			assert.True(t, strings.ContainsRune(PasswordAlphabet, r), "unexpected rune %q", r)
		}
		seen[pwd] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cr3t!?")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cr3t!?", hash)
	assert.True(t, CompareHashAndPassword(hash, "s3cr3t!?"))
	assert.False(t, CompareHashAndPassword(hash, "other"))
}

func TestNormalizeDate(t *testing.T) {
	got, err := NormalizeDate("01/02/2000")
	require.NoError(t, err)
	assert.Equal(t, "2000-02-01", got)
}

func TestNormalizeDate_Rejects(t *testing.T) {
	for _, in := range []string{"2000-02-01", "1/2/2000", "31/02/2000", "01/02/2000 ", ""} {
		_, err := NormalizeDate(in)
		var dfe *DateFormatError
		require.Error(t, err, in)
		assert.True(t, errors.As(err, &dfe), in)
		assert.Equal(t, DayMonthYearLayout, dfe.Layout)
	}
}

func TestChangeDateFormat_CustomLayouts(t *testing.T) {
	got, err := ChangeDateFormat("2000-02-01", ISODateLayout, DayMonthYearLayout)
	require.NoError(t, err)
	assert.Equal(t, "01/02/2000", got)
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), DateOnly(in))
}
