package api

import (
	"net/url"
	"testing"
	"time"

	"github.com/phrazzld/realitycheck-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecisionFilter(t *testing.T) {
	t.Parallel()

	q := url.Values{
		"category":  {"Health"},
		"tag":       {"fitness, outdoor", "fitness"},
		"from":      {"2024-06-01"},
		"to":        {"2024-06-10T12:00:00+02:00"},
		"group_id":  {"7"},
		"completed": {"true"},
	}

	f, err := parseDecisionFilter(q)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryHealth, f.Category)
	assert.Equal(t, []string{"fitness", "outdoor"}, f.Tags)
	require.NotNil(t, f.From)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *f.From)
	require.NotNil(t, f.To)
	assert.Equal(t, time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC), *f.To)
	require.NotNil(t, f.GroupID)
	assert.Equal(t, int64(7), *f.GroupID)
	assert.True(t, f.CompletedOnly)
}

func TestParseDecisionFilterEmpty(t *testing.T) {
	t.Parallel()

	f, err := parseDecisionFilter(url.Values{})
	require.NoError(t, err)
	assert.Empty(t, f.Category)
	assert.Nil(t, f.Tags)
	assert.Nil(t, f.From)
	assert.Nil(t, f.GroupID)
	assert.False(t, f.CompletedOnly)
}

func TestParseDecisionFilterErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     url.Values
		wantField string
		wantErr   error
	}{
		{"unknown category", url.Values{"category": {"Hobbies"}}, "category", domain.ErrInvalidCategory},
		{"bad date", url.Values{"from": {"June 1st"}}, "from", domain.ErrValidation},
		{"bad group", url.Values{"group_id": {"0"}}, "group_id", domain.ErrInvalidID},
		{"bad completed flag", url.Values{"completed": {"maybe"}}, "completed", domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseDecisionFilter(tt.query)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestParseLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 5, false},
		{"1", 1, false},
		{"50", 50, false},
		{"0", 0, true},
		{"51", 0, true},
		{"ten", 0, true},
	}

	for _, tt := range tests {
		t.Run("limit="+tt.raw, func(t *testing.T) {
			t.Parallel()
			q := url.Values{}
			if tt.raw != "" {
				q.Set("limit", tt.raw)
			}
			got, err := parseLimit(q, 5)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
