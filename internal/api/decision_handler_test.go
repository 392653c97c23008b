package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	created := s.createDecision(map[string]any{
		"title":            "  Go to the gym  ",
		"prediction":       "I will feel energized",
		"category":         "Health",
		"tags":             []string{"fitness", " ", "fitness"},
		"reminder_days":    1,
		"predicted_energy": 2,
	})
	assert.Equal(t, "Go to the gym", created.Title)
	assert.Equal(t, []string{"fitness"}, created.Tags)
	require.NotNil(t, created.ReminderAt)
	assert.Equal(t, testNow.AddDate(0, 0, 1), created.ReminderAt.UTC())
	assert.Equal(t, "Check-in in 24h", created.CheckInLabel)
	assert.Nil(t, created.Accuracy)
	assert.Empty(t, created.Indicator)

	path := fmt.Sprintf("/api/decisions/%d", created.ID)

	var got decisionJSON
	decode(t, s.do(http.MethodGet, path, nil), http.StatusOK, &got)
	assert.Equal(t, created.ID, got.ID)

	var updated decisionJSON
	decode(t, s.do(http.MethodPut, path, map[string]any{
		"title":            "Go to the gym early",
		"category":         "Health",
		"predicted_energy": 2,
	}), http.StatusOK, &updated)
	assert.Equal(t, "Go to the gym early", updated.Title)
	assert.Equal(t, created.ReminderAt.UTC(), updated.ReminderAt.UTC())

	var completed decisionJSON
	decode(t, s.do(http.MethodPost, path+"/outcome", map[string]any{
		"outcome":       "Felt great",
		"actual_energy": 2,
		"followed":      true,
	}), http.StatusOK, &completed)
	require.NotNil(t, completed.Accuracy)
	assert.InDelta(t, 100.0, *completed.Accuracy, 0.001)
	assert.Equal(t, "good", completed.Indicator)
	require.NotNil(t, completed.Followed)
	assert.True(t, *completed.Followed)
	assert.Empty(t, completed.CheckInLabel)

	resp := s.do(http.MethodDelete, path, nil)
	decode(t, resp, http.StatusNoContent, nil)

	assert.Equal(t, "Decision not found", errorMessage(t, s.do(http.MethodGet, path, nil), http.StatusNotFound))
	assert.Equal(t, "Decision not found", errorMessage(t, s.do(http.MethodDelete, path, nil), http.StatusNotFound))
}

func TestDecisionErrors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	d := s.createDecision(map[string]any{"title": "Read a book", "category": "Study"})

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name: "blank title", method: http.MethodPost, path: "/api/decisions",
			body: map[string]any{"title": "   "}, wantStatus: http.StatusBadRequest,
			wantError: "Invalid title: cannot be blank",
		},
		{
			name: "unknown category", method: http.MethodPost, path: "/api/decisions",
			body: map[string]any{"title": "x", "category": "Hobbies"}, wantStatus: http.StatusBadRequest,
			wantError: "Invalid category: is not a known category",
		},
		{
			name: "energy out of range", method: http.MethodPost, path: "/api/decisions",
			body: map[string]any{"title": "x", "predicted_energy": 9}, wantStatus: http.StatusBadRequest,
			wantError: "Invalid predicted_energy: is out of range",
		},
		{
			name: "unknown template", method: http.MethodPost, path: "/api/decisions",
			body: map[string]any{"template_id": "nope"}, wantStatus: http.StatusNotFound,
			wantError: "Template not found",
		},
		{
			name: "non-numeric id", method: http.MethodGet, path: "/api/decisions/abc",
			wantStatus: http.StatusBadRequest, wantError: "Invalid id: has invalid format",
		},
		{
			name: "empty outcome", method: http.MethodPost, path: fmt.Sprintf("/api/decisions/%d/outcome", d.ID),
			body: map[string]any{}, wantStatus: http.StatusBadRequest,
			wantError: "Invalid request: provide at least one outcome value",
		},
		{
			name: "outcome for missing decision", method: http.MethodPost, path: "/api/decisions/9999/outcome",
			body: map[string]any{"outcome": "done"}, wantStatus: http.StatusNotFound,
			wantError: "Decision not found",
		},
		{
			name: "invalid list filter", method: http.MethodGet, path: "/api/decisions?category=Hobbies",
			wantStatus: http.StatusBadRequest, wantError: "Invalid category: is not a known category",
		},
		{
			name: "invalid similar limit", method: http.MethodGet, path: fmt.Sprintf("/api/decisions/%d/similar?limit=0", d.ID),
			wantStatus: http.StatusBadRequest, wantError: "Invalid limit: must be between 1 and 50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantError, errorMessage(t, resp, tt.wantStatus))
		})
	}
}

func TestCreateDecisionFromTemplate(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	d := s.createDecision(map[string]any{"template_id": "skip_gym", "tags": []string{"gym"}})
	assert.Equal(t, "Skip gym workout", d.Title)
	assert.Equal(t, "Health", d.Category)
	assert.Equal(t, []string{"gym"}, d.Tags)
	require.NotNil(t, d.ReminderAt)
	assert.Equal(t, testNow.AddDate(0, 0, 1), d.ReminderAt.UTC())
}

func TestListDecisionsFilters(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	run := s.createDecision(map[string]any{"title": "Morning run", "category": "Health", "tags": []string{"Fitness"}})
	budget := s.createDecision(map[string]any{"title": "Budget review", "category": "Money", "tags": []string{"finance"}})
	s.createDecision(map[string]any{"title": "Untagged thought"})

	decode(t, s.do(http.MethodPost, fmt.Sprintf("/api/decisions/%d/outcome", budget.ID),
		map[string]any{"outcome": "done"}), http.StatusOK, nil)

	tests := []struct {
		name    string
		query   string
		wantIDs []int64
		wantLen int
	}{
		{name: "all", query: "", wantLen: 3},
		{name: "by category", query: "?category=Health", wantIDs: []int64{run.ID}},
		{name: "by tag ignoring case", query: "?tag=fitness", wantIDs: []int64{run.ID}},
		{name: "any of several tags", query: "?tag=fitness,finance", wantLen: 2},
		{name: "completed only", query: "?completed=true", wantIDs: []int64{budget.ID}},
		{name: "date range excludes now", query: "?from=2024-06-01&to=2024-06-10", wantLen: 0},
		{name: "date range includes now", query: "?from=2024-06-01&to=2024-06-11", wantLen: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []decisionJSON
			decode(t, s.do(http.MethodGet, "/api/decisions"+tt.query, nil), http.StatusOK, &got)

			if tt.wantIDs != nil {
				ids := make([]int64, 0, len(got))
				for _, d := range got {
					ids = append(ids, d.ID)
				}
				assert.Equal(t, tt.wantIDs, ids)
				return
			}
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestCategoriesAndTags(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	var categories []string
	decode(t, s.do(http.MethodGet, "/api/categories", nil), http.StatusOK, &categories)
	assert.Empty(t, categories)

	s.createDecision(map[string]any{"title": "Run", "category": "Health", "tags": []string{"outdoor", "cardio"}})
	s.createDecision(map[string]any{"title": "Save", "category": "Money", "tags": []string{"cardio"}})

	decode(t, s.do(http.MethodGet, "/api/categories", nil), http.StatusOK, &categories)
	assert.Equal(t, []string{"Health", "Money"}, categories)

	var tags []string
	decode(t, s.do(http.MethodGet, "/api/tags", nil), http.StatusOK, &tags)
	assert.Equal(t, []string{"cardio", "outdoor"}, tags)
}

func TestSimilarDecisions(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	past := s.createDecision(map[string]any{"title": "morning run by the river", "category": "Health"})
	s.createDecision(map[string]any{"title": "monthly budget review", "category": "Money"})
	target := s.createDecision(map[string]any{"title": "morning run in the park", "category": "Health"})

	// Only decisions with an outcome are candidates.
	var none []decisionJSON
	decode(t, s.do(http.MethodGet, fmt.Sprintf("/api/decisions/%d/similar", target.ID), nil), http.StatusOK, &none)
	assert.Empty(t, none)

	decode(t, s.do(http.MethodPost, fmt.Sprintf("/api/decisions/%d/outcome", past.ID),
		map[string]any{"outcome": "lovely"}), http.StatusOK, nil)

	var similar []decisionJSON
	decode(t, s.do(http.MethodGet, fmt.Sprintf("/api/decisions/%d/similar?limit=3", target.ID), nil), http.StatusOK, &similar)
	require.Len(t, similar, 1)
	assert.Equal(t, past.ID, similar[0].ID)

	assert.Equal(t, "Decision not found",
		errorMessage(t, s.do(http.MethodGet, "/api/decisions/9999/similar", nil), http.StatusNotFound))
}
