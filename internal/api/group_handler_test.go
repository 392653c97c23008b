package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type groupJSON struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Color         string `json:"color"`
	DecisionCount int    `json:"decision_count"`
}

func TestGroupLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	var g groupJSON
	decode(t, s.do(http.MethodPost, "/api/groups", map[string]any{"name": "Fitness plan"}), http.StatusCreated, &g)
	require.NotZero(t, g.ID)
	assert.Equal(t, "#6C5CE7", g.Color)

	assert.Equal(t, "Group name already exists",
		errorMessage(t, s.do(http.MethodPost, "/api/groups", map[string]any{"name": "Fitness plan"}), http.StatusConflict))

	d := s.createDecision(map[string]any{"title": "Morning run", "group_id": g.ID})
	require.NotNil(t, d.GroupID)

	var groups []groupJSON
	decode(t, s.do(http.MethodGet, "/api/groups", nil), http.StatusOK, &groups)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].DecisionCount)

	path := fmt.Sprintf("/api/groups/%d", g.ID)
	var updated groupJSON
	decode(t, s.do(http.MethodPut, path, map[string]any{"name": "Fitness", "color": "#00ff00"}), http.StatusOK, &updated)
	assert.Equal(t, "Fitness", updated.Name)
	assert.Equal(t, "#00ff00", updated.Color)

	decode(t, s.do(http.MethodDelete, path, nil), http.StatusNoContent, nil)

	// The decision survives without its group.
	var after decisionJSON
	decode(t, s.do(http.MethodGet, fmt.Sprintf("/api/decisions/%d", d.ID), nil), http.StatusOK, &after)
	assert.Nil(t, after.GroupID)

	assert.Equal(t, "Group not found", errorMessage(t, s.do(http.MethodDelete, path, nil), http.StatusNotFound))
}

func TestGroupErrors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}{
		{"missing name", http.MethodPost, "/api/groups", map[string]any{}, http.StatusBadRequest, "Invalid name: required field"},
		{"bad color", http.MethodPost, "/api/groups", map[string]any{"name": "x", "color": "green"}, http.StatusBadRequest, "Invalid color: validation failed"},
		{"update missing group", http.MethodPut, "/api/groups/42", map[string]any{"name": "x"}, http.StatusNotFound, "Group not found"},
		{"bad id", http.MethodDelete, "/api/groups/-1", nil, http.StatusBadRequest, "Invalid id: has invalid format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantError, errorMessage(t, s.do(tt.method, tt.path, tt.body), tt.wantStatus))
		})
	}
}
