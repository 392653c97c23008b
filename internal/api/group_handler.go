package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/realitycheck-api/internal/api/shared"
	"github.com/phrazzld/realitycheck-api/internal/service"
)

// GroupHandler handles decision group requests.
type GroupHandler struct {
	groups service.GroupService
	logger *slog.Logger
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groups service.GroupService, logger *slog.Logger) *GroupHandler {
	if groups == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("group service cannot be nil for GroupHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupHandler{
		groups: groups,
		logger: logger.With(slog.String("component", "group_handler")),
	}
}

// ListGroups handles GET /api/groups.
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list groups")
		return
	}
	if groups == nil {
		groups = []service.GroupSummary{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, groups)
}

// CreateGroup handles POST /api/groups.
func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	group, err := h.groups.Create(r.Context(), req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create group")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, group)
}

// UpdateGroup handles PUT /api/groups/{id}.
func (h *GroupHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	var req GroupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	group, err := h.groups.Update(r.Context(), id, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update group")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, group)
}

// DeleteGroup handles DELETE /api/groups/{id}. Decisions in the group are kept.
func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.groups.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete group")
		return
	}
	shared.RespondNoContent(w)
}
