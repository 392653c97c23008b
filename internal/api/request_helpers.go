package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/realitycheck-api/internal/api/shared"
	"github.com/phrazzld/realitycheck-api/internal/domain"
	"github.com/phrazzld/realitycheck-api/internal/platform/logger"
	"github.com/phrazzld/realitycheck-api/internal/store"
)

// maxListLimit caps limit query parameters.
const maxListLimit = 50

// getPathID extracts a positive int64 ID from the URL path parameter paramName.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrInvalidID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// handlePathID is getPathID that writes the error response itself. It
// reports false when a response has been written.
func handlePathID(w http.ResponseWriter, r *http.Request, paramName string) (int64, bool) {
	id, err := getPathID(r, paramName)
	if err != nil {
		logger.FromContext(r.Context()).Debug("invalid path parameter",
			"param_name", paramName,
			"value", chi.URLParam(r, paramName))
		HandleAPIError(w, r, err, "")
		return 0, false
	}
	return id, true
}

// decodeAndValidate decodes the JSON body into v and validates it, writing a
// 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// parseDecisionFilter reads the decision list query parameters:
// category, tag (repeatable or comma-separated), from, to, group_id and completed.
func parseDecisionFilter(q url.Values) (store.DecisionFilter, error) {
	var f store.DecisionFilter

	if c := strings.TrimSpace(q.Get("category")); c != "" {
		f.Category = domain.Category(c)
		if !f.Category.IsValid() {
			return f, domain.NewValidationError("category", "is not a known category", domain.ErrInvalidCategory)
		}
	}

	var tags []string
	for _, v := range q["tag"] {
		tags = append(tags, strings.Split(v, ",")...)
	}
	if tags = domain.NormalizeTags(tags); len(tags) > 0 {
		f.Tags = tags
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		raw := strings.TrimSpace(q.Get(p.name))
		if raw == "" {
			continue
		}
		t, err := parseTimeParam(raw)
		if err != nil {
			return f, domain.NewValidationError(p.name, "must be RFC 3339 or YYYY-MM-DD", domain.ErrValidation)
		}
		*p.dst = &t
	}

	if raw := strings.TrimSpace(q.Get("group_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, domain.NewValidationError("group_id", "has invalid format", domain.ErrInvalidID)
		}
		f.GroupID = &id
	}

	if raw := strings.TrimSpace(q.Get("completed")); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return f, domain.NewValidationError("completed", "must be true or false", domain.ErrValidation)
		}
		f.CompletedOnly = completed
	}

	return f, nil
}

func parseTimeParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, raw)
}

// parseLimit reads the limit query parameter, falling back to def when absent.
func parseLimit(q url.Values, def int) (int, error) {
	raw := strings.TrimSpace(q.Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxListLimit {
		return 0, domain.NewValidationError("limit", "must be between 1 and 50", domain.ErrOutOfRange)
	}
	return n, nil
}
