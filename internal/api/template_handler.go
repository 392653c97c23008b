package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/realitycheck-api/internal/api/shared"
	"github.com/phrazzld/realitycheck-api/internal/domain"
	"github.com/phrazzld/realitycheck-api/internal/service"
)

// ListTemplates handles GET /api/templates. An optional category query
// parameter narrows the catalogue.
func ListTemplates(w http.ResponseWriter, r *http.Request) {
	category := domain.Category(strings.TrimSpace(r.URL.Query().Get("category")))
	if category == "" {
		shared.RespondWithJSON(w, r, http.StatusOK, domain.Templates())
		return
	}
	if !category.IsValid() {
		HandleAPIError(w, r, domain.NewValidationError("category", "is not a known category", domain.ErrInvalidCategory), "")
		return
	}

	templates := domain.TemplatesByCategory(category)
	if templates == nil {
		templates = []domain.DecisionTemplate{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, templates)
}

// GetTemplate handles GET /api/templates/{id}.
func GetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, ok := domain.TemplateByID(chi.URLParam(r, "id"))
	if !ok {
		HandleAPIError(w, r, service.ErrTemplateNotFound, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tmpl)
}
