package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	projectdomain "agency-budget-go/internal/domain/project"
)

func projectIDParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

func categoryParam(r *http.Request) (projectdomain.Category, error) {
	return projectdomain.ParseCategory(chi.URLParam(r, "category"))
}
