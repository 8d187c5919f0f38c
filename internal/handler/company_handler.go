package handler

import (
	"encoding/json"
	"net/http"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Company profile
// ============================================================

func getCompanyHandler(svc *service.CompanyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/company")
		defer span.End()

		settings, err := svc.Get(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		// settings is null until the owner saves a profile.
		writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
	}
}

func updateCompanyHandler(svc *service.CompanyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/company")
		defer span.End()

		var in domain.CompanySettingsInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		settings, err := svc.Upsert(ctx, UserIDFromContext(ctx), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	}
}
