package handler

import (
	"encoding/json"
	"net/http"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Jamaah (pilgrims)
// ============================================================

func listJamaahHandler(svc *service.JamaahService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/jamaah")
		defer span.End()

		page, pageSize := parsePagination(r)
		q := r.URL.Query()
		filter := &domain.JamaahFilter{
			PackageID: q.Get("package_id"),
			Status:    q.Get("status"),
			Search:    q.Get("search"),
			Page:      page,
			PageSize:  pageSize,
		}

		list, err := svc.ListJamaah(ctx, filter)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if list == nil {
			list = []domain.JamaahWithBalance{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"jamaah": list})
	}
}

func getJamaahHandler(svc *service.JamaahService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/jamaah/{jamaahId}")
		defer span.End()

		j, acc, err := svc.GetJamaah(ctx, chi.URLParam(r, "jamaahId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"jamaah": j, "account": acc})
	}
}

func createJamaahHandler(svc *service.JamaahService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/jamaah")
		defer span.End()

		var in domain.JamaahInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		j, err := svc.CreateJamaah(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("jamaah.id", j.ID))
		writeJSON(w, http.StatusCreated, j)
	}
}

func updateJamaahHandler(svc *service.JamaahService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/jamaah/{jamaahId}")
		defer span.End()

		var in domain.JamaahInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		j, err := svc.UpdateJamaah(ctx, chi.URLParam(r, "jamaahId"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, j)
	}
}

func cancelJamaahHandler(svc *service.JamaahService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/jamaah/{jamaahId}/cancel")
		defer span.End()

		var req struct {
			Reason string `json:"reason"`
		}
		// The body is optional; a bare cancel is fine.
		_ = json.NewDecoder(r.Body).Decode(&req)

		j, err := svc.CancelJamaah(ctx, chi.URLParam(r, "jamaahId"), req.Reason)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, j)
	}
}

func deleteJamaahHandler(svc *service.JamaahService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/jamaah/{jamaahId}")
		defer span.End()

		if err := svc.DeleteJamaah(ctx, chi.URLParam(r, "jamaahId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
