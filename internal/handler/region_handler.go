package handler

import (
	"net/http"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/port"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Region lookups (Indonesian wilayah)
// ============================================================

func provincesHandler(regions port.RegionFetcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/regions/provinces")
		defer span.End()

		list, err := regions.Provinces(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeRegions(w, list)
	}
}

func regenciesHandler(regions port.RegionFetcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/regions/provinces/{provinceId}/regencies")
		defer span.End()

		list, err := regions.Regencies(ctx, chi.URLParam(r, "provinceId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeRegions(w, list)
	}
}

func districtsHandler(regions port.RegionFetcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/regions/regencies/{regencyId}/districts")
		defer span.End()

		list, err := regions.Districts(ctx, chi.URLParam(r, "regencyId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeRegions(w, list)
	}
}

func villagesHandler(regions port.RegionFetcher, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/regions/districts/{districtId}/villages")
		defer span.End()

		list, err := regions.Villages(ctx, chi.URLParam(r, "districtId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeRegions(w, list)
	}
}

func writeRegions(w http.ResponseWriter, list []domain.Region) {
	if list == nil {
		list = []domain.Region{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"regions": list})
}
