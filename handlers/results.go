// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/encuestape/encuestape/cache"
	"github.com/encuestape/encuestape/catalog"
	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/middleware"
	"github.com/encuestape/encuestape/models"
)

type ResultsHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	cache cache.ResultsCache
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config, rc cache.ResultsCache) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg, cache: rc}
}

// GetResultados handles GET /encuestas/{id}/resultados
func (h *ResultsHandler) GetResultados(w http.ResponseWriter, r *http.Request) {
	encuestaID := r.PathValue("id")
	if encuestaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	ctx := r.Context()
	if data, ok := h.cache.Get(ctx, encuestaID); ok {
		middleware.JSONResponse(w, http.StatusOK, data)
		return
	}

	data, err := ComputeResultados(ctx, h.db, encuestaID)
	if err == ErrEncuestaNotFound {
		middleware.ErrorResponse(w, http.StatusNotFound, msgEncuestaNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to compute resultados", "error", err, "encuesta_id", encuestaID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	h.cache.Set(ctx, encuestaID, data)

	middleware.JSONResponse(w, http.StatusOK, data)
}

// GetEstadisticas handles GET /estadisticas
func (h *ResultsHandler) GetEstadisticas(w http.ResponseWriter, r *http.Request) {
	stats, err := loadEstadisticas(r.Context(), h.db, h.cfg.Precision)
	if err != nil {
		slog.Error("failed to load estadisticas", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}

// ComputeResultados reads the option counts of an encuesta in position order.
// The total is the sum of the counts, so percentages always add up.
func ComputeResultados(ctx context.Context, db *sql.DB, encuestaID string) (models.ResultadosData, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM encuesta WHERE id = $1)
	`, encuestaID).Scan(&exists)
	if err != nil {
		return models.ResultadosData{}, err
	}
	if !exists {
		return models.ResultadosData{}, ErrEncuestaNotFound
	}

	rows, err := db.QueryContext(ctx, `
		SELECT nombre, cantidad FROM opcion
		WHERE encuesta_id = $1
		ORDER BY posicion
	`, encuestaID)
	if err != nil {
		return models.ResultadosData{}, err
	}
	defer rows.Close()

	resultados := []models.ResultadoOpcion{}
	total := 0
	for rows.Next() {
		var ro models.ResultadoOpcion
		if err := rows.Scan(&ro.Opcion, &ro.Cantidad); err != nil {
			return models.ResultadosData{}, err
		}
		total += ro.Cantidad
		resultados = append(resultados, ro)
	}
	if err := rows.Err(); err != nil {
		return models.ResultadosData{}, err
	}

	for i := range resultados {
		resultados[i].Porcentaje = porcentaje(resultados[i].Cantidad, total)
	}

	return models.ResultadosData{
		EncuestaID:          encuestaID,
		TotalVotos:          total,
		Resultados:          resultados,
		UltimaActualizacion: time.Now().UTC(),
	}, nil
}

// loadEstadisticas aggregates the portal counters over all encuestas
func loadEstadisticas(ctx context.Context, db *sql.DB, precision float64) (models.Estadisticas, error) {
	stats := models.Estadisticas{Precision: precision}
	err := db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(total_votos), 0),
			COUNT(*),
			COUNT(DISTINCT CASE WHEN region <> $1 THEN region END)
		FROM encuesta
	`, catalog.DefaultRegion).Scan(&stats.TotalVotos, &stats.TotalEncuestas, &stats.Regiones)
	return stats, err
}
