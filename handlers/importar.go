// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/encuestape/encuestape/auth"
	"github.com/encuestape/encuestape/catalog"
	"github.com/encuestape/encuestape/export"
	"github.com/encuestape/encuestape/middleware"
	"github.com/encuestape/encuestape/models"
)

const (
	msgImportVacio    = "Se requiere el CSV de encuestas."
	msgImportInvalido = "El CSV de importación no es válido."
)

// ImportEncuestas handles POST /admin/import
// Encuestas are rebuilt from the CSV export, resolving the candidatos sheet.
// Rows whose id already exists are skipped. Imported options start without
// votes since dedup records are never exported.
func (h *AdminHandler) ImportEncuestas(w http.ResponseWriter, r *http.Request) {
	var req models.ImportarEncuestasRequest
	if !parseBody(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.EncuestasCSV) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgImportVacio)
		return
	}

	rows, err := export.ReadEncuestas(strings.NewReader(req.EncuestasCSV))
	if err != nil {
		slog.Warn("invalid encuestas CSV", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, msgImportInvalido)
		return
	}

	var candidatos []export.CandidatoRow
	if strings.TrimSpace(req.CandidatosCSV) != "" {
		candidatos, err = export.ReadCandidatos(strings.NewReader(req.CandidatosCSV))
		if err != nil {
			slog.Warn("invalid candidatos CSV", "error", err)
			middleware.ErrorResponse(w, http.StatusBadRequest, msgImportInvalido)
			return
		}
	}

	encuestas, err := export.Restore(rows, candidatos)
	if err != nil {
		slog.Warn("failed to restore encuestas", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, msgImportInvalido)
		return
	}

	for i := range encuestas {
		if msg := normalizeImported(&encuestas[i]); msg != "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, encuestas[i].ID+": "+msg)
			return
		}
	}

	ctx := r.Context()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	defer tx.Rollback()

	importadas := 0
	for _, e := range encuestas {
		inserted, err := insertImported(ctx, tx, e)
		if err != nil {
			slog.Error("failed to import encuesta", "error", err, "encuesta_id", e.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
			return
		}
		if inserted {
			importadas++
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	slog.Info("encuestas imported", "importadas", importadas, "omitidas", len(encuestas)-importadas)

	middleware.JSONResponse(w, http.StatusOK, models.ImportarEncuestasResponse{
		Exito:      true,
		Importadas: importadas,
		Omitidas:   len(encuestas) - importadas,
	})
}

// normalizeImported applies the CrearEncuesta defaults and checks to a restored row.
// Returns a non-empty message when the row cannot be imported.
func normalizeImported(e *models.Encuesta) string {
	if strings.TrimSpace(e.ID) == "" {
		id, err := auth.GenerateID(8)
		if err != nil {
			return "No se pudo generar el id."
		}
		e.ID = id
	}

	e.Region = strings.TrimSpace(e.Region)
	if e.Region == "" {
		e.Region = catalog.DefaultRegion
	} else {
		code, ok := catalog.NormalizeRegion(e.Region)
		if !ok {
			return msgRegionInvalida
		}
		e.Region = code
	}

	e.TipoEleccion = strings.ToUpper(strings.TrimSpace(e.TipoEleccion))
	if e.TipoEleccion == "" {
		e.TipoEleccion = catalog.DefaultTipo
	} else if !catalog.ValidTipoEleccion(e.TipoEleccion) {
		return msgTipoInvalido
	}

	if e.Estado == "" {
		e.Estado = models.EstadoActiva
	} else if !validEstado(e.Estado) {
		return "Estado no válido."
	}

	e.Titulo = strings.TrimSpace(e.Titulo)
	if e.Titulo == "" {
		e.Titulo = defaultTitulo(e.TipoEleccion, e.Region)
	}

	opciones, msg := cleanOpciones(e.Opciones)
	if msg != "" {
		return msg
	}
	e.Opciones = opciones

	if e.MetaVotos < 0 {
		return "La meta de votos no puede ser negativa."
	}
	if e.MetaVotos == 0 {
		e.MetaVotos = defaultMetaVotos
	}

	e.FechaInicio = strings.TrimSpace(e.FechaInicio)
	e.FechaFin = strings.TrimSpace(e.FechaFin)
	return validFechas(e.FechaInicio, e.FechaFin)
}

// insertImported stores one encuesta with zeroed counts.
// Returns false when an encuesta with the same id already exists.
func insertImported(ctx context.Context, tx *sql.Tx, e models.Encuesta) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO encuesta (id, titulo, descripcion, estado, meta_votos, fecha_inicio, fecha_fin,
			categoria, region, tipo_eleccion, total_votos, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11)
		ON CONFLICT (id) DO NOTHING
	`, e.ID, e.Titulo, strings.TrimSpace(e.Descripcion), e.Estado, e.MetaVotos, e.FechaInicio, e.FechaFin,
		strings.TrimSpace(e.Categoria), e.Region, e.TipoEleccion, time.Now().UTC())
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return false, err
	}

	for i, o := range e.Opciones {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO opcion (encuesta_id, posicion, nombre, partido, foto_url, logo_partido_url,
				url_hoja_vida, numero, es_candidato, cantidad)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0)
		`, e.ID, i, o.Nombre, o.Partido, o.FotoURL, o.LogoPartidoURL, o.URLHojaVida, o.Numero, o.Candidato)
		if err != nil {
			return false, err
		}
	}
	return true, nil
}
