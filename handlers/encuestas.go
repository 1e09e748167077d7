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
	"github.com/encuestape/encuestape/cache"
	"github.com/encuestape/encuestape/catalog"
	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/middleware"
	"github.com/encuestape/encuestape/models"
)

const dateLayout = "2006-01-02"

// defaultMetaVotos applies when an encuesta is created without a target
const defaultMetaVotos = 1000

const encuestaColumns = `id, titulo, descripcion, estado, meta_votos, fecha_inicio, fecha_fin,
	categoria, region, tipo_eleccion, total_votos`

type EncuestaHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	cache cache.ResultsCache
}

func NewEncuestaHandler(db *sql.DB, cfg cliparse.Config, rc cache.ResultsCache) *EncuestaHandler {
	return &EncuestaHandler{db: db, cfg: cfg, cache: rc}
}

// ListEncuestas handles GET /encuestas?region=&tipo=
func (h *EncuestaHandler) ListEncuestas(w http.ResponseWriter, r *http.Request) {
	var where []string
	var args []interface{}

	if region := strings.TrimSpace(r.URL.Query().Get("region")); region != "" && !strings.EqualFold(region, catalog.Todos) {
		code, ok := catalog.NormalizeRegion(region)
		if !ok {
			middleware.ErrorResponse(w, http.StatusBadRequest, msgRegionInvalida)
			return
		}
		args = append(args, code)
		where = append(where, "region = $1")
	}

	if tipo := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("tipo"))); tipo != "" && tipo != catalog.Todos {
		if !catalog.ValidTipoEleccion(tipo) {
			middleware.ErrorResponse(w, http.StatusBadRequest, msgTipoInvalido)
			return
		}
		args = append(args, tipo)
		if len(args) == 1 {
			where = append(where, "tipo_eleccion = $1")
		} else {
			where = append(where, "tipo_eleccion = $2")
		}
	}

	encuestas, err := loadEncuestas(r.Context(), h.db, strings.Join(where, " AND "), args...)
	if err != nil {
		slog.Error("failed to load encuestas", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.EncuestasResponse{Encuestas: encuestas})
}

// GetEncuesta handles GET /encuestas/{id}
func (h *EncuestaHandler) GetEncuesta(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	encuestas, err := loadEncuestas(r.Context(), h.db, "id = $1", id)
	if err != nil {
		slog.Error("failed to load encuesta", "error", err, "encuesta_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if len(encuestas) == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, msgEncuestaNotFound)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, encuestas[0])
}

// RegionStats handles GET /encuestas/regiones
// Counts active encuestas per region, listing every region
func (h *EncuestaHandler) RegionStats(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT region, COUNT(*) FROM encuesta
		WHERE estado = $1
		GROUP BY region
	`, models.EstadoActiva)
	if err != nil {
		slog.Error("failed to count encuestas by region", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var region string
		var n int
		if err := rows.Scan(&region, &n); err != nil {
			slog.Error("failed to scan region count", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
			return
		}
		counts[region] = n
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate region counts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	stats := make([]models.RegionStat, 0, len(catalog.Regiones))
	for _, reg := range catalog.Regiones {
		stats = append(stats, models.RegionStat{
			Region:    reg.Code,
			Nombre:    reg.Nombre,
			Encuestas: counts[reg.Code],
		})
	}

	middleware.JSONResponse(w, http.StatusOK, models.RegionStatsResponse{Regiones: stats})
}

// CrearEncuesta handles POST /admin/encuestas
func (h *EncuestaHandler) CrearEncuesta(w http.ResponseWriter, r *http.Request) {
	var req models.CrearEncuestaRequest
	if !parseBody(w, r, &req) {
		return
	}

	region := catalog.DefaultRegion
	if s := strings.TrimSpace(req.Region); s != "" {
		code, ok := catalog.NormalizeRegion(s)
		if !ok {
			middleware.ErrorResponse(w, http.StatusBadRequest, msgRegionInvalida)
			return
		}
		region = code
	}

	tipo := catalog.DefaultTipo
	if s := strings.ToUpper(strings.TrimSpace(req.TipoEleccion)); s != "" {
		if !catalog.ValidTipoEleccion(s) {
			middleware.ErrorResponse(w, http.StatusBadRequest, msgTipoInvalido)
			return
		}
		tipo = s
	}

	titulo := strings.TrimSpace(req.Titulo)
	if titulo == "" {
		titulo = defaultTitulo(tipo, region)
	}

	estado := models.EstadoActiva
	if req.Estado != "" {
		if !validEstado(req.Estado) {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Estado no válido.")
			return
		}
		estado = req.Estado
	}

	opciones, msg := cleanOpciones(req.Opciones)
	if msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	if req.MetaVotos < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "La meta de votos no puede ser negativa.")
		return
	}
	metaVotos := req.MetaVotos
	if metaVotos == 0 {
		metaVotos = defaultMetaVotos
	}

	fechaInicio := strings.TrimSpace(req.FechaInicio)
	if fechaInicio == "" {
		fechaInicio = time.Now().Format(dateLayout)
	}
	fechaFin := strings.TrimSpace(req.FechaFin)
	if msg := validFechas(fechaInicio, fechaFin); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	encuestaID, err := auth.GenerateID(8)
	if err != nil {
		slog.Error("failed to generate encuesta ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "No se pudo crear la encuesta.")
		return
	}

	ctx := r.Context()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO encuesta (id, titulo, descripcion, estado, meta_votos, fecha_inicio, fecha_fin,
			categoria, region, tipo_eleccion, total_votos, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0, $11)
	`, encuestaID, titulo, strings.TrimSpace(req.Descripcion), estado, metaVotos, fechaInicio, fechaFin,
		strings.TrimSpace(req.Categoria), region, tipo, time.Now().UTC())
	if err != nil {
		slog.Error("failed to insert encuesta", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	for i, o := range opciones {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO opcion (encuesta_id, posicion, nombre, partido, foto_url, logo_partido_url,
				url_hoja_vida, numero, es_candidato, cantidad)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0)
		`, encuestaID, i, o.Nombre, o.Partido, o.FotoURL, o.LogoPartidoURL, o.URLHojaVida, o.Numero, o.Candidato)
		if err != nil {
			slog.Error("failed to insert opcion", "error", err, "encuesta_id", encuestaID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	slog.Info("encuesta created", "encuesta_id", encuestaID, "opciones", len(opciones), "region", region, "tipo", tipo)

	middleware.JSONResponse(w, http.StatusCreated, models.MutationResponse{
		Exito:   true,
		ID:      encuestaID,
		Mensaje: "Encuesta creada.",
	})
}

// EditarEncuesta handles PUT /admin/encuestas/{id}
// Options are immutable once created; only metadata is patched.
func (h *EncuestaHandler) EditarEncuesta(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	var req models.EditarEncuestaRequest
	if !parseBody(w, r, &req) {
		return
	}

	if req.Titulo != nil {
		t := strings.TrimSpace(*req.Titulo)
		if t == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "El título no puede estar vacío.")
			return
		}
		req.Titulo = &t
	}
	if req.Estado != nil && !validEstado(*req.Estado) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Estado no válido.")
		return
	}
	if req.MetaVotos != nil && *req.MetaVotos < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "La meta de votos no puede ser negativa.")
		return
	}

	ctx := r.Context()
	var fechaInicio, fechaFin string
	err := h.db.QueryRowContext(ctx, `
		SELECT fecha_inicio, fecha_fin FROM encuesta WHERE id = $1
	`, id).Scan(&fechaInicio, &fechaFin)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, msgEncuestaNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query encuesta", "error", err, "encuesta_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	if req.FechaInicio != nil {
		fechaInicio = strings.TrimSpace(*req.FechaInicio)
	}
	if req.FechaFin != nil {
		fechaFin = strings.TrimSpace(*req.FechaFin)
	}
	if msg := validFechas(fechaInicio, fechaFin); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	_, err = h.db.ExecContext(ctx, `
		UPDATE encuesta SET
			titulo = COALESCE($1, titulo),
			descripcion = COALESCE($2, descripcion),
			estado = COALESCE($3, estado),
			meta_votos = COALESCE($4, meta_votos),
			fecha_inicio = $5,
			fecha_fin = $6,
			categoria = COALESCE($7, categoria)
		WHERE id = $8
	`, req.Titulo, req.Descripcion, req.Estado, req.MetaVotos, fechaInicio, fechaFin, req.Categoria, id)
	if err != nil {
		slog.Error("failed to update encuesta", "error", err, "encuesta_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	slog.Info("encuesta updated", "encuesta_id", id, "admin", middleware.AdminUser(r))

	middleware.JSONResponse(w, http.StatusOK, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: "Encuesta actualizada.",
	})
}

// CerrarEncuesta handles POST /admin/encuestas/{id}/cerrar
func (h *EncuestaHandler) CerrarEncuesta(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	ctx := r.Context()
	var estado string
	err := h.db.QueryRowContext(ctx, `SELECT estado FROM encuesta WHERE id = $1`, id).Scan(&estado)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, msgEncuestaNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query encuesta", "error", err, "encuesta_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	if estado == models.EstadoCerrada {
		middleware.ErrorResponse(w, http.StatusConflict, msgEncuestaCerrada)
		return
	}

	// The estado guard keeps a concurrent close from succeeding twice
	res, err := h.db.ExecContext(ctx, `
		UPDATE encuesta SET estado = $1 WHERE id = $2 AND estado <> $1
	`, models.EstadoCerrada, id)
	if err != nil {
		slog.Error("failed to close encuesta", "error", err, "encuesta_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusConflict, msgEncuestaCerrada)
		return
	}

	slog.Info("encuesta closed", "encuesta_id", id, "admin", middleware.AdminUser(r))

	middleware.JSONResponse(w, http.StatusOK, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: "Encuesta cerrada.",
	})
}

// EliminarEncuesta handles DELETE /admin/encuestas/{id}
func (h *EncuestaHandler) EliminarEncuesta(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	ctx := r.Context()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM voto WHERE encuesta_id = $1`,
		`DELETE FROM voto_registrado WHERE encuesta_id = $1`,
		`DELETE FROM opcion WHERE encuesta_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			slog.Error("failed to delete encuesta children", "error", err, "encuesta_id", id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
			return
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM encuesta WHERE id = $1`, id)
	if err != nil {
		slog.Error("failed to delete encuesta", "error", err, "encuesta_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, msgEncuestaNotFound)
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	h.cache.Invalidate(ctx, id)

	slog.Info("encuesta deleted", "encuesta_id", id, "admin", middleware.AdminUser(r))

	middleware.JSONResponse(w, http.StatusOK, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: "Encuesta eliminada.",
	})
}

// loadEncuestas returns encuestas matching where (no WHERE keyword, may be
// empty) with their options, in creation order.
// Options are fetched after the encuesta rows are closed; SQLite runs on a
// single connection.
func loadEncuestas(ctx context.Context, db *sql.DB, where string, args ...interface{}) ([]models.Encuesta, error) {
	query := `SELECT ` + encuestaColumns + ` FROM encuesta`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY created_at, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	encuestas := []models.Encuesta{}
	index := make(map[string]int)
	for rows.Next() {
		var e models.Encuesta
		if err := rows.Scan(&e.ID, &e.Titulo, &e.Descripcion, &e.Estado, &e.MetaVotos,
			&e.FechaInicio, &e.FechaFin, &e.Categoria, &e.Region, &e.TipoEleccion, &e.TotalVotos); err != nil {
			rows.Close()
			return nil, err
		}
		e.Opciones = []models.Opcion{}
		index[e.ID] = len(encuestas)
		encuestas = append(encuestas, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(encuestas) == 0 {
		return encuestas, nil
	}

	optQuery := `
		SELECT encuesta_id, nombre, partido, foto_url, logo_partido_url, url_hoja_vida, numero, es_candidato
		FROM opcion`
	var optArgs []interface{}
	if len(encuestas) == 1 {
		optQuery += ` WHERE encuesta_id = $1`
		optArgs = append(optArgs, encuestas[0].ID)
	}
	optQuery += ` ORDER BY encuesta_id, posicion`

	optRows, err := db.QueryContext(ctx, optQuery, optArgs...)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var encuestaID string
		var o models.Opcion
		if err := optRows.Scan(&encuestaID, &o.Nombre, &o.Partido, &o.FotoURL, &o.LogoPartidoURL,
			&o.URLHojaVida, &o.Numero, &o.Candidato); err != nil {
			return nil, err
		}
		if i, ok := index[encuestaID]; ok {
			encuestas[i].Opciones = append(encuestas[i].Opciones, o)
		}
	}
	return encuestas, optRows.Err()
}

// cleanOpciones trims option names and requires at least two distinct ones.
// Returns a non-empty message when the options are invalid.
func cleanOpciones(in []models.Opcion) ([]models.Opcion, string) {
	if len(in) < 2 {
		return nil, "Se requieren al menos 2 opciones."
	}
	seen := make(map[string]bool, len(in))
	out := make([]models.Opcion, 0, len(in))
	for _, o := range in {
		o.Nombre = strings.TrimSpace(o.Nombre)
		if o.Nombre == "" {
			return nil, "Las opciones no pueden estar vacías."
		}
		key := strings.ToLower(o.Nombre)
		if seen[key] {
			return nil, "Opción duplicada: " + o.Nombre
		}
		seen[key] = true
		out = append(out, o)
	}
	return out, ""
}

// validFechas checks YYYY-MM-DD dates; either may be empty
func validFechas(inicio, fin string) string {
	var start, end time.Time
	var err error
	if inicio != "" {
		if start, err = time.Parse(dateLayout, inicio); err != nil {
			return "fecha_inicio debe tener el formato AAAA-MM-DD."
		}
	}
	if fin != "" {
		if end, err = time.Parse(dateLayout, fin); err != nil {
			return "fecha_fin debe tener el formato AAAA-MM-DD."
		}
	}
	if inicio != "" && fin != "" && end.Before(start) {
		return "fecha_fin no puede ser anterior a fecha_inicio."
	}
	return ""
}

func validEstado(estado string) bool {
	switch estado {
	case models.EstadoActiva, models.EstadoCerrada, models.EstadoProxima:
		return true
	}
	return false
}

// defaultTitulo names an untitled encuesta after its election type and region
func defaultTitulo(tipo, region string) string {
	nombre := tipo
	for _, t := range catalog.TiposEleccion {
		if t.Code == tipo {
			nombre = t.Nombre
		}
	}
	if region == catalog.DefaultRegion {
		return nombre + " — Elecciones 2026"
	}
	return nombre + " por " + catalog.RegionName(region) + " — Elecciones 2026"
}
