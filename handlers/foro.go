// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/encuestape/encuestape/auth"
	"github.com/encuestape/encuestape/catalog"
	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/middleware"
	"github.com/encuestape/encuestape/models"
)

const (
	msgForoNotFound   = "Pregunta no encontrada."
	msgForoInactiva   = "Esta pregunta ya no acepta votos."
	msgForoYaVoto     = "Ya votaste en esta pregunta."
	msgForoIndiceMalo = "La opción seleccionada no existe."
)

var (
	errForoInactiva = errors.New("foro question is not active")
	errForoIndice   = errors.New("foro option index out of range")
)

type ForoHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewForoHandler(db *sql.DB, cfg cliparse.Config) *ForoHandler {
	return &ForoHandler{db: db, cfg: cfg}
}

// ListForo handles GET /foro
func (h *ForoHandler) ListForo(w http.ResponseWriter, r *http.Request) {
	foro, err := loadForo(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to load foro", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ForoResponse{Foro: foro})
}

// CrearPregunta handles POST /admin/foro
func (h *ForoHandler) CrearPregunta(w http.ResponseWriter, r *http.Request) {
	var req models.CrearForoRequest
	if !parseBody(w, r, &req) {
		return
	}

	pregunta := strings.TrimSpace(req.Pregunta)
	if pregunta == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "La pregunta es obligatoria.")
		return
	}

	var opciones []string
	for _, o := range req.Opciones {
		if o = strings.TrimSpace(o); o != "" {
			opciones = append(opciones, o)
		}
	}
	if len(opciones) < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Se requieren al menos 2 opciones.")
		return
	}

	categoria := ""
	if req.Categoria != "" {
		c, ok := catalog.CanonicalCategory(catalog.ForoCategories, req.Categoria)
		if !ok {
			middleware.ErrorResponse(w, http.StatusBadRequest, msgCategoriaInvalid)
			return
		}
		categoria = c
	}

	id, err := auth.GenerateID(8)
	if err != nil {
		slog.Error("failed to generate foro ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "No se pudo crear la pregunta.")
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
		INSERT INTO foro_pregunta (id, pregunta, descripcion, fecha, activa, categoria, total_votos)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
	`, id, pregunta, strings.TrimSpace(req.Descripcion), time.Now().UTC(), true, categoria)
	if err != nil {
		slog.Error("failed to insert foro pregunta", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	for i, texto := range opciones {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO foro_opcion (pregunta_id, posicion, texto, votos)
			VALUES ($1, $2, $3, 0)
		`, id, i, texto); err != nil {
			slog.Error("failed to insert foro opcion", "error", err, "pregunta_id", id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	slog.Info("foro pregunta created", "pregunta_id", id, "opciones", len(opciones))

	middleware.JSONResponse(w, http.StatusCreated, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: "Pregunta creada.",
	})
}

// EditarPregunta handles PUT /admin/foro/{id}
func (h *ForoHandler) EditarPregunta(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	var req models.EditarForoRequest
	if !parseBody(w, r, &req) {
		return
	}

	if req.Pregunta != nil {
		p := strings.TrimSpace(*req.Pregunta)
		if p == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "La pregunta es obligatoria.")
			return
		}
		req.Pregunta = &p
	}
	if req.Categoria != nil && *req.Categoria != "" {
		c, ok := catalog.CanonicalCategory(catalog.ForoCategories, *req.Categoria)
		if !ok {
			middleware.ErrorResponse(w, http.StatusBadRequest, msgCategoriaInvalid)
			return
		}
		req.Categoria = &c
	}

	res, err := h.db.ExecContext(r.Context(), `
		UPDATE foro_pregunta SET
			pregunta = COALESCE($1, pregunta),
			descripcion = COALESCE($2, descripcion),
			activa = COALESCE($3, activa),
			categoria = COALESCE($4, categoria)
		WHERE id = $5
	`, req.Pregunta, req.Descripcion, req.Activa, req.Categoria, id)
	if err != nil {
		slog.Error("failed to update foro pregunta", "error", err, "pregunta_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, msgForoNotFound)
		return
	}

	slog.Info("foro pregunta updated", "pregunta_id", id, "admin", middleware.AdminUser(r))

	middleware.JSONResponse(w, http.StatusOK, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: "Pregunta actualizada.",
	})
}

// EliminarPregunta handles DELETE /admin/foro/{id}
func (h *ForoHandler) EliminarPregunta(w http.ResponseWriter, r *http.Request) {
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
		`DELETE FROM foro_voto WHERE pregunta_id = $1`,
		`DELETE FROM foro_opcion WHERE pregunta_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			slog.Error("failed to delete foro children", "error", err, "pregunta_id", id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
			return
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM foro_pregunta WHERE id = $1`, id)
	if err != nil {
		slog.Error("failed to delete foro pregunta", "error", err, "pregunta_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, msgForoNotFound)
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	slog.Info("foro pregunta deleted", "pregunta_id", id, "admin", middleware.AdminUser(r))

	middleware.JSONResponse(w, http.StatusOK, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: "Pregunta eliminada.",
	})
}

// Votar handles POST /foro/{id}/votar
func (h *ForoHandler) Votar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	var req models.ForoVotoRequest
	if !parseBody(w, r, &req) {
		return
	}
	if req.OpcionIndex == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgOpcionRequerida)
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.DNISalt)
	err := recordForoVoto(r.Context(), h.db, id, *req.OpcionIndex, ipHash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		middleware.ErrorResponse(w, http.StatusNotFound, msgForoNotFound)
		return
	case errors.Is(err, errForoInactiva):
		middleware.ErrorResponse(w, http.StatusForbidden, msgForoInactiva)
		return
	case errors.Is(err, errForoIndice):
		middleware.ErrorResponse(w, http.StatusBadRequest, msgForoIndiceMalo)
		return
	case errors.Is(err, ErrYaVotoForo):
		middleware.ErrorResponse(w, http.StatusConflict, msgForoYaVoto)
		return
	case err != nil:
		slog.Error("failed to record foro vote", "error", err, "pregunta_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	slog.Info("foro vote registered", "pregunta_id", id, "opcion_index", *req.OpcionIndex)

	middleware.JSONResponse(w, http.StatusOK, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: msgVotoRegistrado,
	})
}

// recordForoVoto validates the question and index, then stores one vote per client hash
func recordForoVoto(ctx context.Context, db *sql.DB, preguntaID string, index int, ipHash string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var activa bool
	if err := tx.QueryRowContext(ctx, `
		SELECT activa FROM foro_pregunta WHERE id = $1
	`, preguntaID).Scan(&activa); err != nil {
		return err
	}
	if !activa {
		return errForoInactiva
	}

	var opciones int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM foro_opcion WHERE pregunta_id = $1
	`, preguntaID).Scan(&opciones); err != nil {
		return err
	}
	if index < 0 || index >= opciones {
		return errForoIndice
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO foro_voto (pregunta_id, ip_hash)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, preguntaID, ipHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrYaVotoForo
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE foro_opcion SET votos = votos + 1 WHERE pregunta_id = $1 AND posicion = $2
	`, preguntaID, index); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE foro_pregunta SET total_votos = total_votos + 1 WHERE id = $1
	`, preguntaID); err != nil {
		return err
	}

	return tx.Commit()
}

// loadForo lists questions, active first then newest, each with its options
func loadForo(ctx context.Context, db *sql.DB) ([]models.ForoPregunta, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, pregunta, descripcion, fecha, activa, categoria, total_votos
		FROM foro_pregunta
		ORDER BY activa DESC, fecha DESC, id
	`)
	if err != nil {
		return nil, err
	}

	foro := []models.ForoPregunta{}
	index := make(map[string]int)
	for rows.Next() {
		var p models.ForoPregunta
		if err := rows.Scan(&p.ID, &p.Pregunta, &p.Descripcion, &p.Fecha, &p.Activa,
			&p.Categoria, &p.TotalVotos); err != nil {
			rows.Close()
			return nil, err
		}
		p.Opciones = []models.ForoOpcion{}
		index[p.ID] = len(foro)
		foro = append(foro, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(foro) == 0 {
		return foro, nil
	}

	optRows, err := db.QueryContext(ctx, `
		SELECT pregunta_id, texto, votos FROM foro_opcion
		ORDER BY pregunta_id, posicion
	`)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var preguntaID string
		var o models.ForoOpcion
		if err := optRows.Scan(&preguntaID, &o.Texto, &o.Votos); err != nil {
			return nil, err
		}
		if i, ok := index[preguntaID]; ok {
			foro[i].Opciones = append(foro[i].Opciones, o)
		}
	}
	return foro, optRows.Err()
}
