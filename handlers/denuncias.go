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
	msgDenunciaNotFound    = "Denuncia no encontrada."
	msgDenunciaNoPublica   = "La denuncia aún no está publicada."
	msgDenunciaYaApoyada   = "Ya apoyaste esta denuncia."
	msgDenunciaRecibida    = "Denuncia recibida. Será revisada antes de publicarse."
	msgDenunciaCamposOblig = "El título, la descripción y la categoría son obligatorios."
)

var errDenunciaNoPublica = errors.New("denuncia is not published")

type DenunciaHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewDenunciaHandler(db *sql.DB, cfg cliparse.Config) *DenunciaHandler {
	return &DenunciaHandler{db: db, cfg: cfg}
}

// ListDenuncias handles GET /denuncias
func (h *DenunciaHandler) ListDenuncias(w http.ResponseWriter, r *http.Request) {
	denuncias, err := loadDenuncias(r.Context(), h.db, true)
	if err != nil {
		slog.Error("failed to load denuncias", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DenunciasResponse{Denuncias: denuncias})
}

// ListAllDenuncias handles GET /admin/denuncias
func (h *DenunciaHandler) ListAllDenuncias(w http.ResponseWriter, r *http.Request) {
	denuncias, err := loadDenuncias(r.Context(), h.db, false)
	if err != nil {
		slog.Error("failed to load denuncias", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DenunciasResponse{Denuncias: denuncias})
}

// CrearDenuncia handles POST /denuncias
// New complaints wait in pendiente until an admin publishes them.
func (h *DenunciaHandler) CrearDenuncia(w http.ResponseWriter, r *http.Request) {
	var req models.CrearDenunciaRequest
	if !parseBody(w, r, &req) {
		return
	}

	titulo := strings.TrimSpace(req.Titulo)
	descripcion := strings.TrimSpace(req.Descripcion)
	if titulo == "" || descripcion == "" || strings.TrimSpace(req.Categoria) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgDenunciaCamposOblig)
		return
	}

	categoria, ok := catalog.CanonicalCategory(catalog.DenunciaCategories, req.Categoria)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgCategoriaInvalid)
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

	id, err := auth.GenerateID(8)
	if err != nil {
		slog.Error("failed to generate denuncia ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "No se pudo registrar la denuncia.")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO denuncia (id, titulo, descripcion, categoria, region, fecha, estado, votos_apoyo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0)
	`, id, titulo, descripcion, categoria, region, time.Now().UTC(), models.DenunciaPendiente)
	if err != nil {
		slog.Error("failed to insert denuncia", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	slog.Info("denuncia created", "denuncia_id", id, "categoria", categoria, "region", region)

	middleware.JSONResponse(w, http.StatusCreated, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: msgDenunciaRecibida,
	})
}

// EditarDenuncia handles PUT /admin/denuncias/{id}
func (h *DenunciaHandler) EditarDenuncia(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	var req models.EditarDenunciaRequest
	if !parseBody(w, r, &req) {
		return
	}

	if req.Estado != nil && !validDenunciaEstado(*req.Estado) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Estado no válido.")
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
	if req.Categoria != nil {
		c, ok := catalog.CanonicalCategory(catalog.DenunciaCategories, *req.Categoria)
		if !ok {
			middleware.ErrorResponse(w, http.StatusBadRequest, msgCategoriaInvalid)
			return
		}
		req.Categoria = &c
	}

	res, err := h.db.ExecContext(r.Context(), `
		UPDATE denuncia SET
			titulo = COALESCE($1, titulo),
			descripcion = COALESCE($2, descripcion),
			categoria = COALESCE($3, categoria),
			estado = COALESCE($4, estado)
		WHERE id = $5
	`, req.Titulo, req.Descripcion, req.Categoria, req.Estado, id)
	if err != nil {
		slog.Error("failed to update denuncia", "error", err, "denuncia_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, msgDenunciaNotFound)
		return
	}

	slog.Info("denuncia updated", "denuncia_id", id, "admin", middleware.AdminUser(r))

	middleware.JSONResponse(w, http.StatusOK, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: "Denuncia actualizada.",
	})
}

// EliminarDenuncia handles DELETE /admin/denuncias/{id}
func (h *DenunciaHandler) EliminarDenuncia(w http.ResponseWriter, r *http.Request) {
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM denuncia_apoyo WHERE denuncia_id = $1`, id); err != nil {
		slog.Error("failed to delete denuncia support", "error", err, "denuncia_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM denuncia WHERE id = $1`, id)
	if err != nil {
		slog.Error("failed to delete denuncia", "error", err, "denuncia_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, msgDenunciaNotFound)
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	slog.Info("denuncia deleted", "denuncia_id", id, "admin", middleware.AdminUser(r))

	middleware.JSONResponse(w, http.StatusOK, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: "Denuncia eliminada.",
	})
}

// ApoyarDenuncia handles POST /denuncias/{id}/apoyar
func (h *DenunciaHandler) ApoyarDenuncia(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.DNISalt)
	err := recordApoyo(r.Context(), h.db, id, ipHash)
	switch {
	case err == sql.ErrNoRows:
		middleware.ErrorResponse(w, http.StatusNotFound, msgDenunciaNotFound)
		return
	case errors.Is(err, errDenunciaNoPublica):
		middleware.ErrorResponse(w, http.StatusForbidden, msgDenunciaNoPublica)
		return
	case errors.Is(err, ErrYaApoyado):
		middleware.ErrorResponse(w, http.StatusConflict, msgDenunciaYaApoyada)
		return
	case err != nil:
		slog.Error("failed to record support", "error", err, "denuncia_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	slog.Info("denuncia supported", "denuncia_id", id)

	middleware.JSONResponse(w, http.StatusOK, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: "Gracias por tu apoyo.",
	})
}

// recordApoyo adds one supporter per client hash and bumps votos_apoyo
func recordApoyo(ctx context.Context, db *sql.DB, denunciaID, ipHash string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var estado string
	if err := tx.QueryRowContext(ctx, `
		SELECT estado FROM denuncia WHERE id = $1
	`, denunciaID).Scan(&estado); err != nil {
		return err
	}
	if estado != models.DenunciaPublicada {
		return errDenunciaNoPublica
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO denuncia_apoyo (denuncia_id, ip_hash)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, denunciaID, ipHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrYaApoyado
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE denuncia SET votos_apoyo = votos_apoyo + 1 WHERE id = $1
	`, denunciaID); err != nil {
		return err
	}

	return tx.Commit()
}

func validDenunciaEstado(estado string) bool {
	switch estado {
	case models.DenunciaPendiente, models.DenunciaRevisada, models.DenunciaPublicada:
		return true
	}
	return false
}

// loadDenuncias lists complaints newest first; publishedOnly keeps estado publicada
func loadDenuncias(ctx context.Context, db *sql.DB, publishedOnly bool) ([]models.DenunciaCiudadana, error) {
	query := `
		SELECT id, titulo, descripcion, categoria, region, fecha, estado, votos_apoyo
		FROM denuncia`
	var args []interface{}
	if publishedOnly {
		query += ` WHERE estado = $1`
		args = append(args, models.DenunciaPublicada)
	}
	query += ` ORDER BY fecha DESC, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	denuncias := []models.DenunciaCiudadana{}
	for rows.Next() {
		var d models.DenunciaCiudadana
		if err := rows.Scan(&d.ID, &d.Titulo, &d.Descripcion, &d.Categoria, &d.Region,
			&d.Fecha, &d.Estado, &d.VotosApoyo); err != nil {
			return nil, err
		}
		denuncias = append(denuncias, d)
	}
	return denuncias, rows.Err()
}
