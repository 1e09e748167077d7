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
	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/middleware"
	"github.com/encuestape/encuestape/models"
)

const msgNoticiaNotFound = "Noticia no encontrada."

type NoticiaHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewNoticiaHandler(db *sql.DB, cfg cliparse.Config) *NoticiaHandler {
	return &NoticiaHandler{db: db, cfg: cfg}
}

// ListNoticias handles GET /noticias
func (h *NoticiaHandler) ListNoticias(w http.ResponseWriter, r *http.Request) {
	noticias, err := loadNoticias(r.Context(), h.db, true)
	if err != nil {
		slog.Error("failed to load noticias", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.NoticiasResponse{Noticias: noticias})
}

// GetNoticia handles GET /noticias/{id}
// Unpublished articles are hidden from the public.
func (h *NoticiaHandler) GetNoticia(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	var n models.NewsArticle
	err := h.db.QueryRowContext(r.Context(), `
		SELECT `+noticiaColumns+` FROM noticia WHERE id = $1 AND publicado = $2
	`, id, true).Scan(&n.ID, &n.Titulo, &n.Extracto, &n.Contenido, &n.Categoria,
		&n.ImagenURL, &n.Autor, &n.FechaPublicacion, &n.Publicado, &n.Destacado)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, msgNoticiaNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query noticia", "error", err, "noticia_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, n)
}

// CrearNoticia handles POST /admin/noticias
func (h *NoticiaHandler) CrearNoticia(w http.ResponseWriter, r *http.Request) {
	var req models.CrearNoticiaRequest
	if !parseBody(w, r, &req) {
		return
	}

	titulo := strings.TrimSpace(req.Titulo)
	contenido := strings.TrimSpace(req.Contenido)
	if titulo == "" || contenido == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "El título y el contenido son obligatorios.")
		return
	}

	categoria := ""
	if req.Categoria != "" {
		c, ok := catalog.CanonicalCategory(catalog.NewsCategories, req.Categoria)
		if !ok {
			middleware.ErrorResponse(w, http.StatusBadRequest, msgCategoriaInvalid)
			return
		}
		categoria = c
	}

	fecha := time.Now().UTC()
	if req.FechaPublicacion != nil && !req.FechaPublicacion.IsZero() {
		fecha = req.FechaPublicacion.UTC()
	}

	id, err := auth.GenerateID(8)
	if err != nil {
		slog.Error("failed to generate noticia ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "No se pudo crear la noticia.")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO noticia (id, titulo, extracto, contenido, categoria, imagen_url, autor,
			fecha_publicacion, publicado, destacado)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, titulo, strings.TrimSpace(req.Extracto), contenido, categoria,
		strings.TrimSpace(req.ImagenURL), strings.TrimSpace(req.Autor), fecha, req.Publicado, req.Destacado)
	if err != nil {
		slog.Error("failed to insert noticia", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	slog.Info("noticia created", "noticia_id", id, "publicado", req.Publicado)

	middleware.JSONResponse(w, http.StatusCreated, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: "Noticia creada.",
	})
}

// EditarNoticia handles PUT /admin/noticias/{id}
func (h *NoticiaHandler) EditarNoticia(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	var req models.EditarNoticiaRequest
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
	if req.Contenido != nil && strings.TrimSpace(*req.Contenido) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "El contenido no puede estar vacío.")
		return
	}
	if req.Categoria != nil && *req.Categoria != "" {
		c, ok := catalog.CanonicalCategory(catalog.NewsCategories, *req.Categoria)
		if !ok {
			middleware.ErrorResponse(w, http.StatusBadRequest, msgCategoriaInvalid)
			return
		}
		req.Categoria = &c
	}

	res, err := h.db.ExecContext(r.Context(), `
		UPDATE noticia SET
			titulo = COALESCE($1, titulo),
			extracto = COALESCE($2, extracto),
			contenido = COALESCE($3, contenido),
			categoria = COALESCE($4, categoria),
			imagen_url = COALESCE($5, imagen_url),
			autor = COALESCE($6, autor),
			publicado = COALESCE($7, publicado),
			destacado = COALESCE($8, destacado)
		WHERE id = $9
	`, req.Titulo, req.Extracto, req.Contenido, req.Categoria, req.ImagenURL, req.Autor,
		req.Publicado, req.Destacado, id)
	if err != nil {
		slog.Error("failed to update noticia", "error", err, "noticia_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, msgNoticiaNotFound)
		return
	}

	slog.Info("noticia updated", "noticia_id", id, "admin", middleware.AdminUser(r))

	middleware.JSONResponse(w, http.StatusOK, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: "Noticia actualizada.",
	})
}

// EliminarNoticia handles DELETE /admin/noticias/{id}
func (h *NoticiaHandler) EliminarNoticia(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	res, err := h.db.ExecContext(r.Context(), `DELETE FROM noticia WHERE id = $1`, id)
	if err != nil {
		slog.Error("failed to delete noticia", "error", err, "noticia_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, msgNoticiaNotFound)
		return
	}

	slog.Info("noticia deleted", "noticia_id", id, "admin", middleware.AdminUser(r))

	middleware.JSONResponse(w, http.StatusOK, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: "Noticia eliminada.",
	})
}

const noticiaColumns = `id, titulo, extracto, contenido, categoria, imagen_url, autor,
	fecha_publicacion, publicado, destacado`

// loadNoticias lists articles, featured first then newest.
// publishedOnly hides drafts.
func loadNoticias(ctx context.Context, db *sql.DB, publishedOnly bool) ([]models.NewsArticle, error) {
	query := `SELECT ` + noticiaColumns + ` FROM noticia`
	var args []interface{}
	if publishedOnly {
		query += ` WHERE publicado = $1`
		args = append(args, true)
	}
	query += ` ORDER BY destacado DESC, fecha_publicacion DESC, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	noticias := []models.NewsArticle{}
	for rows.Next() {
		var n models.NewsArticle
		if err := rows.Scan(&n.ID, &n.Titulo, &n.Extracto, &n.Contenido, &n.Categoria,
			&n.ImagenURL, &n.Autor, &n.FechaPublicacion, &n.Publicado, &n.Destacado); err != nil {
			return nil, err
		}
		noticias = append(noticias, n)
	}
	return noticias, rows.Err()
}
