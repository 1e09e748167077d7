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

	"github.com/google/uuid"

	"github.com/encuestape/encuestape/auth"
	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/filestorage"
	"github.com/encuestape/encuestape/middleware"
	"github.com/encuestape/encuestape/models"
)

const msgImagenNotFound = "Imagen no encontrada."

type ImagenHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	storage filestorage.FileStorage
}

func NewImagenHandler(db *sql.DB, cfg cliparse.Config, fs filestorage.FileStorage) *ImagenHandler {
	return &ImagenHandler{db: db, cfg: cfg, storage: fs}
}

// ListImagenes handles GET /imagenes
func (h *ImagenHandler) ListImagenes(w http.ResponseWriter, r *http.Request) {
	imagenes, err := loadImagenes(r.Context(), h.db)
	if err != nil {
		slog.Error("failed to load imagenes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ImagenesResponse{Imagenes: imagenes})
}

// GuardarImagen handles POST /admin/imagenes
// A data: URL is uploaded to file storage; any other URL is stored as given.
func (h *ImagenHandler) GuardarImagen(w http.ResponseWriter, r *http.Request) {
	var req models.GuardarImagenRequest
	if !parseBody(w, r, &req) {
		return
	}

	src := strings.TrimSpace(req.URL)
	if src == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Se requiere la URL de la imagen.")
		return
	}
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		nombre = "imagen"
	}

	id, err := auth.GenerateID(8)
	if err != nil {
		slog.Error("failed to generate imagen ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "No se pudo guardar la imagen.")
		return
	}

	ctx := r.Context()
	storedURL, objeto, size := src, "", 0
	if filestorage.IsDataURL(src) {
		data, mime, err := filestorage.DecodeDataURL(src)
		switch {
		case errors.Is(err, filestorage.ErrImageTooLarge):
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "La imagen supera el límite de 5 MB.")
			return
		case errors.Is(err, filestorage.ErrUnsupportedImage):
			middleware.ErrorResponse(w, http.StatusBadRequest, "Tipo de imagen no soportado.")
			return
		case err != nil:
			middleware.ErrorResponse(w, http.StatusBadRequest, "La imagen no es un data URL válido.")
			return
		}

		objeto = uuid.NewString() + filestorage.ImageTypes[mime]
		storedURL, err = h.storage.Upload(ctx, data, objeto, mime)
		if err != nil {
			slog.Error("failed to upload imagen", "error", err, "objeto", objeto)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "No se pudo guardar la imagen.")
			return
		}
		size = len(data)
	}

	now := time.Now().UTC()
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO imagen (id, nombre, url, objeto, fecha, size)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, nombre, storedURL, objeto, now, size)
	if err != nil {
		slog.Error("failed to insert imagen", "error", err)
		if objeto != "" {
			h.deleteObject(ctx, objeto)
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	slog.Info("imagen saved", "imagen_id", id, "size", size, "uploaded", objeto != "")

	middleware.JSONResponse(w, http.StatusCreated, models.ImageItem{
		ID:      id,
		Nombre:  nombre,
		DataURL: storedURL,
		URL:     storedURL,
		Fecha:   now,
		Size:    size,
	})
}

// EliminarImagen handles DELETE /admin/imagenes/{id}
func (h *ImagenHandler) EliminarImagen(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	ctx := r.Context()
	var objeto string
	err := h.db.QueryRowContext(ctx, `SELECT objeto FROM imagen WHERE id = $1`, id).Scan(&objeto)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, msgImagenNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to query imagen", "error", err, "imagen_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	if _, err := h.db.ExecContext(ctx, `DELETE FROM imagen WHERE id = $1`, id); err != nil {
		slog.Error("failed to delete imagen", "error", err, "imagen_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	// The row is gone either way; a leftover object is only logged
	if objeto != "" {
		h.deleteObject(ctx, objeto)
	}

	slog.Info("imagen deleted", "imagen_id", id, "admin", middleware.AdminUser(r))

	middleware.JSONResponse(w, http.StatusOK, models.MutationResponse{
		Exito:   true,
		ID:      id,
		Mensaje: "Imagen eliminada.",
	})
}

func (h *ImagenHandler) deleteObject(ctx context.Context, objeto string) {
	if err := h.storage.Delete(ctx, objeto); err != nil {
		slog.Warn("failed to delete stored object", "error", err, "objeto", objeto)
	}
}

// loadImagenes lists the image library newest first
func loadImagenes(ctx context.Context, db *sql.DB) ([]models.ImageItem, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, nombre, url, fecha, size FROM imagen
		ORDER BY fecha DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	imagenes := []models.ImageItem{}
	for rows.Next() {
		var img models.ImageItem
		if err := rows.Scan(&img.ID, &img.Nombre, &img.DataURL, &img.Fecha, &img.Size); err != nil {
			return nil, err
		}
		img.URL = img.DataURL
		imagenes = append(imagenes, img)
	}
	return imagenes, rows.Err()
}
