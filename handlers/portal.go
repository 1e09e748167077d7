// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/middleware"
	"github.com/encuestape/encuestape/models"
)

type PortalHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPortalHandler(db *sql.DB, cfg cliparse.Config) *PortalHandler {
	return &PortalHandler{db: db, cfg: cfg}
}

// GetPortal handles GET /portal
// Returns everything the public site renders on first load.
func (h *PortalHandler) GetPortal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var data models.PortalData
	var err error

	if data.Encuestas, err = loadEncuestas(ctx, h.db, ""); err != nil {
		slog.Error("failed to load encuestas", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if data.Noticias, err = loadNoticias(ctx, h.db, true); err != nil {
		slog.Error("failed to load noticias", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if data.Denuncias, err = loadDenuncias(ctx, h.db, true); err != nil {
		slog.Error("failed to load denuncias", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if data.Foro, err = loadForo(ctx, h.db); err != nil {
		slog.Error("failed to load foro", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if data.Estadisticas, err = loadEstadisticas(ctx, h.db, h.cfg.Precision); err != nil {
		slog.Error("failed to load estadisticas", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, data)
}
