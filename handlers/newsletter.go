// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/middleware"
	"github.com/encuestape/encuestape/models"
)

type NewsletterHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewNewsletterHandler(db *sql.DB, cfg cliparse.Config) *NewsletterHandler {
	return &NewsletterHandler{db: db, cfg: cfg}
}

// Suscribir handles POST /suscribir
// Subscribing twice is not an error.
func (h *NewsletterHandler) Suscribir(w http.ResponseWriter, r *http.Request) {
	var req models.SuscribirRequest
	if !parseBody(w, r, &req) {
		return
	}

	email, ok := normalizeEmail(req.Email)
	if !ok {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Correo electrónico no válido.")
		return
	}

	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO suscriptor (email, created_at)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, email, time.Now().UTC())
	if err != nil {
		slog.Error("failed to insert suscriptor", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	slog.Info("newsletter subscription")

	middleware.JSONResponse(w, http.StatusOK, models.SuscribirResponse{Exito: true})
}

// normalizeEmail accepts a bare address and lowercases it
func normalizeEmail(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", false
	}
	if _, domain, _ := strings.Cut(addr.Address, "@"); !strings.Contains(domain, ".") {
		return "", false
	}
	return strings.ToLower(addr.Address), true
}
