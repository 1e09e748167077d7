// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"crypto/subtle"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/encuestape/encuestape/auth"
	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/export"
	"github.com/encuestape/encuestape/middleware"
	"github.com/encuestape/encuestape/models"
)

// recentVotesLimit caps the dashboard vote feed
const recentVotesLimit = 20

type AdminHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg}
}

// LoginAdmin handles POST /admin/login
// The client sends the SHA-256 of the password, never the password itself.
func (h *AdminHandler) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !parseBody(w, r, &req) {
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.User)), []byte(h.cfg.AdminUser)) == 1
	passOK := auth.CheckPassHash(req.PassHash, h.cfg.AdminPassHash)
	if !userOK || !passOK {
		slog.Warn("admin login rejected", "remote", middleware.GetClientIP(r))
		middleware.JSONResponse(w, http.StatusUnauthorized, models.LoginResponse{
			Exito:   false,
			Mensaje: msgCredenciales,
		})
		return
	}

	token := auth.GenerateAdminToken(h.cfg.AdminUser, h.cfg.TokenSecret, h.cfg.TokenTTL, time.Now())

	slog.Info("admin logged in", "admin", h.cfg.AdminUser)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Exito: true,
		Token: token,
	})
}

// GetAdminData handles GET /admin/data
// Unlike the portal, nothing is filtered by publication state.
func (h *AdminHandler) GetAdminData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var data models.AdminDataResponse
	var err error

	load := []struct {
		name string
		fn   func() error
	}{
		{"encuestas", func() (err error) { data.Encuestas, err = loadEncuestas(ctx, h.db, ""); return }},
		{"estadisticas", func() (err error) {
			data.Estadisticas, err = loadEstadisticas(ctx, h.db, h.cfg.Precision)
			return
		}},
		{"votos recientes", func() (err error) { data.VotosRecientes, err = loadVotosRecientes(ctx, h.db); return }},
		{"noticias", func() (err error) { data.Noticias, err = loadNoticias(ctx, h.db, false); return }},
		{"denuncias", func() (err error) { data.Denuncias, err = loadDenuncias(ctx, h.db, false); return }},
		{"foro", func() (err error) { data.Foro, err = loadForo(ctx, h.db); return }},
		{"imagenes", func() (err error) { data.Imagenes, err = loadImagenes(ctx, h.db); return }},
	}
	for _, l := range load {
		if err = l.fn(); err != nil {
			slog.Error("failed to load admin data", "section", l.name, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, data)
}

// ExportEncuestas handles GET /admin/export/encuestas.csv
func (h *AdminHandler) ExportEncuestas(w http.ResponseWriter, r *http.Request) {
	h.exportCSV(w, r, "encuestas.csv", func(rows []export.EncuestaRow, _ []export.CandidatoRow, buf *bytes.Buffer) error {
		return export.WriteEncuestas(buf, rows)
	})
}

// ExportCandidatos handles GET /admin/export/candidatos.csv
// Only options moved out of oversized opciones cells are listed.
func (h *AdminHandler) ExportCandidatos(w http.ResponseWriter, r *http.Request) {
	h.exportCSV(w, r, "candidatos.csv", func(_ []export.EncuestaRow, candidatos []export.CandidatoRow, buf *bytes.Buffer) error {
		return export.WriteCandidatos(buf, candidatos)
	})
}

func (h *AdminHandler) exportCSV(w http.ResponseWriter, r *http.Request, filename string,
	write func([]export.EncuestaRow, []export.CandidatoRow, *bytes.Buffer) error) {
	encuestas, err := loadEncuestas(r.Context(), h.db, "")
	if err != nil {
		slog.Error("failed to load encuestas", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	rows, candidatos, err := export.BuildRows(encuestas)
	if err != nil {
		slog.Error("failed to build export rows", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "No se pudo generar la exportación.")
		return
	}

	// Buffer so a marshal error can still produce a JSON error response
	var buf bytes.Buffer
	if err := write(rows, candidatos, &buf); err != nil {
		slog.Error("failed to write CSV", "error", err, "file", filename)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "No se pudo generar la exportación.")
		return
	}

	slog.Info("export generated", "file", filename, "encuestas", len(rows), "candidatos", len(candidatos))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// loadVotosRecientes returns the newest votes for the dashboard feed
func loadVotosRecientes(ctx context.Context, db *sql.DB) ([]models.VotoReciente, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT encuesta_id, opcion, created_at, region FROM voto
		ORDER BY created_at DESC, id
		LIMIT $1
	`, recentVotesLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votos := []models.VotoReciente{}
	for rows.Next() {
		var v models.VotoReciente
		if err := rows.Scan(&v.EncuestaID, &v.Opcion, &v.Timestamp, &v.Region); err != nil {
			return nil, err
		}
		votos = append(votos, v)
	}
	return votos, rows.Err()
}
