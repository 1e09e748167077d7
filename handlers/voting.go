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
	"github.com/encuestape/encuestape/cache"
	"github.com/encuestape/encuestape/catalog"
	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/middleware"
	"github.com/encuestape/encuestape/models"
)

type VotingHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	cache cache.ResultsCache
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config, rc cache.ResultsCache) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg, cache: rc}
}

// ValidarDNI handles POST /encuestas/{id}/validar-dni
// Reports whether the DNI may still vote; it records nothing.
func (h *VotingHandler) ValidarDNI(w http.ResponseWriter, r *http.Request) {
	var req models.ValidarDNIRequest
	if !parseBody(w, r, &req) {
		return
	}

	encuestaID := r.PathValue("id")
	if encuestaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	dniHash, err := auth.ResolveDNIHash(req.DNI, req.DNIHash)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, dniErrorMessage(err))
		return
	}
	sealed := auth.SealDNIHash(dniHash, h.cfg.DNISalt)

	ctx := r.Context()
	var exists bool
	err = h.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM encuesta WHERE id = $1)
	`, encuestaID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query encuesta", "error", err, "encuesta_id", encuestaID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, msgEncuestaNotFound)
		return
	}

	var voted bool
	err = h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM voto_registrado
			WHERE encuesta_id = $1 AND dni_hash = $2
		)
	`, encuestaID, sealed).Scan(&voted)
	if err != nil {
		slog.Error("failed to query voto_registrado", "error", err, "encuesta_id", encuestaID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	if voted {
		middleware.JSONResponse(w, http.StatusOK, models.ValidarDNIResponse{
			Permitido: false,
			Mensaje:   msgDNIYaVoto,
		})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ValidarDNIResponse{
		Permitido: true,
		Mensaje:   msgDNIVerificado,
	})
}

// RegistrarVoto handles POST /encuestas/{id}/votos
func (h *VotingHandler) RegistrarVoto(w http.ResponseWriter, r *http.Request) {
	var req models.RegistrarVotoRequest
	if !parseBody(w, r, &req) {
		return
	}

	encuestaID := r.PathValue("id")
	if encuestaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgIDRequerido)
		return
	}

	opcion := strings.TrimSpace(req.Opcion)
	if opcion == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgOpcionRequerida)
		return
	}

	dniHash, err := auth.ResolveDNIHash(req.DNI, req.DNIHash)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, dniErrorMessage(err))
		return
	}

	region := ""
	if s := strings.TrimSpace(req.Region); s != "" {
		code, ok := catalog.NormalizeRegion(s)
		if !ok {
			middleware.ErrorResponse(w, http.StatusBadRequest, msgRegionInvalida)
			return
		}
		region = code
	}

	sealed := auth.SealDNIHash(dniHash, h.cfg.DNISalt)
	err = RecordVote(r.Context(), h.db, encuestaID, opcion, sealed, region)
	switch {
	case errors.Is(err, ErrEncuestaNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, msgEncuestaNotFound)
		return
	case errors.Is(err, ErrEncuestaNoActiva):
		middleware.ErrorResponse(w, http.StatusForbidden, msgEncuestaNoActiva)
		return
	case errors.Is(err, ErrDNIYaVoto):
		middleware.ErrorResponse(w, http.StatusConflict, msgDNIYaVoto)
		return
	case errors.Is(err, ErrOpcionInvalida):
		middleware.ErrorResponse(w, http.StatusBadRequest, msgOpcionInvalida)
		return
	case err != nil:
		slog.Error("failed to record vote", "error", err, "encuesta_id", encuestaID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, msgDBError)
		return
	}

	h.cache.Invalidate(r.Context(), encuestaID)

	slog.Info("vote registered", "encuesta_id", encuestaID, "region", region)

	middleware.JSONResponse(w, http.StatusCreated, models.RegistrarVotoResponse{
		Exito:   true,
		Mensaje: msgVotoRegistrado,
	})
}

// RecordVote stores one vote in a single transaction: the sealed DNI hash,
// the option count, the poll total and the recent-vote row. An empty region
// falls back to the poll's region. Any failure leaves no dedup record.
func RecordVote(ctx context.Context, db *sql.DB, encuestaID, opcion, sealedHash, region string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var estado, encuestaRegion string
	err = tx.QueryRowContext(ctx, `
		SELECT estado, region FROM encuesta WHERE id = $1
	`, encuestaID).Scan(&estado, &encuestaRegion)
	if err == sql.ErrNoRows {
		return ErrEncuestaNotFound
	}
	if err != nil {
		return err
	}
	if estado != models.EstadoActiva {
		return ErrEncuestaNoActiva
	}
	if region == "" {
		region = encuestaRegion
	}

	now := time.Now().UTC()

	// A concurrent insert of the same hash waits on the first and then skips
	res, err := tx.ExecContext(ctx, `
		INSERT INTO voto_registrado (encuesta_id, dni_hash, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`, encuestaID, sealedHash, now)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDNIYaVoto
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE opcion SET cantidad = cantidad + 1
		WHERE encuesta_id = $1 AND nombre = $2
	`, encuestaID, opcion)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOpcionInvalida
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE encuesta SET total_votos = total_votos + 1 WHERE id = $1
	`, encuestaID); err != nil {
		return err
	}

	votoID, err := auth.GenerateID(8)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO voto (id, encuesta_id, opcion, region, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, votoID, encuestaID, opcion, region, now); err != nil {
		return err
	}

	return tx.Commit()
}
