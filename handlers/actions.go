// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/encuestape/encuestape/cache"
	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/filestorage"
	"github.com/encuestape/encuestape/middleware"
)

const (
	msgAccionDesconocida = "Acción desconocida."
	msgAccionRequerida   = "Se requiere el parámetro action."
)

// actionEnvelope holds the dispatch fields of a script-style request.
// The remaining fields are read by the target handler.
type actionEnvelope struct {
	Action     string `json:"action"`
	Token      string `json:"token"`
	ID         string `json:"id"`
	EncuestaID string `json:"encuesta_id"`
	PreguntaID string `json:"pregunta_id"`
	Region     string `json:"region"`
	Tipo       string `json:"tipo"`
}

// ActionHandler serves the single-endpoint API used by the spreadsheet
// era clients, translating each action into the matching REST handler.
type ActionHandler struct {
	cfg     cliparse.Config
	actions map[string]http.HandlerFunc
}

func NewActionHandler(db *sql.DB, cfg cliparse.Config, rc cache.ResultsCache, fs filestorage.FileStorage) *ActionHandler {
	enc := NewEncuestaHandler(db, cfg, rc)
	vote := NewVotingHandler(db, cfg, rc)
	res := NewResultsHandler(db, cfg, rc)
	adm := NewAdminHandler(db, cfg)
	not := NewNoticiaHandler(db, cfg)
	den := NewDenunciaHandler(db, cfg)
	foro := NewForoHandler(db, cfg)
	img := NewImagenHandler(db, cfg, fs)
	nl := NewNewsletterHandler(db, cfg)
	portal := NewPortalHandler(db, cfg)

	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireAdmin(cfg.TokenSecret, next)
	}

	return &ActionHandler{
		cfg: cfg,
		actions: map[string]http.HandlerFunc{
			// Public reads
			"getEncuestas":     enc.ListEncuestas,
			"getEncuesta":      enc.GetEncuesta,
			"getRegionStats":   enc.RegionStats,
			"getResultados":    res.GetResultados,
			"getEstadisticas":  res.GetEstadisticas,
			"getNoticias":      not.ListNoticias,
			"getNoticia":       not.GetNoticia,
			"getDenuncias":     den.ListDenuncias,
			"getForo":          foro.ListForo,
			"getImagenes":      img.ListImagenes,
			"getAllPublicData": portal.GetPortal,

			// Public writes
			"validarDNI":     vote.ValidarDNI,
			"registrarVoto":  vote.RegistrarVoto,
			"loginAdmin":     adm.LoginAdmin,
			"suscribir":      nl.Suscribir,
			"crearDenuncia":  den.CrearDenuncia,
			"apoyarDenuncia": den.ApoyarDenuncia,
			"votarForo":      foro.Votar,

			// Admin
			"getAdminData":         admin(adm.GetAdminData),
			"crearEncuesta":        admin(enc.CrearEncuesta),
			"editarEncuesta":       admin(enc.EditarEncuesta),
			"cerrarEncuesta":       admin(enc.CerrarEncuesta),
			"eliminarEncuesta":     admin(enc.EliminarEncuesta),
			"crearNoticia":         admin(not.CrearNoticia),
			"editarNoticia":        admin(not.EditarNoticia),
			"eliminarNoticia":      admin(not.EliminarNoticia),
			"editarDenuncia":       admin(den.EditarDenuncia),
			"eliminarDenuncia":     admin(den.EliminarDenuncia),
			"crearForoPregunta":    admin(foro.CrearPregunta),
			"editarForoPregunta":   admin(foro.EditarPregunta),
			"eliminarForoPregunta": admin(foro.EliminarPregunta),
			"importarEncuestas":    admin(adm.ImportEncuestas),
			"guardarImagen":        admin(img.GuardarImagen),
			"eliminarImagen":       admin(img.EliminarImagen),
		},
	}
}

// Exec handles GET /exec?action=... and POST /exec with an action body.
// POST bodies are usually sent as text/plain to skip the CORS preflight.
func (h *ActionHandler) Exec(w http.ResponseWriter, r *http.Request) {
	body, err := actionBody(r)
	if errors.Is(err, middleware.ErrBodyTooLarge) {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	var env actionEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	q := r.URL.Query()
	action := firstNonEmpty(env.Action, q.Get("action"))
	if action == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgAccionRequerida)
		return
	}

	handler, ok := h.actions[action]
	if !ok {
		slog.Warn("unknown action", "action", action)
		middleware.ErrorResponse(w, http.StatusBadRequest, msgAccionDesconocida)
		return
	}

	req := r.Clone(r.Context())
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.ContentLength = int64(len(body))

	req.SetPathValue("id", firstNonEmpty(env.ID, env.EncuestaID, env.PreguntaID,
		q.Get("id"), q.Get("encuesta_id"), q.Get("pregunta_id")))

	if token := firstNonEmpty(env.Token, q.Get("token")); token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("X-Admin-Token", token)
	}

	// Filters sent in the body behave like query parameters
	if env.Region != "" || env.Tipo != "" {
		if env.Region != "" {
			q.Set("region", env.Region)
		}
		if env.Tipo != "" {
			q.Set("tipo", env.Tipo)
		}
		req.URL.RawQuery = q.Encode()
	}

	handler(w, req)
}

// actionBody returns the JSON the target handler will read. GET requests
// carry their fields as query parameters, which are turned into an object.
func actionBody(r *http.Request) ([]byte, error) {
	if r.Method == http.MethodGet {
		fields := make(map[string]interface{})
		for k, v := range r.URL.Query() {
			if len(v) == 0 {
				continue
			}
			if k == "opcion_index" {
				if n, err := strconv.Atoi(v[0]); err == nil {
					fields[k] = n
					continue
				}
			}
			fields[k] = v[0]
		}
		return json.Marshal(fields)
	}

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, middleware.MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > middleware.MaxBodyBytes {
		return nil, middleware.ErrBodyTooLarge
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return []byte("{}"), nil
	}
	return body, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
