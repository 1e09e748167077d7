// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/encuestape/encuestape/cache"
	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/filestorage"
	"github.com/encuestape/encuestape/handlers"
	"github.com/encuestape/encuestape/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, rc cache.ResultsCache, fs filestorage.FileStorage) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	encuestaHandler := handlers.NewEncuestaHandler(db, cfg, rc)
	votingHandler := handlers.NewVotingHandler(db, cfg, rc)
	resultsHandler := handlers.NewResultsHandler(db, cfg, rc)
	adminHandler := handlers.NewAdminHandler(db, cfg)
	noticiaHandler := handlers.NewNoticiaHandler(db, cfg)
	denunciaHandler := handlers.NewDenunciaHandler(db, cfg)
	foroHandler := handlers.NewForoHandler(db, cfg)
	imagenHandler := handlers.NewImagenHandler(db, cfg, fs)
	newsletterHandler := handlers.NewNewsletterHandler(db, cfg)
	portalHandler := handlers.NewPortalHandler(db, cfg)
	actionHandler := handlers.NewActionHandler(db, cfg, rc, fs)

	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.TokenSecret, next))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Encuestas (public)
	mux.HandleFunc("GET /encuestas", middleware.WithLogging(encuestaHandler.ListEncuestas))
	mux.HandleFunc("GET /encuestas/regiones", middleware.WithLogging(encuestaHandler.RegionStats))
	mux.HandleFunc("GET /encuestas/{id}", middleware.WithLogging(encuestaHandler.GetEncuesta))
	mux.HandleFunc("GET /encuestas/{id}/resultados", middleware.WithLogging(resultsHandler.GetResultados))
	mux.HandleFunc("GET /estadisticas", middleware.WithLogging(resultsHandler.GetEstadisticas))

	// Voting (public)
	mux.HandleFunc("POST /encuestas/{id}/validar-dni", middleware.WithLogging(votingHandler.ValidarDNI))
	mux.HandleFunc("POST /encuestas/{id}/votos", middleware.WithLogging(votingHandler.RegistrarVoto))

	// Portal content (public)
	mux.HandleFunc("GET /portal", middleware.WithLogging(portalHandler.GetPortal))
	mux.HandleFunc("GET /noticias", middleware.WithLogging(noticiaHandler.ListNoticias))
	mux.HandleFunc("GET /noticias/{id}", middleware.WithLogging(noticiaHandler.GetNoticia))
	mux.HandleFunc("GET /denuncias", middleware.WithLogging(denunciaHandler.ListDenuncias))
	mux.HandleFunc("POST /denuncias", middleware.WithLogging(denunciaHandler.CrearDenuncia))
	mux.HandleFunc("POST /denuncias/{id}/apoyar", middleware.WithLogging(denunciaHandler.ApoyarDenuncia))
	mux.HandleFunc("GET /foro", middleware.WithLogging(foroHandler.ListForo))
	mux.HandleFunc("POST /foro/{id}/votar", middleware.WithLogging(foroHandler.Votar))
	mux.HandleFunc("GET /imagenes", middleware.WithLogging(imagenHandler.ListImagenes))
	mux.HandleFunc("POST /suscribir", middleware.WithLogging(newsletterHandler.Suscribir))

	// Admin
	mux.HandleFunc("POST /admin/login", middleware.WithLogging(adminHandler.LoginAdmin))
	mux.HandleFunc("GET /admin/data", admin(adminHandler.GetAdminData))
	mux.HandleFunc("GET /admin/export/encuestas.csv", admin(adminHandler.ExportEncuestas))
	mux.HandleFunc("GET /admin/export/candidatos.csv", admin(adminHandler.ExportCandidatos))
	mux.HandleFunc("POST /admin/import", admin(adminHandler.ImportEncuestas))

	mux.HandleFunc("POST /admin/encuestas", admin(encuestaHandler.CrearEncuesta))
	mux.HandleFunc("PUT /admin/encuestas/{id}", admin(encuestaHandler.EditarEncuesta))
	mux.HandleFunc("POST /admin/encuestas/{id}/cerrar", admin(encuestaHandler.CerrarEncuesta))
	mux.HandleFunc("DELETE /admin/encuestas/{id}", admin(encuestaHandler.EliminarEncuesta))

	mux.HandleFunc("POST /admin/noticias", admin(noticiaHandler.CrearNoticia))
	mux.HandleFunc("PUT /admin/noticias/{id}", admin(noticiaHandler.EditarNoticia))
	mux.HandleFunc("DELETE /admin/noticias/{id}", admin(noticiaHandler.EliminarNoticia))

	mux.HandleFunc("GET /admin/denuncias", admin(denunciaHandler.ListAllDenuncias))
	mux.HandleFunc("PUT /admin/denuncias/{id}", admin(denunciaHandler.EditarDenuncia))
	mux.HandleFunc("DELETE /admin/denuncias/{id}", admin(denunciaHandler.EliminarDenuncia))

	mux.HandleFunc("POST /admin/foro", admin(foroHandler.CrearPregunta))
	mux.HandleFunc("PUT /admin/foro/{id}", admin(foroHandler.EditarPregunta))
	mux.HandleFunc("DELETE /admin/foro/{id}", admin(foroHandler.EliminarPregunta))

	mux.HandleFunc("POST /admin/imagenes", admin(imagenHandler.GuardarImagen))
	mux.HandleFunc("DELETE /admin/imagenes/{id}", admin(imagenHandler.EliminarImagen))

	// Script-style single endpoint
	mux.HandleFunc("GET /exec", middleware.WithLogging(actionHandler.Exec))
	mux.HandleFunc("POST /exec", middleware.WithLogging(actionHandler.Exec))

	// Uploaded images, when stored on local disk
	if local, ok := fs.(*filestorage.LocalStorage); ok {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Dir()))))
	}

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("encuestape API v1"))
	})

	return middleware.CORS(mux)
}
