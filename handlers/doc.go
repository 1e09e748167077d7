// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the EncuestaPe API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - EncuestaHandler: Encuesta listing, region counts and admin CRUD
  - VotingHandler: DNI validation and vote registration
  - ResultsHandler: Per-encuesta results and global statistics
  - AdminHandler: Login, dashboard data, CSV export and import
  - NoticiaHandler, DenunciaHandler, ForoHandler: Portal content
  - ImagenHandler: Image library backed by file storage
  - NewsletterHandler: Newsletter subscriptions
  - PortalHandler: Everything the public site needs in one response
  - ActionHandler: The single-endpoint /exec dispatcher

Handlers are created via constructor functions that accept *sql.DB and Config:

	encuestaHandler := handlers.NewEncuestaHandler(db, cfg, resultsCache)

# Voting Flow

	POST /encuestas/{id}/validar-dni → ValidarDNI (records nothing)
	POST /encuestas/{id}/votos       → RegistrarVoto

A DNI may be sent raw (8 digits) or as its client-side SHA-256. Either way
only the salted hash is stored, once per encuesta; a second vote returns 409.
RecordVote runs the dedup insert and both counters in one transaction, so
total_votos always equals the sum of option counts.

# Results

	GET /encuestas/{id}/resultados → GetResultados
	GET /estadisticas              → GetEstadisticas

Percentages are strings with one decimal ("33.3"); an encuesta without votes
reports "0.0" for every option. Results pass through the ResultsCache, which
is invalidated on every vote.

# Admin

Admin handlers sit behind middleware.RequireAdmin. Login compares the
SHA-256 of the password and returns a signed token:

	POST /admin/login → LoginAdmin

# Action Dispatch

ActionHandler.Exec maps ?action=name (or "action" in the body) onto the
REST handlers, for clients of the spreadsheet era API:

	POST /exec {"action": "registrarVoto", "encuesta_id": "...", "opcion": "...", "dni": "..."}
*/
package handlers
