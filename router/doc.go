// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the EncuestaPe API.

# Route Registration

NewRouter creates a CORS-wrapped http.ServeMux with all endpoints:

	h := router.NewRouter(db, cfg, resultsCache, fileStorage)

# Endpoints

Health:

	GET /health

Encuestas and voting (public):

	GET  /encuestas?region=&tipo=       - List encuestas
	GET  /encuestas/regiones            - Active encuestas per region
	GET  /encuestas/{id}                - One encuesta
	GET  /encuestas/{id}/resultados     - Counts and percentages
	POST /encuestas/{id}/validar-dni    - Check a DNI without voting
	POST /encuestas/{id}/votos          - Register a vote
	GET  /estadisticas                  - Global statistics

Portal content (public):

	GET  /portal                   - Encuestas, noticias, denuncias, foro, estadisticas
	GET  /noticias, /noticias/{id} - Published news
	GET  /denuncias                - Published complaints
	POST /denuncias                - Submit a complaint
	POST /denuncias/{id}/apoyar    - Support a complaint
	GET  /foro                     - Forum questions
	POST /foro/{id}/votar          - Vote on a question
	GET  /imagenes                 - Image library
	POST /suscribir                - Newsletter signup

Admin (requires a token from POST /admin/login):

	GET  /admin/data                    - Dashboard data
	GET  /admin/export/encuestas.csv    - Encuesta export
	GET  /admin/export/candidatos.csv   - Overflow candidates export
	POST /admin/import                  - Restore encuestas from both exports
	POST, PUT, DELETE /admin/encuestas  - Encuesta CRUD, plus POST /{id}/cerrar
	POST, PUT, DELETE /admin/noticias
	GET, PUT, DELETE  /admin/denuncias
	POST, PUT, DELETE /admin/foro
	POST, DELETE      /admin/imagenes

Single endpoint for script-style clients:

	GET  /exec?action=...
	POST /exec {"action": "..."}

With local file storage, uploaded images are served under /uploads/.
*/
package router
