// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# CORS Middleware

Enable cross-origin requests for frontend access:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Admin-Token.

# Admin Authentication

Protect admin routes with a signed token check:

	mux.HandleFunc("GET /admin/data", middleware.RequireAdmin(cfg.TokenSecret, h.GetAdminData))

The token is read from "Authorization: Bearer", X-Admin-Token or the token
query parameter. Failures are 401 with a Spanish message.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "mensaje")

Errors are written as {"exito": false, "error": <status text>, "mensaje": ...}.

Parse JSON request bodies (capped at MaxBodyBytes):

	var req models.RegistrarVotoRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "JSON inválido.")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used for IP hashing when deduplicating forum votes and complaint support.
*/
package middleware
