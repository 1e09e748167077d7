// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the EncuestaPe API server.

EncuestaPe is a civic polling portal for Peru's 2026 elections: public
encuestas with one vote per DNI, results by option, regional filters, and a
small CMS for news, citizen complaints and a discussion forum.

# Starting the Server

The server reads a .env file, environment variables or CLI flags:

	DATABASE_URL=file:encuestape.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --seed

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - ADMIN_PASS_HASH (--admin-pass-hash): SHA-256 hex of the admin password
  - TOKEN_SECRET (--token-secret): Secret for admin token HMAC
  - DNI_SALT (--dni-salt): Salt applied to DNI hashes before storage

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - ADMIN_USER (--admin-user): Admin user name (default: admin)
  - REDIS_URL (--redis): Results cache; without it every read hits the database
  - STORAGE_BACKEND (--storage): local or gcs, with STORAGE_DIR, PUBLIC_BASE_URL, GCS_BUCKET
  - TOKEN_TTL, RESULTS_CACHE_TTL: Go durations
  - PRECISION: Reported precision percentage (default: 95)
  - SEED_DEMO (--seed): Insert the demo dataset when the database is empty

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (encuestas, voting, results, admin, portal content)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, admin auth, JSON helpers
  - models: Request/response types
  - auth: DNI hashing, admin tokens, IDs
  - catalog: Regions, election types and content categories
  - db: Connection setup and schema creation
  - cache: Optional Redis results cache
  - filestorage: Local or Cloud Storage image uploads
  - export: CSV export and restore of encuestas and candidates
  - seed: Demo dataset
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
