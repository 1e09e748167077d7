// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags loads a .env file if present, then returns a Config:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags and Environment Variables

Flags fall back to environment variables:

	-p                 PORT             (default 3318)
	-d                 DATABASE_URL     (required)
	-t                 DATABASE_TYPE    sqlite (default) or postgres
	-redis             REDIS_URL        enables the results cache
	-admin-user        ADMIN_USER       (default admin)
	-admin-pass-hash   ADMIN_PASS_HASH  SHA-256 hex of the admin password (required)
	-token-secret      TOKEN_SECRET     admin token HMAC key (required)
	-dni-salt          DNI_SALT         key for sealing DNI hashes (required)
	-storage           STORAGE_BACKEND  local (default) or gcs
	-seed              SEED_DEMO        seed the demo dataset

Environment only:

	TOKEN_TTL          admin token lifetime (default 12h)
	RESULTS_CACHE_TTL  results cache TTL (default 30s)
	STORAGE_DIR        local image directory (default uploads)
	PUBLIC_BASE_URL    URL prefix for local images (default /uploads)
	GCS_BUCKET         bucket for gcs storage
	PRECISION          reported survey precision in percent (default 95)

CLI flags take precedence over environment variables, and real environment
variables take precedence over .env entries.
*/
package cliparse
