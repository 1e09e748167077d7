// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open supports PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite) and
retries the initial ping:

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections are limited to one open connection. Callers must not
issue a second query while a transaction or a *sql.Rows is still open.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The statements avoid dialect-specific types and functions.

# Tables

  - encuesta: Poll metadata, status and total vote count
  - opcion: Options per poll with their running counts
  - voto_registrado: Sealed DNI hashes, one per voter per poll
  - voto: Recent vote feed (no voter identity)
  - noticia: News articles
  - denuncia, denuncia_apoyo: Citizen complaints and their supporters
  - foro_pregunta, foro_opcion, foro_voto: Forum questions and votes
  - imagen: Image library
  - suscriptor: Newsletter addresses

# Relationships

	encuesta 1──* opcion
	encuesta 1──* voto_registrado
	encuesta 1──* voto
	denuncia 1──* denuncia_apoyo
	foro_pregunta 1──* foro_opcion
	foro_pregunta 1──* foro_voto

SQLite does not enforce the foreign keys by default, so deletes remove
child rows explicitly.

# Errors

IsUniqueViolation recognizes duplicate-key errors from both drivers.
*/
package db
