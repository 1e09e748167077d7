// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The same statements run on PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	// SQLite drivers only run the first statement of a multi-statement Exec
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

const schema = `
-- Encuestas
CREATE TABLE IF NOT EXISTS encuesta (
    id TEXT PRIMARY KEY,
    titulo TEXT NOT NULL,
    descripcion TEXT NOT NULL DEFAULT '',
    estado TEXT NOT NULL DEFAULT 'activa' CHECK (estado IN ('activa', 'cerrada', 'proxima')),
    meta_votos INTEGER NOT NULL DEFAULT 0,
    fecha_inicio TEXT NOT NULL DEFAULT '',
    fecha_fin TEXT NOT NULL DEFAULT '',
    categoria TEXT NOT NULL DEFAULT '',
    region TEXT NOT NULL DEFAULT 'NACIONAL',
    tipo_eleccion TEXT NOT NULL DEFAULT 'GENERAL',
    total_votos INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_encuesta_region ON encuesta(region);
CREATE INDEX IF NOT EXISTS idx_encuesta_estado ON encuesta(estado);

-- Options with their running counts
CREATE TABLE IF NOT EXISTS opcion (
    encuesta_id TEXT NOT NULL REFERENCES encuesta(id) ON DELETE CASCADE,
    posicion INTEGER NOT NULL,
    nombre TEXT NOT NULL,
    partido TEXT NOT NULL DEFAULT '',
    foto_url TEXT NOT NULL DEFAULT '',
    logo_partido_url TEXT NOT NULL DEFAULT '',
    url_hoja_vida TEXT NOT NULL DEFAULT '',
    numero INTEGER NOT NULL DEFAULT 0,
    es_candidato BOOLEAN NOT NULL DEFAULT FALSE,
    cantidad INTEGER NOT NULL DEFAULT 0 CHECK (cantidad >= 0),
    PRIMARY KEY (encuesta_id, posicion),
    UNIQUE (encuesta_id, nombre)
);

-- One row per (encuesta, sealed DNI hash)
CREATE TABLE IF NOT EXISTS voto_registrado (
    encuesta_id TEXT NOT NULL REFERENCES encuesta(id) ON DELETE CASCADE,
    dni_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (encuesta_id, dni_hash)
);

-- Recent vote feed for the admin dashboard, deliberately unlinked from voto_registrado
CREATE TABLE IF NOT EXISTS voto (
    id TEXT PRIMARY KEY,
    encuesta_id TEXT NOT NULL REFERENCES encuesta(id) ON DELETE CASCADE,
    opcion TEXT NOT NULL,
    region TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_voto_created_at ON voto(created_at);

-- News
CREATE TABLE IF NOT EXISTS noticia (
    id TEXT PRIMARY KEY,
    titulo TEXT NOT NULL,
    extracto TEXT NOT NULL DEFAULT '',
    contenido TEXT NOT NULL,
    categoria TEXT NOT NULL DEFAULT '',
    imagen_url TEXT NOT NULL DEFAULT '',
    autor TEXT NOT NULL DEFAULT '',
    fecha_publicacion TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    publicado BOOLEAN NOT NULL DEFAULT FALSE,
    destacado BOOLEAN NOT NULL DEFAULT FALSE
);

-- Citizen complaints
CREATE TABLE IF NOT EXISTS denuncia (
    id TEXT PRIMARY KEY,
    titulo TEXT NOT NULL,
    descripcion TEXT NOT NULL,
    categoria TEXT NOT NULL,
    region TEXT NOT NULL DEFAULT 'NACIONAL',
    fecha TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    estado TEXT NOT NULL DEFAULT 'pendiente' CHECK (estado IN ('pendiente', 'revisada', 'publicada')),
    votos_apoyo INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS denuncia_apoyo (
    denuncia_id TEXT NOT NULL REFERENCES denuncia(id) ON DELETE CASCADE,
    ip_hash TEXT NOT NULL,
    PRIMARY KEY (denuncia_id, ip_hash)
);

-- Forum
CREATE TABLE IF NOT EXISTS foro_pregunta (
    id TEXT PRIMARY KEY,
    pregunta TEXT NOT NULL,
    descripcion TEXT NOT NULL DEFAULT '',
    fecha TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    activa BOOLEAN NOT NULL DEFAULT TRUE,
    categoria TEXT NOT NULL DEFAULT '',
    total_votos INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS foro_opcion (
    pregunta_id TEXT NOT NULL REFERENCES foro_pregunta(id) ON DELETE CASCADE,
    posicion INTEGER NOT NULL,
    texto TEXT NOT NULL,
    votos INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (pregunta_id, posicion)
);

CREATE TABLE IF NOT EXISTS foro_voto (
    pregunta_id TEXT NOT NULL REFERENCES foro_pregunta(id) ON DELETE CASCADE,
    ip_hash TEXT NOT NULL,
    PRIMARY KEY (pregunta_id, ip_hash)
);

-- Image library
CREATE TABLE IF NOT EXISTS imagen (
    id TEXT PRIMARY KEY,
    nombre TEXT NOT NULL,
    url TEXT NOT NULL,
    objeto TEXT NOT NULL DEFAULT '',
    fecha TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    size INTEGER NOT NULL DEFAULT 0
);

-- Newsletter
CREATE TABLE IF NOT EXISTS suscriptor (
    email TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)
`
