// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/encuestape/encuestape/auth"
	"github.com/encuestape/encuestape/cliparse"
	"github.com/encuestape/encuestape/db"
	"github.com/encuestape/encuestape/models"
	_ "modernc.org/sqlite"
)

// AdminPassHash is sha256("admin")
const AdminPassHash = "8c6976e5b5410415bde908bd4dee15dfb167a9c873fc4bb8a81f6f2ab448a918"

// SetupTestDB opens a private in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name, _ := auth.GenerateID(8)
	conn, err := sql.Open(db.SQLite, fmt.Sprintf("file:test_%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Same limit as production; the in-memory database lives as long as this connection
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     "file::memory:",
		DatabaseType:    db.SQLite,
		AdminUser:       "admin",
		AdminPassHash:   AdminPassHash,
		TokenSecret:     "test-token-secret",
		TokenTTL:        time.Hour,
		DNISalt:         "test-dni-salt",
		ResultsCacheTTL: 30 * time.Second,
		StorageBackend:  cliparse.StorageLocal,
		PublicBaseURL:   "/uploads",
		Precision:       95,
	}
}

// AdminToken returns a valid admin token for cfg
func AdminToken(cfg cliparse.Config) string {
	return auth.GenerateAdminToken(cfg.AdminUser, cfg.TokenSecret, cfg.TokenTTL, time.Now())
}

// CreateTestEncuesta inserts an encuesta with plain options and returns its ID.
// estado should be "activa", "cerrada" or "proxima".
func CreateTestEncuesta(t *testing.T, conn *sql.DB, estado string, opciones ...string) string {
	t.Helper()

	return CreateTestEncuestaIn(t, conn, estado, "NACIONAL", "GENERAL", opciones...)
}

// CreateTestEncuestaIn is CreateTestEncuesta with an explicit region and election type
func CreateTestEncuestaIn(t *testing.T, conn *sql.DB, estado, region, tipo string, opciones ...string) string {
	t.Helper()

	id, _ := auth.GenerateID(8)
	_, err := conn.Exec(`
		INSERT INTO encuesta (id, titulo, descripcion, estado, meta_votos, region, tipo_eleccion, total_votos, created_at)
		VALUES ($1, 'Test Encuesta', 'Una encuesta de prueba', $2, 100, $3, $4, 0, $5)
	`, id, estado, region, tipo, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test encuesta: %v", err)
	}

	for i, nombre := range opciones {
		_, err := conn.Exec(`
			INSERT INTO opcion (encuesta_id, posicion, nombre, cantidad)
			VALUES ($1, $2, $3, 0)
		`, id, i, nombre)
		if err != nil {
			t.Fatalf("Failed to create test opcion: %v", err)
		}
	}

	return id
}

// SetTestCounts overwrites the option counts of an encuesta and keeps total_votos in sync
func SetTestCounts(t *testing.T, conn *sql.DB, encuestaID string, counts map[string]int) {
	t.Helper()

	total := 0
	for nombre, n := range counts {
		res, err := conn.Exec(`
			UPDATE opcion SET cantidad = $1 WHERE encuesta_id = $2 AND nombre = $3
		`, n, encuestaID, nombre)
		if err != nil {
			t.Fatalf("Failed to set count: %v", err)
		}
		if rows, _ := res.RowsAffected(); rows != 1 {
			t.Fatalf("Unknown option %q", nombre)
		}
		total += n
	}
	if _, err := conn.Exec(`UPDATE encuesta SET total_votos = $1 WHERE id = $2`, total, encuestaID); err != nil {
		t.Fatalf("Failed to set total: %v", err)
	}
}

// CreateTestNoticia inserts a news article and returns its ID
func CreateTestNoticia(t *testing.T, conn *sql.DB, titulo string, publicado, destacado bool, fecha time.Time) string {
	t.Helper()

	id, _ := auth.GenerateID(8)
	_, err := conn.Exec(`
		INSERT INTO noticia (id, titulo, extracto, contenido, categoria, autor, fecha_publicacion, publicado, destacado)
		VALUES ($1, $2, 'Extracto', 'Contenido', 'Política', 'Redacción', $3, $4, $5)
	`, id, titulo, fecha.UTC(), publicado, destacado)
	if err != nil {
		t.Fatalf("Failed to create test noticia: %v", err)
	}
	return id
}

// CreateTestDenuncia inserts a complaint with the given estado and returns its ID
func CreateTestDenuncia(t *testing.T, conn *sql.DB, estado string) string {
	t.Helper()

	id, _ := auth.GenerateID(8)
	_, err := conn.Exec(`
		INSERT INTO denuncia (id, titulo, descripcion, categoria, region, fecha, estado, votos_apoyo)
		VALUES ($1, 'Denuncia de prueba', 'Descripción', 'Servicios', 'LIMA', $2, $3, 0)
	`, id, time.Now().UTC(), estado)
	if err != nil {
		t.Fatalf("Failed to create test denuncia: %v", err)
	}
	return id
}

// CreateTestForo inserts a forum question and returns its ID
func CreateTestForo(t *testing.T, conn *sql.DB, activa bool, opciones ...string) string {
	t.Helper()

	id, _ := auth.GenerateID(8)
	_, err := conn.Exec(`
		INSERT INTO foro_pregunta (id, pregunta, descripcion, fecha, activa, categoria, total_votos)
		VALUES ($1, '¿Pregunta de prueba?', '', $2, $3, 'Política', 0)
	`, id, time.Now().UTC(), activa)
	if err != nil {
		t.Fatalf("Failed to create test foro: %v", err)
	}
	for i, texto := range opciones {
		_, err := conn.Exec(`
			INSERT INTO foro_opcion (pregunta_id, posicion, texto, votos)
			VALUES ($1, $2, $3, 0)
		`, id, i, texto)
		if err != nil {
			t.Fatalf("Failed to create test foro opcion: %v", err)
		}
	}
	return id
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertMensaje decodes an error response and checks its Spanish message
func AssertMensaje(t *testing.T, w *httptest.ResponseRecorder, expected string) {
	t.Helper()
	var resp models.ErrorResponse
	AssertJSON(t, w, &resp)
	if resp.Mensaje != expected {
		t.Errorf("Expected mensaje %q, got %q", expected, resp.Mensaje)
	}
}
