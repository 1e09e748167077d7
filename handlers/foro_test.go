// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encuestape/encuestape/models"
	"github.com/encuestape/encuestape/testutil"
)

func TestListForo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewForoHandler(db, testutil.GetTestConfig())

	cerrada := testutil.CreateTestForo(t, db, false, "A", "B")
	abierta := testutil.CreateTestForo(t, db, true, "Sí", "No", "Tal vez")

	req := httptest.NewRequest("GET", "/foro", nil)
	w := httptest.NewRecorder()
	handler.ListForo(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ForoResponse
	testutil.AssertJSON(t, w, &resp)
	require.Len(t, resp.Foro, 2)
	assert.Equal(t, abierta, resp.Foro[0].ID, "active questions first")
	assert.Equal(t, cerrada, resp.Foro[1].ID)

	require.Len(t, resp.Foro[0].Opciones, 3)
	assert.Equal(t, "Tal vez", resp.Foro[0].Opciones[2].Texto)
	assert.Len(t, resp.Foro[1].Opciones, 2)
}

func TestCrearPregunta(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewForoHandler(db, testutil.GetTestConfig())

	tests := []struct {
		name           string
		body           models.CrearForoRequest
		expectedStatus int
		opciones       []string
	}{
		{
			name:           "valid",
			body:           models.CrearForoRequest{Pregunta: "¿Voto obligatorio?", Opciones: []string{"Sí", "No"}, Categoria: "politica"},
			expectedStatus: http.StatusCreated,
			opciones:       []string{"Sí", "No"},
		},
		{
			name:           "blank options dropped",
			body:           models.CrearForoRequest{Pregunta: "¿Y?", Opciones: []string{" A ", "", "B", "  "}},
			expectedStatus: http.StatusCreated,
			opciones:       []string{"A", "B"},
		},
		{
			name:           "one usable option",
			body:           models.CrearForoRequest{Pregunta: "¿Y?", Opciones: []string{"A", " "}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing pregunta",
			body:           models.CrearForoRequest{Opciones: []string{"A", "B"}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad categoria",
			body:           models.CrearForoRequest{Pregunta: "¿Y?", Opciones: []string{"A", "B"}, Categoria: "Deportes"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/admin/foro", tt.body, nil)
			w := httptest.NewRecorder()
			handler.CrearPregunta(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}
			var resp models.MutationResponse
			testutil.AssertJSON(t, w, &resp)

			foro, err := loadForo(t.Context(), db)
			require.NoError(t, err)
			var got *models.ForoPregunta
			for i := range foro {
				if foro[i].ID == resp.ID {
					got = &foro[i]
				}
			}
			require.NotNil(t, got)
			assert.True(t, got.Activa, "new questions start active")
			require.Len(t, got.Opciones, len(tt.opciones))
			for i, o := range got.Opciones {
				assert.Equal(t, tt.opciones[i], o.Texto)
				assert.Equal(t, 0, o.Votos)
			}
		})
	}
}

func TestEditarPregunta(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewForoHandler(db, testutil.GetTestConfig())

	id := testutil.CreateTestForo(t, db, true, "A", "B")

	tests := []struct {
		name           string
		id             string
		body           string
		expectedStatus int
	}{
		{"deactivate", id, `{"activa": false}`, http.StatusOK},
		{"reword", id, `{"pregunta": " ¿Nueva?  ", "categoria": "salud"}`, http.StatusOK},
		{"blank pregunta", id, `{"pregunta": ""}`, http.StatusBadRequest},
		{"bad categoria", id, `{"categoria": "Deportes"}`, http.StatusBadRequest},
		{"unknown", "missing", `{"activa": true}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/admin/foro/"+tt.id, strings.NewReader(tt.body))
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()
			handler.EditarPregunta(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	var pregunta, categoria string
	var activa bool
	db.QueryRow(`SELECT pregunta, categoria, activa FROM foro_pregunta WHERE id = $1`, id).Scan(&pregunta, &categoria, &activa)
	assert.Equal(t, "¿Nueva?", pregunta)
	assert.Equal(t, "Salud", categoria)
	assert.False(t, activa)
}

func TestVotarForo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewForoHandler(db, testutil.GetTestConfig())

	abierta := testutil.CreateTestForo(t, db, true, "Sí", "No")
	cerrada := testutil.CreateTestForo(t, db, false, "Sí", "No")

	tests := []struct {
		name           string
		id             string
		clientIP       string
		body           string
		expectedStatus int
		mensaje        string
	}{
		{"first vote", abierta, "198.51.100.1", `{"opcion_index": 0}`, http.StatusOK, ""},
		{"other client", abierta, "198.51.100.2", `{"opcion_index": 1}`, http.StatusOK, ""},
		{"third client", abierta, "198.51.100.3", `{"opcion_index": 1}`, http.StatusOK, ""},
		{"repeat client", abierta, "198.51.100.1", `{"opcion_index": 1}`, http.StatusConflict, msgForoYaVoto},
		{"index out of range", abierta, "198.51.100.4", `{"opcion_index": 2}`, http.StatusBadRequest, msgForoIndiceMalo},
		{"negative index", abierta, "198.51.100.4", `{"opcion_index": -1}`, http.StatusBadRequest, msgForoIndiceMalo},
		{"missing index", abierta, "198.51.100.4", `{}`, http.StatusBadRequest, msgOpcionRequerida},
		{"inactive question", cerrada, "198.51.100.4", `{"opcion_index": 0}`, http.StatusForbidden, msgForoInactiva},
		{"unknown question", "missing", "198.51.100.4", `{"opcion_index": 0}`, http.StatusNotFound, msgForoNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/foro/"+tt.id+"/votar", strings.NewReader(tt.body))
			req.SetPathValue("id", tt.id)
			req.Header.Set("X-Real-IP", tt.clientIP)
			w := httptest.NewRecorder()
			handler.Votar(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.mensaje != "" {
				testutil.AssertMensaje(t, w, tt.mensaje)
			}
		})
	}

	var total int
	db.QueryRow(`SELECT total_votos FROM foro_pregunta WHERE id = $1`, abierta).Scan(&total)
	assert.Equal(t, 3, total)

	rows, err := db.Query(`SELECT votos FROM foro_opcion WHERE pregunta_id = $1 ORDER BY posicion`, abierta)
	require.NoError(t, err)
	defer rows.Close()
	var votos []int
	for rows.Next() {
		var v int
		require.NoError(t, rows.Scan(&v))
		votos = append(votos, v)
	}
	assert.Equal(t, []int{1, 2}, votos)
}

func TestEliminarPregunta(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewForoHandler(db, testutil.GetTestConfig())

	id := testutil.CreateTestForo(t, db, true, "A", "B")
	req := httptest.NewRequest("POST", "/foro/"+id+"/votar", strings.NewReader(`{"opcion_index": 0}`))
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	handler.Votar(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	for _, expected := range []int{http.StatusOK, http.StatusNotFound} {
		req := httptest.NewRequest("DELETE", "/admin/foro/"+id, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.EliminarPregunta(w, req)
		testutil.AssertStatus(t, w, expected)
	}

	for _, table := range []string{"foro_opcion", "foro_voto"} {
		var n int
		db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n)
		assert.Equal(t, 0, n, table)
	}
}
