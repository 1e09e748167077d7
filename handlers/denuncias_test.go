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

func TestListDenuncias(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewDenunciaHandler(db, testutil.GetTestConfig())

	publicada := testutil.CreateTestDenuncia(t, db, models.DenunciaPublicada)
	testutil.CreateTestDenuncia(t, db, models.DenunciaPendiente)
	testutil.CreateTestDenuncia(t, db, models.DenunciaRevisada)

	t.Run("public", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/denuncias", nil)
		w := httptest.NewRecorder()
		handler.ListDenuncias(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.DenunciasResponse
		testutil.AssertJSON(t, w, &resp)
		require.Len(t, resp.Denuncias, 1)
		assert.Equal(t, publicada, resp.Denuncias[0].ID)
	})

	t.Run("admin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin/denuncias", nil)
		w := httptest.NewRecorder()
		handler.ListAllDenuncias(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.DenunciasResponse
		testutil.AssertJSON(t, w, &resp)
		assert.Len(t, resp.Denuncias, 3)
	})
}

func TestCrearDenuncia(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewDenunciaHandler(db, testutil.GetTestConfig())

	tests := []struct {
		name           string
		body           models.CrearDenunciaRequest
		expectedStatus int
		categoria      string
		region         string
	}{
		{
			name:           "complete",
			body:           models.CrearDenunciaRequest{Titulo: "Obra inconclusa", Descripcion: "Hace dos años", Categoria: "infraestructura", Region: "San Martín"},
			expectedStatus: http.StatusCreated,
			categoria:      "Infraestructura",
			region:         "SAN_MARTIN",
		},
		{
			name:           "default region",
			body:           models.CrearDenunciaRequest{Titulo: "X", Descripcion: "Y", Categoria: "Corrupcion"},
			expectedStatus: http.StatusCreated,
			categoria:      "Corrupción",
			region:         "NACIONAL",
		},
		{
			name:           "missing descripcion",
			body:           models.CrearDenunciaRequest{Titulo: "X", Categoria: "Otro"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing categoria",
			body:           models.CrearDenunciaRequest{Titulo: "X", Descripcion: "Y"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown categoria",
			body:           models.CrearDenunciaRequest{Titulo: "X", Descripcion: "Y", Categoria: "Deportes"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown region",
			body:           models.CrearDenunciaRequest{Titulo: "X", Descripcion: "Y", Categoria: "Otro", Region: "Gotham"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/denuncias", tt.body, nil)
			w := httptest.NewRecorder()
			handler.CrearDenuncia(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				return
			}
			var resp models.MutationResponse
			testutil.AssertJSON(t, w, &resp)
			assert.Equal(t, msgDenunciaRecibida, resp.Mensaje)

			var categoria, region, estado string
			var apoyo int
			err := db.QueryRow(`SELECT categoria, region, estado, votos_apoyo FROM denuncia WHERE id = $1`, resp.ID).
				Scan(&categoria, &region, &estado, &apoyo)
			require.NoError(t, err)
			assert.Equal(t, tt.categoria, categoria)
			assert.Equal(t, tt.region, region)
			assert.Equal(t, models.DenunciaPendiente, estado, "new complaints await review")
			assert.Equal(t, 0, apoyo)
		})
	}
}

func TestEditarDenuncia(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewDenunciaHandler(db, testutil.GetTestConfig())

	id := testutil.CreateTestDenuncia(t, db, models.DenunciaPendiente)

	tests := []struct {
		name           string
		id             string
		body           string
		expectedStatus int
	}{
		{"publish", id, `{"estado": "publicada"}`, http.StatusOK},
		{"recategorize", id, `{"categoria": "seguridad"}`, http.StatusOK},
		{"retitle with padding", id, `{"titulo": "  Bache en la Av. Grau  "}`, http.StatusOK},
		{"bad estado", id, `{"estado": "archivada"}`, http.StatusBadRequest},
		{"bad categoria", id, `{"categoria": "Deportes"}`, http.StatusBadRequest},
		{"blank titulo", id, `{"titulo": " "}`, http.StatusBadRequest},
		{"unknown", "missing", `{"estado": "revisada"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/admin/denuncias/"+tt.id, strings.NewReader(tt.body))
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()
			handler.EditarDenuncia(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	var estado, categoria, titulo string
	db.QueryRow(`SELECT estado, categoria, titulo FROM denuncia WHERE id = $1`, id).Scan(&estado, &categoria, &titulo)
	assert.Equal(t, models.DenunciaPublicada, estado)
	assert.Equal(t, "Seguridad", categoria)
	assert.Equal(t, "Bache en la Av. Grau", titulo)
}

func TestApoyarDenuncia(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewDenunciaHandler(db, testutil.GetTestConfig())

	publicada := testutil.CreateTestDenuncia(t, db, models.DenunciaPublicada)
	pendiente := testutil.CreateTestDenuncia(t, db, models.DenunciaPendiente)

	tests := []struct {
		name           string
		id             string
		clientIP       string
		expectedStatus int
		mensaje        string
	}{
		{"first supporter", publicada, "203.0.113.1", http.StatusOK, ""},
		{"second supporter", publicada, "203.0.113.2", http.StatusOK, ""},
		{"repeat supporter", publicada, "203.0.113.1", http.StatusConflict, msgDenunciaYaApoyada},
		{"unpublished", pendiente, "203.0.113.3", http.StatusForbidden, msgDenunciaNoPublica},
		{"unknown", "missing", "203.0.113.4", http.StatusNotFound, msgDenunciaNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/denuncias/"+tt.id+"/apoyar", nil)
			req.SetPathValue("id", tt.id)
			req.Header.Set("X-Forwarded-For", tt.clientIP)
			w := httptest.NewRecorder()
			handler.ApoyarDenuncia(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.mensaje != "" {
				testutil.AssertMensaje(t, w, tt.mensaje)
			}
		})
	}

	var apoyo, filas int
	db.QueryRow(`SELECT votos_apoyo FROM denuncia WHERE id = $1`, publicada).Scan(&apoyo)
	db.QueryRow(`SELECT COUNT(*) FROM denuncia_apoyo WHERE denuncia_id = $1`, publicada).Scan(&filas)
	assert.Equal(t, 2, apoyo)
	assert.Equal(t, 2, filas)

	var rawIPs int
	db.QueryRow(`SELECT COUNT(*) FROM denuncia_apoyo WHERE ip_hash LIKE '203.0.113.%'`).Scan(&rawIPs)
	assert.Equal(t, 0, rawIPs, "client addresses are stored hashed")
}

func TestEliminarDenuncia(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewDenunciaHandler(db, testutil.GetTestConfig())

	id := testutil.CreateTestDenuncia(t, db, models.DenunciaPublicada)
	req := httptest.NewRequest("POST", "/denuncias/"+id+"/apoyar", nil)
	req.SetPathValue("id", id)
	w := httptest.NewRecorder()
	handler.ApoyarDenuncia(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	for _, expected := range []int{http.StatusOK, http.StatusNotFound} {
		req := httptest.NewRequest("DELETE", "/admin/denuncias/"+id, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.EliminarDenuncia(w, req)
		testutil.AssertStatus(t, w, expected)
	}

	var n int
	db.QueryRow(`SELECT COUNT(*) FROM denuncia_apoyo`).Scan(&n)
	assert.Equal(t, 0, n, "supporters removed with the denuncia")
}
