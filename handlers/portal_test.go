// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encuestape/encuestape/models"
	"github.com/encuestape/encuestape/testutil"
)

func TestGetPortal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewPortalHandler(db, testutil.GetTestConfig())

	t.Run("empty sections are arrays", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/portal", nil)
		w := httptest.NewRecorder()
		handler.GetPortal(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		body := w.Body.String()
		for _, key := range []string{`"encuestas":[]`, `"noticias":[]`, `"denuncias":[]`, `"foro":[]`} {
			assert.Contains(t, body, key)
		}
	})

	encuestaID := testutil.CreateTestEncuesta(t, db, models.EstadoActiva, "Sí", "No")
	testutil.SetTestCounts(t, db, encuestaID, map[string]int{"Sí": 7})
	testutil.CreateTestNoticia(t, db, "Publicada", true, false, time.Now())
	testutil.CreateTestNoticia(t, db, "Borrador", false, false, time.Now())
	testutil.CreateTestDenuncia(t, db, models.DenunciaPublicada)
	testutil.CreateTestDenuncia(t, db, models.DenunciaPendiente)
	testutil.CreateTestForo(t, db, true, "A", "B")

	t.Run("public content only", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/portal", nil)
		w := httptest.NewRecorder()
		handler.GetPortal(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var data models.PortalData
		testutil.AssertJSON(t, w, &data)
		require.Len(t, data.Encuestas, 1)
		assert.Len(t, data.Encuestas[0].Opciones, 2)
		require.Len(t, data.Noticias, 1)
		assert.Equal(t, "Publicada", data.Noticias[0].Titulo)
		require.Len(t, data.Denuncias, 1)
		assert.Equal(t, models.DenunciaPublicada, data.Denuncias[0].Estado)
		assert.Len(t, data.Foro, 1)
		assert.Equal(t, 7, data.Estadisticas.TotalVotos)
		assert.Equal(t, 1, data.Estadisticas.TotalEncuestas)
	})
}
