// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encuestape/encuestape/cache"
	"github.com/encuestape/encuestape/models"
	"github.com/encuestape/encuestape/testutil"
)

func TestGetResultados(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg, cache.Noop{})

	counted := testutil.CreateTestEncuesta(t, db, models.EstadoActiva, "Ana", "Beto", "Carla")
	testutil.SetTestCounts(t, db, counted, map[string]int{"Ana": 1, "Beto": 1, "Carla": 1})

	empty := testutil.CreateTestEncuesta(t, db, models.EstadoActiva, "Sí", "No")

	skewed := testutil.CreateTestEncuesta(t, db, models.EstadoCerrada, "Sí", "No")
	testutil.SetTestCounts(t, db, skewed, map[string]int{"Sí": 890, "No": 110})

	tests := []struct {
		name           string
		encuestaID     string
		expectedStatus int
		total          int
		opciones       []string
		porcentajes    []string
	}{
		{
			name:           "thirds",
			encuestaID:     counted,
			expectedStatus: http.StatusOK,
			total:          3,
			opciones:       []string{"Ana", "Beto", "Carla"},
			porcentajes:    []string{"33.3", "33.3", "33.3"},
		},
		{
			name:           "no votes",
			encuestaID:     empty,
			expectedStatus: http.StatusOK,
			total:          0,
			opciones:       []string{"Sí", "No"},
			porcentajes:    []string{"0.0", "0.0"},
		},
		{
			name:           "closed encuesta still reports",
			encuestaID:     skewed,
			expectedStatus: http.StatusOK,
			total:          1000,
			opciones:       []string{"Sí", "No"},
			porcentajes:    []string{"89.0", "11.0"},
		},
		{
			name:           "unknown encuesta",
			encuestaID:     "missing",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/encuestas/"+tt.encuestaID+"/resultados", nil)
			req.SetPathValue("id", tt.encuestaID)
			w := httptest.NewRecorder()

			handler.GetResultados(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				testutil.AssertMensaje(t, w, msgEncuestaNotFound)
				return
			}

			var resp models.ResultadosData
			testutil.AssertJSON(t, w, &resp)

			assert.Equal(t, tt.encuestaID, resp.EncuestaID)
			assert.Equal(t, tt.total, resp.TotalVotos)
			require.Len(t, resp.Resultados, len(tt.opciones))

			sum := 0
			for i, ro := range resp.Resultados {
				assert.Equal(t, tt.opciones[i], ro.Opcion, "options keep creation order")
				assert.Equal(t, tt.porcentajes[i], ro.Porcentaje)
				sum += ro.Cantidad
			}
			assert.Equal(t, resp.TotalVotos, sum)
			assert.False(t, resp.UltimaActualizacion.IsZero())
		})
	}
}

func TestGetResultadosPercentagesSumTo100(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg, cache.Noop{})

	opciones := []string{"A", "B", "C", "D", "E", "F", "G"}
	encuestaID := testutil.CreateTestEncuesta(t, db, models.EstadoActiva, opciones...)
	testutil.SetTestCounts(t, db, encuestaID, map[string]int{
		"A": 13, "B": 7, "C": 29, "D": 1, "E": 0, "F": 17, "G": 5,
	})

	req := httptest.NewRequest("GET", "/encuestas/"+encuestaID+"/resultados", nil)
	req.SetPathValue("id", encuestaID)
	w := httptest.NewRecorder()
	handler.GetResultados(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ResultadosData
	testutil.AssertJSON(t, w, &resp)

	total := 0.0
	for _, ro := range resp.Resultados {
		p, err := strconv.ParseFloat(ro.Porcentaje, 64)
		require.NoError(t, err)
		total += p
	}
	// Each value is rounded to one decimal
	assert.InDelta(t, 100.0, total, 0.05*float64(len(opciones)))
}

func TestGetResultadosUsesCache(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	rc := &recordingCache{}
	handler := NewResultsHandler(db, cfg, rc)
	voting := NewVotingHandler(db, cfg, rc)

	encuestaID := testutil.CreateTestEncuesta(t, db, models.EstadoActiva, "Sí", "No")

	get := func() models.ResultadosData {
		req := httptest.NewRequest("GET", "/encuestas/"+encuestaID+"/resultados", nil)
		req.SetPathValue("id", encuestaID)
		w := httptest.NewRecorder()
		handler.GetResultados(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.ResultadosData
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	assert.Equal(t, 0, get().TotalVotos)

	// A write behind the cache's back is not visible until invalidation
	testutil.SetTestCounts(t, db, encuestaID, map[string]int{"Sí": 5})
	assert.Equal(t, 0, get().TotalVotos, "second read served from cache")

	req := testutil.MakeRequest("POST", "/encuestas/"+encuestaID+"/votos",
		models.RegistrarVotoRequest{Opcion: "No", DNI: "60000001"}, nil)
	req.SetPathValue("id", encuestaID)
	w := httptest.NewRecorder()
	voting.RegistrarVoto(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	assert.Equal(t, 6, get().TotalVotos, "vote invalidates the cached entry")
}

func TestGetEstadisticas(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewResultsHandler(db, cfg, cache.Noop{})

	t.Run("empty database", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/estadisticas", nil)
		w := httptest.NewRecorder()
		handler.GetEstadisticas(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var stats models.Estadisticas
		testutil.AssertJSON(t, w, &stats)
		assert.Equal(t, models.Estadisticas{Precision: 95}, stats)
	})

	nacional := testutil.CreateTestEncuesta(t, db, models.EstadoActiva, "Sí", "No")
	testutil.SetTestCounts(t, db, nacional, map[string]int{"Sí": 10, "No": 5})
	puno := testutil.CreateTestEncuestaIn(t, db, models.EstadoActiva, "PUNO", "MUNICIPAL", "Ana", "Beto")
	testutil.SetTestCounts(t, db, puno, map[string]int{"Ana": 3})
	testutil.CreateTestEncuestaIn(t, db, models.EstadoCerrada, "PUNO", "DIPUTADOS", "Ana", "Beto")
	testutil.CreateTestEncuestaIn(t, db, models.EstadoActiva, "CUSCO", "MUNICIPAL", "Ana", "Beto")

	t.Run("aggregates", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/estadisticas", nil)
		w := httptest.NewRecorder()
		handler.GetEstadisticas(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var stats models.Estadisticas
		testutil.AssertJSON(t, w, &stats)
		assert.Equal(t, 18, stats.TotalVotos)
		assert.Equal(t, 4, stats.TotalEncuestas)
		assert.Equal(t, 2, stats.Regiones, "NACIONAL is not a region")
		assert.Equal(t, 95.0, stats.Precision)
	})
}
