// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encuestape/encuestape/auth"
	"github.com/encuestape/encuestape/cache"
	"github.com/encuestape/encuestape/filestorage"
	"github.com/encuestape/encuestape/models"
	"github.com/encuestape/encuestape/testutil"
)

func TestExecDispatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewActionHandler(db, cfg, cache.Noop{}, filestorage.NewLocalStorage(t.TempDir(), "/uploads"))
	token := testutil.AdminToken(cfg)

	encuestaID := testutil.CreateTestEncuestaIn(t, db, models.EstadoActiva, "PUNO", "MUNICIPAL", "Ana", "Beto")
	testutil.CreateTestEncuesta(t, db, models.EstadoActiva, "Sí", "No")
	preguntaID := testutil.CreateTestForo(t, db, true, "A", "B")

	tests := []struct {
		name           string
		method         string
		query          string
		body           string
		headers        map[string]string
		expectedStatus int
		contains       string
	}{
		{
			name:           "missing action",
			method:         "GET",
			expectedStatus: http.StatusBadRequest,
			contains:       msgAccionRequerida,
		},
		{
			name:           "unknown action",
			method:         "GET",
			query:          "action=borrarTodo",
			expectedStatus: http.StatusBadRequest,
			contains:       msgAccionDesconocida,
		},
		{
			name:           "invalid body",
			method:         "POST",
			body:           `{"action":`,
			expectedStatus: http.StatusBadRequest,
			contains:       msgInvalidJSON,
		},
		{
			name:           "getEncuestas via query",
			method:         "GET",
			query:          "action=getEncuestas",
			expectedStatus: http.StatusOK,
			contains:       `"encuestas":[`,
		},
		{
			name:           "getEncuestas with body filters",
			method:         "POST",
			body:           `{"action": "getEncuestas", "region": "Puno", "tipo": "MUNICIPAL"}`,
			expectedStatus: http.StatusOK,
			contains:       encuestaID,
		},
		{
			name:           "getEncuesta by id",
			method:         "GET",
			query:          "action=getEncuesta&id=" + encuestaID,
			expectedStatus: http.StatusOK,
			contains:       `"region":"PUNO"`,
		},
		{
			name:           "getResultados by encuesta_id",
			method:         "GET",
			query:          "action=getResultados&encuesta_id=" + encuestaID,
			expectedStatus: http.StatusOK,
			contains:       `"porcentaje":"0.0"`,
		},
		{
			name:           "validarDNI in body",
			method:         "POST",
			body:           `{"action": "validarDNI", "encuesta_id": "` + encuestaID + `", "dni": "12345678"}`,
			expectedStatus: http.StatusOK,
			contains:       `"permitido":true`,
		},
		{
			name:           "validarDNI with hash in dni field",
			method:         "POST",
			body:           `{"action": "validarDNI", "encuesta_id": "` + encuestaID + `", "dni": "` + auth.HashDNI("87654321") + `"}`,
			expectedStatus: http.StatusOK,
			contains:       `"permitido":true`,
		},
		{
			name:           "registrarVoto in body",
			method:         "POST",
			body:           `{"action": "registrarVoto", "encuesta_id": "` + encuestaID + `", "opcion": "Ana", "dni": "12345678"}`,
			expectedStatus: http.StatusCreated,
			contains:       msgVotoRegistrado,
		},
		{
			name:           "registrarVoto repeat",
			method:         "POST",
			body:           `{"action": "registrarVoto", "encuesta_id": "` + encuestaID + `", "opcion": "Beto", "dni": "12345678"}`,
			expectedStatus: http.StatusConflict,
			contains:       msgDNIYaVoto,
		},
		{
			name:           "validarDNI hash in dni field after voting",
			method:         "POST",
			body:           `{"action": "validarDNI", "encuesta_id": "` + encuestaID + `", "dni": "` + auth.HashDNI("12345678") + `"}`,
			expectedStatus: http.StatusOK,
			contains:       `"permitido":false`,
		},
		{
			name:           "votarForo via query with index",
			method:         "GET",
			query:          "action=votarForo&pregunta_id=" + preguntaID + "&opcion_index=1",
			expectedStatus: http.StatusOK,
			contains:       msgVotoRegistrado,
		},
		{
			name:           "loginAdmin",
			method:         "POST",
			body:           `{"action": "loginAdmin", "user": "admin", "pass_hash": "` + testutil.AdminPassHash + `"}`,
			expectedStatus: http.StatusOK,
			contains:       `"token":`,
		},
		{
			name:           "admin action without token",
			method:         "POST",
			body:           `{"action": "getAdminData"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "admin action with bad token",
			method:         "POST",
			body:           `{"action": "getAdminData", "token": "forged"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "admin action with body token",
			method:         "POST",
			body:           `{"action": "getAdminData", "token": "` + token + `"}`,
			expectedStatus: http.StatusOK,
			contains:       `"votos_recientes":[`,
		},
		{
			name:           "admin action with bearer header",
			method:         "POST",
			body:           `{"action": "getAdminData"}`,
			headers:        adminHeaders(cfg),
			expectedStatus: http.StatusOK,
		},
		{
			name:   "crearEncuesta",
			method: "POST",
			body: `{"action": "crearEncuesta", "token": "` + token + `", "titulo": "Nueva",
				"opciones": ["Uno", {"nombre": "Dos", "partido": "P"}], "region": "CUSCO"}`,
			expectedStatus: http.StatusCreated,
			contains:       "Encuesta creada.",
		},
		{
			name:   "importarEncuestas",
			method: "POST",
			body: `{"action": "importarEncuestas", "token": "` + token + `",
				"encuestas_csv": "id,titulo,descripcion,estado,opciones,meta_votos,fecha_inicio,fecha_fin,categoria,region,tipo_eleccion,total_votos\nimp1,Importada,,activa,\"[\"\"A\"\",\"\"B\"\"]\",0,,,,PUNO,MUNICIPAL,0\n"}`,
			expectedStatus: http.StatusOK,
			contains:       `"importadas":1`,
		},
		{
			name:           "cerrarEncuesta by id",
			method:         "POST",
			body:           `{"action": "cerrarEncuesta", "token": "` + token + `", "id": "` + encuestaID + `"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "registrarVoto on closed encuesta",
			method:         "POST",
			body:           `{"action": "registrarVoto", "encuesta_id": "` + encuestaID + `", "opcion": "Ana", "dni": "87654321"}`,
			expectedStatus: http.StatusForbidden,
			contains:       msgEncuestaNoActiva,
		},
		{
			name:           "empty POST body uses query action",
			method:         "POST",
			query:          "action=getEstadisticas",
			expectedStatus: http.StatusOK,
			contains:       `"total_votos":1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/exec"
			if tt.query != "" {
				target += "?" + tt.query
			}
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, target, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "text/plain;charset=utf-8")
			} else {
				req = httptest.NewRequest(tt.method, target, nil)
			}
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()

			handler.Exec(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.contains != "" {
				assert.Contains(t, w.Body.String(), tt.contains)
			}
		})
	}

	var total int
	db.QueryRow(`SELECT total_votos FROM foro_pregunta WHERE id = $1`, preguntaID).Scan(&total)
	assert.Equal(t, 1, total, "GET votarForo recorded one vote")
}

func TestActionBodyFromQuery(t *testing.T) {
	q := url.Values{}
	q.Set("action", "votarForo")
	q.Set("pregunta_id", "abc")
	q.Set("opcion_index", "2")
	req := httptest.NewRequest("GET", "/exec?"+q.Encode(), nil)

	body, err := actionBody(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action": "votarForo", "pregunta_id": "abc", "opcion_index": 2}`, string(body))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
	assert.Equal(t, "", firstNonEmpty())
}
