// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encuestape/encuestape/models"
)

func bigBallot(n int) models.Encuesta {
	e := models.Encuesta{ID: "diputados-lima", Titulo: "Diputados Lima", Estado: models.EstadoActiva,
		Region: "LIMA", TipoEleccion: "DIPUTADOS"}
	for i := 0; i < n; i++ {
		e.Opciones = append(e.Opciones, models.Opcion{
			Nombre:         fmt.Sprintf("Candidato Número %d", i),
			Partido:        "Partido " + strings.Repeat("X", 40),
			FotoURL:        "https://example.com/fotos/" + strings.Repeat("f", 60) + ".jpg",
			LogoPartidoURL: "https://example.com/logos/p.png",
			URLHojaVida:    "https://example.com/hv/" + fmt.Sprint(i),
			Numero:         i + 1,
			Candidato:      true,
		})
	}
	return e
}

func TestBuildRows_Inline(t *testing.T) {
	e := models.Encuesta{ID: "e1", Titulo: "¿Aprueba?", Opciones: []models.Opcion{{Nombre: "Sí"}, {Nombre: "No"}}}

	rows, candidatos, err := BuildRows([]models.Encuesta{e})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, candidatos)
	assert.Equal(t, `["Sí","No"]`, rows[0].Opciones)
}

func TestBuildRows_OverflowToCandidatos(t *testing.T) {
	e := bigBallot(300)

	rows, candidatos, err := BuildRows([]models.Encuesta{e})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, CandidatosMarker, rows[0].Opciones)
	require.Len(t, candidatos, 300)
	assert.Equal(t, "diputados-lima", candidatos[0].EncuestaID)
	assert.Equal(t, 300, candidatos[299].Numero)
	assert.True(t, candidatos[0].EsCandidato)
}

func TestCSVRoundTrip(t *testing.T) {
	small := models.Encuesta{ID: "e1", Titulo: "Referéndum", Estado: models.EstadoCerrada, MetaVotos: 500,
		Region: "CUSCO", TipoEleccion: "GENERAL", TotalVotos: 12,
		Opciones: []models.Opcion{{Nombre: "Sí"}, {Nombre: "No, gracias"}}}
	big := bigBallot(300)

	rows, candidatos, err := BuildRows([]models.Encuesta{small, big})
	require.NoError(t, err)

	var encBuf, candBuf bytes.Buffer
	require.NoError(t, WriteEncuestas(&encBuf, rows))
	require.NoError(t, WriteCandidatos(&candBuf, candidatos))
	assert.True(t, strings.HasPrefix(encBuf.String(), "id,titulo,descripcion,estado,opciones"))

	readRows, err := ReadEncuestas(&encBuf)
	require.NoError(t, err)
	readCandidatos, err := ReadCandidatos(&candBuf)
	require.NoError(t, err)

	restored, err := Restore(readRows, readCandidatos)
	require.NoError(t, err)
	require.Len(t, restored, 2)
	assert.Equal(t, small, restored[0])
	assert.Equal(t, big, restored[1])
}

func TestRestore_InvalidOpciones(t *testing.T) {
	_, err := Restore([]EncuestaRow{{ID: "x", Opciones: "{not json"}}, nil)
	assert.Error(t, err)
}
