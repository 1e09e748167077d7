// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/gocarina/gocsv"

	"github.com/encuestape/encuestape/models"
)

// MaxCellChars is the longest opciones cell written inline; spreadsheet
// cells hold at most 50000 characters
const MaxCellChars = 45000

// CandidatosMarker replaces an opciones cell whose options live in the candidatos sheet
const CandidatosMarker = "@CANDIDATOS"

type EncuestaRow struct {
	ID           string `csv:"id"`
	Titulo       string `csv:"titulo"`
	Descripcion  string `csv:"descripcion"`
	Estado       string `csv:"estado"`
	Opciones     string `csv:"opciones"`
	MetaVotos    int    `csv:"meta_votos"`
	FechaInicio  string `csv:"fecha_inicio"`
	FechaFin     string `csv:"fecha_fin"`
	Categoria    string `csv:"categoria"`
	Region       string `csv:"region"`
	TipoEleccion string `csv:"tipo_eleccion"`
	TotalVotos   int    `csv:"total_votos"`
}

type CandidatoRow struct {
	EncuestaID     string `csv:"encuesta_id"`
	Nombre         string `csv:"nombre"`
	Partido        string `csv:"partido"`
	FotoURL        string `csv:"foto_url"`
	LogoPartidoURL string `csv:"logo_partido_url"`
	URLHojaVida    string `csv:"url_hoja_vida"`
	Numero         int    `csv:"numero"`
	EsCandidato    bool   `csv:"es_candidato"`
}

// BuildRows flattens encuestas into sheet rows. Options whose JSON would
// not fit in one cell are moved to candidato rows.
func BuildRows(encuestas []models.Encuesta) ([]EncuestaRow, []CandidatoRow, error) {
	rows := make([]EncuestaRow, 0, len(encuestas))
	var candidatos []CandidatoRow

	for _, e := range encuestas {
		opciones, err := json.Marshal(e.Opciones)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode opciones of %s: %w", e.ID, err)
		}

		cell := string(opciones)
		if utf8.RuneCount(opciones) > MaxCellChars {
			cell = CandidatosMarker
			for _, o := range e.Opciones {
				candidatos = append(candidatos, CandidatoRow{
					EncuestaID:     e.ID,
					Nombre:         o.Nombre,
					Partido:        o.Partido,
					FotoURL:        o.FotoURL,
					LogoPartidoURL: o.LogoPartidoURL,
					URLHojaVida:    o.URLHojaVida,
					Numero:         o.Numero,
					EsCandidato:    o.Candidato,
				})
			}
		}

		rows = append(rows, EncuestaRow{
			ID:           e.ID,
			Titulo:       e.Titulo,
			Descripcion:  e.Descripcion,
			Estado:       e.Estado,
			Opciones:     cell,
			MetaVotos:    e.MetaVotos,
			FechaInicio:  e.FechaInicio,
			FechaFin:     e.FechaFin,
			Categoria:    e.Categoria,
			Region:       e.Region,
			TipoEleccion: e.TipoEleccion,
			TotalVotos:   e.TotalVotos,
		})
	}

	return rows, candidatos, nil
}

// Restore rebuilds encuestas from sheet rows, resolving CandidatosMarker cells
func Restore(rows []EncuestaRow, candidatos []CandidatoRow) ([]models.Encuesta, error) {
	byEncuesta := make(map[string][]models.Opcion)
	for _, c := range candidatos {
		byEncuesta[c.EncuestaID] = append(byEncuesta[c.EncuestaID], models.Opcion{
			Nombre:         c.Nombre,
			Partido:        c.Partido,
			FotoURL:        c.FotoURL,
			LogoPartidoURL: c.LogoPartidoURL,
			URLHojaVida:    c.URLHojaVida,
			Numero:         c.Numero,
			Candidato:      c.EsCandidato,
		})
	}

	encuestas := make([]models.Encuesta, 0, len(rows))
	for _, r := range rows {
		var opciones []models.Opcion
		if r.Opciones == CandidatosMarker {
			opciones = byEncuesta[r.ID]
		} else if r.Opciones != "" {
			if err := json.Unmarshal([]byte(r.Opciones), &opciones); err != nil {
				return nil, fmt.Errorf("invalid opciones for %s: %w", r.ID, err)
			}
		}

		encuestas = append(encuestas, models.Encuesta{
			ID:           r.ID,
			Titulo:       r.Titulo,
			Descripcion:  r.Descripcion,
			Estado:       r.Estado,
			Opciones:     opciones,
			MetaVotos:    r.MetaVotos,
			FechaInicio:  r.FechaInicio,
			FechaFin:     r.FechaFin,
			Categoria:    r.Categoria,
			Region:       r.Region,
			TipoEleccion: r.TipoEleccion,
			TotalVotos:   r.TotalVotos,
		})
	}
	return encuestas, nil
}

// WriteEncuestas writes encuesta rows as CSV with a header line
func WriteEncuestas(w io.Writer, rows []EncuestaRow) error {
	return gocsv.Marshal(rows, w)
}

// WriteCandidatos writes candidato rows as CSV with a header line
func WriteCandidatos(w io.Writer, rows []CandidatoRow) error {
	return gocsv.Marshal(rows, w)
}

// ReadEncuestas parses CSV written by WriteEncuestas
func ReadEncuestas(r io.Reader) ([]EncuestaRow, error) {
	var rows []EncuestaRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadCandidatos parses CSV written by WriteCandidatos
func ReadCandidatos(r io.Reader) ([]CandidatoRow, error) {
	var rows []CandidatoRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
