// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/encuestape/encuestape/models"
)

//go:embed demo.json
var demoJSON []byte

type seedEncuesta struct {
	models.Encuesta
	Conteos map[string]int `json:"conteos"`
}

type dataset struct {
	Encuestas []seedEncuesta             `json:"encuestas"`
	Noticias  []models.NewsArticle       `json:"noticias"`
	Denuncias []models.DenunciaCiudadana `json:"denuncias"`
	Foro      []models.ForoPregunta      `json:"foro"`
}

// Result counts the rows Apply inserted
type Result struct {
	Encuestas int
	Noticias  int
	Denuncias int
	Foro      int
}

func load() (dataset, error) {
	var d dataset
	if err := json.Unmarshal(demoJSON, &d); err != nil {
		return dataset{}, fmt.Errorf("invalid demo dataset: %w", err)
	}
	for i := range d.Encuestas {
		e := &d.Encuestas[i]
		total := 0
		for nombre, n := range e.Conteos {
			if !hasOpcion(e.Opciones, nombre) {
				return dataset{}, fmt.Errorf("demo encuesta %s: count for unknown option %q", e.ID, nombre)
			}
			total += n
		}
		e.TotalVotos = total
	}
	for i := range d.Foro {
		total := 0
		for _, o := range d.Foro[i].Opciones {
			total += o.Votos
		}
		d.Foro[i].TotalVotos = total
	}
	return d, nil
}

func hasOpcion(opciones []models.Opcion, nombre string) bool {
	for _, o := range opciones {
		if o.Nombre == nombre {
			return true
		}
	}
	return false
}

// Apply inserts every demo item whose id is not already stored.
// Existing rows, including their counts, are left untouched.
func Apply(ctx context.Context, conn *sql.DB) (Result, error) {
	var res Result
	d, err := load()
	if err != nil {
		return res, err
	}

	for _, e := range d.Encuestas {
		inserted, err := insertEncuesta(ctx, conn, e)
		if err != nil {
			return res, err
		}
		if inserted {
			res.Encuestas++
		}
	}

	for _, n := range d.Noticias {
		r, err := conn.ExecContext(ctx, `
			INSERT INTO noticia (id, titulo, extracto, contenido, categoria, imagen_url, autor, fecha_publicacion, publicado, destacado)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO NOTHING
		`, n.ID, n.Titulo, n.Extracto, n.Contenido, n.Categoria, n.ImagenURL, n.Autor, n.FechaPublicacion.UTC(), n.Publicado, n.Destacado)
		if err != nil {
			return res, fmt.Errorf("failed to seed noticia %s: %w", n.ID, err)
		}
		res.Noticias += affected(r)
	}

	for _, dn := range d.Denuncias {
		r, err := conn.ExecContext(ctx, `
			INSERT INTO denuncia (id, titulo, descripcion, categoria, region, fecha, estado, votos_apoyo)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING
		`, dn.ID, dn.Titulo, dn.Descripcion, dn.Categoria, dn.Region, dn.Fecha.UTC(), dn.Estado, dn.VotosApoyo)
		if err != nil {
			return res, fmt.Errorf("failed to seed denuncia %s: %w", dn.ID, err)
		}
		res.Denuncias += affected(r)
	}

	for _, f := range d.Foro {
		inserted, err := insertForo(ctx, conn, f)
		if err != nil {
			return res, err
		}
		if inserted {
			res.Foro++
		}
	}

	return res, nil
}

func insertEncuesta(ctx context.Context, conn *sql.DB, e seedEncuesta) (bool, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	r, err := tx.ExecContext(ctx, `
		INSERT INTO encuesta (id, titulo, descripcion, estado, meta_votos, fecha_inicio, fecha_fin, categoria, region, tipo_eleccion, total_votos)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`, e.ID, e.Titulo, e.Descripcion, e.Estado, e.MetaVotos, e.FechaInicio, e.FechaFin, e.Categoria, e.Region, e.TipoEleccion, e.TotalVotos)
	if err != nil {
		return false, fmt.Errorf("failed to seed encuesta %s: %w", e.ID, err)
	}
	if affected(r) == 0 {
		return false, nil
	}

	for i, o := range e.Opciones {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO opcion (encuesta_id, posicion, nombre, partido, foto_url, logo_partido_url, url_hoja_vida, numero, es_candidato, cantidad)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, e.ID, i, o.Nombre, o.Partido, o.FotoURL, o.LogoPartidoURL, o.URLHojaVida, o.Numero, o.Candidato, e.Conteos[o.Nombre])
		if err != nil {
			return false, fmt.Errorf("failed to seed opcion %q of %s: %w", o.Nombre, e.ID, err)
		}
	}

	return true, tx.Commit()
}

func insertForo(ctx context.Context, conn *sql.DB, f models.ForoPregunta) (bool, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	r, err := tx.ExecContext(ctx, `
		INSERT INTO foro_pregunta (id, pregunta, descripcion, fecha, activa, categoria, total_votos)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, f.ID, f.Pregunta, f.Descripcion, f.Fecha.UTC(), f.Activa, f.Categoria, f.TotalVotos)
	if err != nil {
		return false, fmt.Errorf("failed to seed foro %s: %w", f.ID, err)
	}
	if affected(r) == 0 {
		return false, nil
	}

	for i, o := range f.Opciones {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO foro_opcion (pregunta_id, posicion, texto, votos)
			VALUES ($1, $2, $3, $4)
		`, f.ID, i, o.Texto, o.Votos)
		if err != nil {
			return false, fmt.Errorf("failed to seed foro opcion of %s: %w", f.ID, err)
		}
	}

	return true, tx.Commit()
}

func affected(r sql.Result) int {
	n, err := r.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}
