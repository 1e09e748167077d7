// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

All JSON field names are Spanish to match the browser client
(titulo, opciones, cantidad, porcentaje, ...).

# Domain Types

  - Encuesta: a poll with options, target, status, region and election type
  - Opcion: a plain label or a candidate (nombre, partido, foto_url, ...)
  - ResultadosData / ResultadoOpcion: per-option counts and percentages
  - Estadisticas, VotoReciente: dashboard aggregates
  - NewsArticle, DenunciaCiudadana, ForoPregunta, ImageItem: portal content

# Opcion Encoding

A plain option travels as a JSON string, a candidate as an object:

	["Apruebo", "Desapruebo"]
	[{"nombre": "...", "partido": "...", "foto_url": "...", "logo_partido_url": ""}]

Both forms decode into Opcion; Candidato records which form was used so the
value encodes back the same way.

# Constants

Encuesta status values:

	EstadoActiva  = "activa"
	EstadoCerrada = "cerrada"
	EstadoProxima = "proxima"

Denuncia status values:

	DenunciaPendiente = "pendiente"
	DenunciaRevisada  = "revisada"
	DenunciaPublicada = "publicada"

# Patch Requests

Edit requests use pointer fields. A nil field is left untouched.
*/
package models
