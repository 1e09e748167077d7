// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/encuestape/encuestape/auth"
	"github.com/encuestape/encuestape/middleware"
)

var (
	ErrEncuestaNotFound = errors.New("encuesta not found")
	ErrEncuestaNoActiva = errors.New("encuesta is not active")
	ErrDNIYaVoto        = errors.New("dni already voted in this encuesta")
	ErrOpcionInvalida   = errors.New("option does not belong to encuesta")
	ErrYaApoyado        = errors.New("client already supported this denuncia")
	ErrYaVotoForo       = errors.New("client already voted on this question")
)

// User-facing messages
const (
	msgDBError          = "Error de conexión con la base de datos."
	msgInvalidJSON      = "JSON inválido."
	msgBodyTooLarge     = "La solicitud es demasiado grande."
	msgIDRequerido      = "Se requiere el id."
	msgEncuestaNotFound = "Encuesta no encontrada."
	msgEncuestaNoActiva = "La encuesta no está activa."
	msgEncuestaCerrada  = "La encuesta ya está cerrada."
	msgDNIInvalido      = "El DNI debe tener 8 dígitos numéricos."
	msgDNIHashInvalido  = "El hash del DNI no es válido."
	msgDNIMismatch      = "El DNI no coincide con su hash."
	msgDNIYaVoto        = "Este DNI ya registró su voto en esta encuesta."
	msgDNIVerificado    = "DNI verificado. Puedes proceder a votar."
	msgVotoRegistrado   = "Voto registrado exitosamente."
	msgOpcionRequerida  = "Debes seleccionar una opción."
	msgOpcionInvalida   = "La opción no pertenece a esta encuesta."
	msgCredenciales     = "Credenciales inválidas."
	msgRegionInvalida   = "Región no válida."
	msgTipoInvalido     = "Tipo de elección no válido."
	msgCategoriaInvalid = "Categoría no válida."
)

// dniErrorMessage maps auth DNI errors to their message
func dniErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidDNI):
		return msgDNIInvalido
	case errors.Is(err, auth.ErrDNIMismatch):
		return msgDNIMismatch
	default:
		return msgDNIHashInvalido
	}
}

// porcentaje formats count/total as a percentage with one decimal.
// A zero total yields "0.0".
func porcentaje(cantidad, total int) string {
	if total <= 0 {
		return "0.0"
	}
	return strconv.FormatFloat(float64(cantidad)/float64(total)*100, 'f', 1, 64)
}

// parseBody decodes the JSON body into v, writing the error response on failure
func parseBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := middleware.ParseJSONBody(r, v)
	if errors.Is(err, middleware.ErrBodyTooLarge) {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return false
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, msgInvalidJSON)
		return false
	}
	return true
}
