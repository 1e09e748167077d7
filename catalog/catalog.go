// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Filter value meaning "no filter"
const Todos = "TODOS"

const (
	DefaultRegion = "NACIONAL"
	DefaultTipo   = "GENERAL"
)

// Election scope constants
const (
	ScopeNacional = "nacional"
	ScopeRegional = "regional"
	ScopeBoth     = "both"
)

type Region struct {
	Code   string `json:"code"`
	Nombre string `json:"nombre"`
}

type TipoEleccion struct {
	Code   string `json:"code"`
	Nombre string `json:"nombre"`
	Scope  string `json:"scope"`
}

// Regiones lists the 25 departments plus NACIONAL, in display order
var Regiones = []Region{
	{"AMAZONAS", "Amazonas"},
	{"ANCASH", "Áncash"},
	{"APURIMAC", "Apurímac"},
	{"AREQUIPA", "Arequipa"},
	{"AYACUCHO", "Ayacucho"},
	{"CAJAMARCA", "Cajamarca"},
	{"CALLAO", "Callao"},
	{"CUSCO", "Cusco"},
	{"HUANCAVELICA", "Huancavelica"},
	{"HUANUCO", "Huánuco"},
	{"ICA", "Ica"},
	{"JUNIN", "Junín"},
	{"LA_LIBERTAD", "La Libertad"},
	{"LAMBAYEQUE", "Lambayeque"},
	{"LIMA", "Lima"},
	{"LORETO", "Loreto"},
	{"MADRE_DE_DIOS", "Madre de Dios"},
	{"MOQUEGUA", "Moquegua"},
	{"PASCO", "Pasco"},
	{"PIURA", "Piura"},
	{"PUNO", "Puno"},
	{"SAN_MARTIN", "San Martín"},
	{"TACNA", "Tacna"},
	{"TUMBES", "Tumbes"},
	{"UCAYALI", "Ucayali"},
	{"NACIONAL", "Nacional"},
}

var TiposEleccion = []TipoEleccion{
	{"PRESIDENTE", "Presidente", ScopeNacional},
	{"DIPUTADOS", "Diputados", ScopeRegional},
	{"SENADORES", "Senadores", ScopeRegional},
	{"PARLAMENTO_ANDINO", "Parlamento Andino", ScopeNacional},
	{"MUNICIPAL", "Municipal", ScopeRegional},
	{"GENERAL", "General", ScopeBoth},
}

var NewsCategories = []string{
	"Local", "Regional", "Policial", "Política",
	"Cultural", "Espectáculos", "Internacional", "Economía",
	"Elecciones 2026", "Opinión", "Candidatos", "Publicidad",
}

var DenunciaCategories = []string{
	"Corrupción", "Servicios", "Seguridad", "Infraestructura", "Medio Ambiente", "Otro",
}

var ForoCategories = []string{
	"Política", "Sociedad", "Economía", "Educación", "Salud",
}

var regionsByKey = func() map[string]string {
	m := make(map[string]string, len(Regiones)*2)
	for _, r := range Regiones {
		m[foldKey(r.Code)] = r.Code
		m[foldKey(r.Nombre)] = r.Code
	}
	return m
}()

// ValidRegion reports whether code is one of the region codes
func ValidRegion(code string) bool {
	for _, r := range Regiones {
		if r.Code == code {
			return true
		}
	}
	return false
}

// RegionName returns the display name for a region code
func RegionName(code string) string {
	for _, r := range Regiones {
		if r.Code == code {
			return r.Nombre
		}
	}
	return code
}

func ValidTipoEleccion(code string) bool {
	for _, t := range TiposEleccion {
		if t.Code == code {
			return true
		}
	}
	return false
}

// NormalizeRegion maps a region code or display name to its code.
// Case, accents, spaces and underscores are ignored: "Áncash", "la libertad"
// and "MADRE_DE_DIOS" all resolve.
func NormalizeRegion(s string) (string, bool) {
	code, ok := regionsByKey[foldKey(s)]
	return code, ok
}

// ValidCategory reports whether c is in the list, ignoring case and accents
func ValidCategory(list []string, c string) bool {
	key := foldKey(c)
	for _, v := range list {
		if foldKey(v) == key {
			return true
		}
	}
	return false
}

// CanonicalCategory returns the list spelling of c
func CanonicalCategory(list []string, c string) (string, bool) {
	key := foldKey(c)
	for _, v := range list {
		if foldKey(v) == key {
			return v, true
		}
	}
	return "", false
}

// foldKey strips diacritics and separators and upper-cases the rest
func foldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range folded {
		if r == ' ' || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
