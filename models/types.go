package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// Encuesta status constants
const (
	EstadoActiva  = "activa"
	EstadoCerrada = "cerrada"
	EstadoProxima = "proxima"
)

// Denuncia status constants
const (
	DenunciaPendiente = "pendiente"
	DenunciaRevisada  = "revisada"
	DenunciaPublicada = "publicada"
)

// Domain types

type Encuesta struct {
	ID           string   `json:"id"`
	Titulo       string   `json:"titulo"`
	Descripcion  string   `json:"descripcion"`
	Estado       string   `json:"estado"`
	Opciones     []Opcion `json:"opciones"`
	MetaVotos    int      `json:"meta_votos"`
	FechaInicio  string   `json:"fecha_inicio"`
	FechaFin     string   `json:"fecha_fin"`
	Categoria    string   `json:"categoria"`
	Region       string   `json:"region"`
	TipoEleccion string   `json:"tipo_eleccion"`
	TotalVotos   int      `json:"total_votos"`
}

// Opcion is either a plain label or a candidate with party data.
// On the wire a plain option is a JSON string.
type Opcion struct {
	Nombre         string `json:"nombre"`
	Partido        string `json:"partido"`
	FotoURL        string `json:"foto_url"`
	LogoPartidoURL string `json:"logo_partido_url"`
	URLHojaVida    string `json:"url_hoja_vida,omitempty"`
	Numero         int    `json:"numero,omitempty"`
	Candidato      bool   `json:"-"`
}

// candidateJSON avoids recursing into Opcion's own (un)marshalers
type candidateJSON struct {
	Nombre         string `json:"nombre"`
	Partido        string `json:"partido"`
	FotoURL        string `json:"foto_url"`
	LogoPartidoURL string `json:"logo_partido_url"`
	URLHojaVida    string `json:"url_hoja_vida,omitempty"`
	Numero         int    `json:"numero,omitempty"`
}

func (o Opcion) MarshalJSON() ([]byte, error) {
	if !o.Candidato {
		return json.Marshal(o.Nombre)
	}
	return json.Marshal(candidateJSON{
		Nombre:         o.Nombre,
		Partido:        o.Partido,
		FotoURL:        o.FotoURL,
		LogoPartidoURL: o.LogoPartidoURL,
		URLHojaVida:    o.URLHojaVida,
		Numero:         o.Numero,
	})
}

func (o *Opcion) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty option")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = Opcion{Nombre: s}
		return nil
	}
	var c candidateJSON
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	*o = Opcion{
		Nombre:         c.Nombre,
		Partido:        c.Partido,
		FotoURL:        c.FotoURL,
		LogoPartidoURL: c.LogoPartidoURL,
		URLHojaVida:    c.URLHojaVida,
		Numero:         c.Numero,
		Candidato:      true,
	}
	return nil
}

type ResultadoOpcion struct {
	Opcion     string `json:"opcion"`
	Cantidad   int    `json:"cantidad"`
	Porcentaje string `json:"porcentaje"`
}

type ResultadosData struct {
	EncuestaID          string            `json:"encuesta_id"`
	TotalVotos          int               `json:"total_votos"`
	Resultados          []ResultadoOpcion `json:"resultados"`
	UltimaActualizacion time.Time         `json:"ultima_actualizacion"`
}

type Estadisticas struct {
	TotalVotos     int     `json:"total_votos"`
	TotalEncuestas int     `json:"total_encuestas"`
	Regiones       int     `json:"regiones"`
	Precision      float64 `json:"precision"`
}

type VotoReciente struct {
	EncuestaID string    `json:"encuesta_id"`
	Opcion     string    `json:"opcion"`
	Timestamp  time.Time `json:"timestamp"`
	Region     string    `json:"region"`
}

type NewsArticle struct {
	ID               string    `json:"id"`
	Titulo           string    `json:"titulo"`
	Extracto         string    `json:"extracto"`
	Contenido        string    `json:"contenido"`
	Categoria        string    `json:"categoria"`
	ImagenURL        string    `json:"imagen_url"`
	Autor            string    `json:"autor"`
	FechaPublicacion time.Time `json:"fecha_publicacion"`
	Publicado        bool      `json:"publicado"`
	Destacado        bool      `json:"destacado"`
}

type DenunciaCiudadana struct {
	ID          string    `json:"id"`
	Titulo      string    `json:"titulo"`
	Descripcion string    `json:"descripcion"`
	Categoria   string    `json:"categoria"`
	Region      string    `json:"region"`
	Fecha       time.Time `json:"fecha"`
	Estado      string    `json:"estado"`
	VotosApoyo  int       `json:"votos_apoyo"`
}

type ForoOpcion struct {
	Texto string `json:"texto"`
	Votos int    `json:"votos"`
}

type ForoPregunta struct {
	ID          string       `json:"id"`
	Pregunta    string       `json:"pregunta"`
	Descripcion string       `json:"descripcion"`
	Opciones    []ForoOpcion `json:"opciones"`
	Fecha       time.Time    `json:"fecha"`
	Activa      bool         `json:"activa"`
	Categoria   string       `json:"categoria"`
	TotalVotos  int          `json:"total_votos"`
}

// ImageItem is an entry of the admin image library.
// URL repeats DataURL for clients of the legacy script API.
type ImageItem struct {
	ID      string    `json:"id"`
	Nombre  string    `json:"nombre"`
	DataURL string    `json:"data_url"`
	URL     string    `json:"url"`
	Fecha   time.Time `json:"fecha"`
	Size    int       `json:"size"`
}

type RegionStat struct {
	Region    string `json:"region"`
	Nombre    string `json:"nombre"`
	Encuestas int    `json:"encuestas"`
}

// Request types

type ValidarDNIRequest struct {
	DNI     string `json:"dni"`
	DNIHash string `json:"dni_hash"`
}

type RegistrarVotoRequest struct {
	EncuestaID string `json:"encuesta_id"`
	Opcion     string `json:"opcion"`
	DNIHash    string `json:"dni_hash"`
	DNI        string `json:"dni"`
	Region     string `json:"region"`
}

type LoginRequest struct {
	User     string `json:"user"`
	PassHash string `json:"pass_hash"`
}

type CrearEncuestaRequest struct {
	Titulo       string   `json:"titulo"`
	Descripcion  string   `json:"descripcion"`
	Estado       string   `json:"estado"`
	Opciones     []Opcion `json:"opciones"`
	MetaVotos    int      `json:"meta_votos"`
	FechaInicio  string   `json:"fecha_inicio"`
	FechaFin     string   `json:"fecha_fin"`
	Categoria    string   `json:"categoria"`
	Region       string   `json:"region"`
	TipoEleccion string   `json:"tipo_eleccion"`
}

// Patch requests: nil fields are left untouched

type EditarEncuestaRequest struct {
	Titulo      *string `json:"titulo"`
	Descripcion *string `json:"descripcion"`
	Estado      *string `json:"estado"`
	MetaVotos   *int    `json:"meta_votos"`
	FechaInicio *string `json:"fecha_inicio"`
	FechaFin    *string `json:"fecha_fin"`
	Categoria   *string `json:"categoria"`
}

type CrearNoticiaRequest struct {
	Titulo           string     `json:"titulo"`
	Extracto         string     `json:"extracto"`
	Contenido        string     `json:"contenido"`
	Categoria        string     `json:"categoria"`
	ImagenURL        string     `json:"imagen_url"`
	Autor            string     `json:"autor"`
	FechaPublicacion *time.Time `json:"fecha_publicacion"`
	Publicado        bool       `json:"publicado"`
	Destacado        bool       `json:"destacado"`
}

type EditarNoticiaRequest struct {
	Titulo    *string `json:"titulo"`
	Extracto  *string `json:"extracto"`
	Contenido *string `json:"contenido"`
	Categoria *string `json:"categoria"`
	ImagenURL *string `json:"imagen_url"`
	Autor     *string `json:"autor"`
	Publicado *bool   `json:"publicado"`
	Destacado *bool   `json:"destacado"`
}

type CrearDenunciaRequest struct {
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
	Categoria   string `json:"categoria"`
	Region      string `json:"region"`
}

type EditarDenunciaRequest struct {
	Titulo      *string `json:"titulo"`
	Descripcion *string `json:"descripcion"`
	Categoria   *string `json:"categoria"`
	Estado      *string `json:"estado"`
}

type CrearForoRequest struct {
	Pregunta    string   `json:"pregunta"`
	Descripcion string   `json:"descripcion"`
	Opciones    []string `json:"opciones"`
	Categoria   string   `json:"categoria"`
}

type EditarForoRequest struct {
	Pregunta    *string `json:"pregunta"`
	Descripcion *string `json:"descripcion"`
	Activa      *bool   `json:"activa"`
	Categoria   *string `json:"categoria"`
}

type ForoVotoRequest struct {
	OpcionIndex *int `json:"opcion_index"`
}

type SuscribirRequest struct {
	Email string `json:"email"`
}

type GuardarImagenRequest struct {
	Nombre string `json:"nombre"`
	URL    string `json:"url"`
}

// Response types

type EncuestasResponse struct {
	Encuestas []Encuesta `json:"encuestas"`
}

type RegionStatsResponse struct {
	Regiones []RegionStat `json:"regiones"`
}

type ValidarDNIResponse struct {
	Permitido bool   `json:"permitido"`
	Mensaje   string `json:"mensaje"`
}

type RegistrarVotoResponse struct {
	Exito   bool   `json:"exito"`
	Mensaje string `json:"mensaje"`
}

type LoginResponse struct {
	Exito   bool   `json:"exito"`
	Token   string `json:"token,omitempty"`
	Mensaje string `json:"mensaje,omitempty"`
}

type AdminDataResponse struct {
	Encuestas      []Encuesta          `json:"encuestas"`
	Estadisticas   Estadisticas        `json:"estadisticas"`
	VotosRecientes []VotoReciente      `json:"votos_recientes"`
	Noticias       []NewsArticle       `json:"noticias"`
	Denuncias      []DenunciaCiudadana `json:"denuncias"`
	Foro           []ForoPregunta      `json:"foro"`
	Imagenes       []ImageItem         `json:"imagenes"`
}

type PortalData struct {
	Encuestas    []Encuesta          `json:"encuestas"`
	Noticias     []NewsArticle       `json:"noticias"`
	Denuncias    []DenunciaCiudadana `json:"denuncias"`
	Foro         []ForoPregunta      `json:"foro"`
	Estadisticas Estadisticas        `json:"estadisticas"`
}

type NoticiasResponse struct {
	Noticias []NewsArticle `json:"noticias"`
}

type DenunciasResponse struct {
	Denuncias []DenunciaCiudadana `json:"denuncias"`
}

type ForoResponse struct {
	Foro []ForoPregunta `json:"foro"`
}

type ImagenesResponse struct {
	Imagenes []ImageItem `json:"imagenes"`
}

type SuscribirResponse struct {
	Exito bool `json:"exito"`
}

// MutationResponse is returned by admin create/edit/delete operations
type MutationResponse struct {
	Exito   bool   `json:"exito"`
	ID      string `json:"id,omitempty"`
	Mensaje string `json:"mensaje,omitempty"`
}

// ImportarEncuestasRequest carries the two CSV files written by the admin export
type ImportarEncuestasRequest struct {
	EncuestasCSV  string `json:"encuestas_csv"`
	CandidatosCSV string `json:"candidatos_csv,omitempty"`
}

type ImportarEncuestasResponse struct {
	Exito      bool `json:"exito"`
	Importadas int  `json:"importadas"`
	Omitidas   int  `json:"omitidas"`
}

// Error response

type ErrorResponse struct {
	Exito   bool   `json:"exito"`
	Error   string `json:"error"`
	Mensaje string `json:"mensaje,omitempty"`
}
