// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRegion(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"ANCASH", "ANCASH", true},
		{"Áncash", "ANCASH", true},
		{"áncash", "ANCASH", true},
		{"La Libertad", "LA_LIBERTAD", true},
		{"la_libertad", "LA_LIBERTAD", true},
		{"Madre de Dios", "MADRE_DE_DIOS", true},
		{"San Martín", "SAN_MARTIN", true},
		{"Huánuco", "HUANUCO", true},
		{"nacional", "NACIONAL", true},
		{"Atlantis", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeRegion(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegionCatalog(t *testing.T) {
	assert.Len(t, Regiones, 26)
	assert.True(t, ValidRegion(DefaultRegion))
	assert.False(t, ValidRegion("Lima"), "display names are not codes")
	assert.Equal(t, "Junín", RegionName("JUNIN"))
	assert.Equal(t, "XYZ", RegionName("XYZ"))
}

func TestTipoEleccion(t *testing.T) {
	assert.Len(t, TiposEleccion, 6)
	assert.True(t, ValidTipoEleccion("PARLAMENTO_ANDINO"))
	assert.True(t, ValidTipoEleccion(DefaultTipo))
	assert.False(t, ValidTipoEleccion("ALCALDE"))
}

func TestCanonicalCategory(t *testing.T) {
	c, ok := CanonicalCategory(NewsCategories, "politica")
	assert.True(t, ok)
	assert.Equal(t, "Política", c)

	c, ok = CanonicalCategory(DenunciaCategories, "medio ambiente")
	assert.True(t, ok)
	assert.Equal(t, "Medio Ambiente", c)

	assert.False(t, ValidCategory(ForoCategories, "Deportes"))
	assert.True(t, ValidCategory(ForoCategories, "EDUCACION"))
}
