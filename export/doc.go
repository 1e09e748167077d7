// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package export converts encuestas to and from spreadsheet-style CSV.

Each encuesta becomes one EncuestaRow with its options as an inline JSON
cell. When that JSON exceeds MaxCellChars the cell holds CandidatosMarker
and the options are written as CandidatoRow entries in a second sheet:

	rows, candidatos, err := export.BuildRows(encuestas)
	err = export.WriteEncuestas(w, rows)

Restore reverses the split.
*/
package export
