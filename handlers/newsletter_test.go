// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/encuestape/encuestape/models"
	"github.com/encuestape/encuestape/testutil"
)

func TestSuscribir(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewNewsletterHandler(db, testutil.GetTestConfig())

	tests := []struct {
		name           string
		email          string
		expectedStatus int
	}{
		{"valid", "lector@example.pe", http.StatusOK},
		{"mixed case is the same subscriber", "  Lector@Example.PE ", http.StatusOK},
		{"another", "otra@correo.com", http.StatusOK},
		{"empty", "", http.StatusBadRequest},
		{"no at", "lector.example.pe", http.StatusBadRequest},
		{"no dot in domain", "lector@localhost", http.StatusBadRequest},
		{"display name", "Lector <lector@example.pe>", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/suscribir", models.SuscribirRequest{Email: tt.email}, nil)
			w := httptest.NewRecorder()
			handler.Suscribir(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus == http.StatusOK {
				var resp models.SuscribirResponse
				testutil.AssertJSON(t, w, &resp)
				if !resp.Exito {
					t.Error("Expected exito true")
				}
			}
		})
	}

	var n int
	db.QueryRow(`SELECT COUNT(*) FROM suscriptor`).Scan(&n)
	if n != 2 {
		t.Errorf("Expected 2 subscribers, got %d", n)
	}
	var stored string
	db.QueryRow(`SELECT email FROM suscriptor WHERE email = $1`, "lector@example.pe").Scan(&stored)
	if stored != "lector@example.pe" {
		t.Errorf("Expected lowercased address, got %q", stored)
	}
}
