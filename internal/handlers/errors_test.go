package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", fmt.Errorf("%w: payment x", services.ErrNotFound), http.StatusNotFound},
		{"invalid argument", fmt.Errorf("%w: bad amount", services.ErrInvalidArgument), http.StatusBadRequest},
		{"invalid state", fmt.Errorf("%w: already completed", services.ErrInvalidState), http.StatusBadRequest},
		{"unauthorized", services.ErrUnauthorized, http.StatusUnauthorized},
		{"external service", fmt.Errorf("%w: gateway down", services.ErrExternalService), http.StatusInternalServerError},
		{"unknown", fmt.Errorf("driver: bad connection"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)

			respondServiceError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var body utils.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal error body: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("envelope status = %d, want %d", body.Status, tt.wantStatus)
			}
			if body.Path != "/api/v1/test" {
				t.Errorf("envelope path = %q, want /api/v1/test", body.Path)
			}
			if body.Error != http.StatusText(tt.wantStatus) {
				t.Errorf("envelope error = %q, want %q", body.Error, http.StatusText(tt.wantStatus))
			}
		})
	}
}

func TestRespondServiceErrorHidesUnknownDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/test", nil)

	respondServiceError(c, fmt.Errorf("dsn=root:secret@tcp(db:3306)"))

	var body utils.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if body.Message != "Internal server error" {
		t.Errorf("message = %q, internals should not leak", body.Message)
	}
}
