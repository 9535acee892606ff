package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]string{"message": "Folder created successfully"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Folder created successfully"}`, rec.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		body   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "No file uploaded") }, 400, `{"error":"No file uploaded"}`},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "Item not found") }, 404, `{"error":"Item not found"}`},
		{"too many", func(w http.ResponseWriter) { TooManyRequests(w, "slow down") }, 429, `{"error":"slow down"}`},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "Failed to move file") }, 500, `{"error":"Failed to move file"}`},
		{"details", func(w http.ResponseWriter) {
			ErrorWithDetails(w, 500, "Failed to delete item", "connection reset")
		}, 500, `{"error":"Failed to delete item","details":"connection reset"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}
