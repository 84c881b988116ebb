package apihandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"postsorter/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"validation", fmt.Errorf("%w: post ID must be positive", models.ErrValidation), http.StatusBadRequest, CodeValidation, "validation error: post ID must be positive"},
		{"not found", fmt.Errorf("post 3: %w", models.ErrNotFound), http.StatusNotFound, CodeNotFound, "post 3: not found"},
		{"conflict", fmt.Errorf("%w: post 7 is still being categorized", models.ErrConflict), http.StatusConflict, CodeConflict, "conflict: post 7 is still being categorized"},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternal, "SaveHandler: disk on fire"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondWithError(c, "SaveHandler", tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
		})
	}
}
