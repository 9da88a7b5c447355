package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandler_StorageErrorIsInternalError(t *testing.T) {
	h := NewHandler(NewService(&failingRepo{updateErr: errors.New("connection reset")}), nil, nil)
	router := gin.New()
	h.RegisterRoutes(router.Group("/admin"))

	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/admin/listings/7/approve"},
		{http.MethodGet, "/admin/listings"},
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		require.Equal(t, http.StatusInternalServerError, w.Code, tc.path)

		var body struct {
			Success bool `json:"success"`
			Error   struct {
				Code    string `json:"code"`
				Details string `json:"details"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
		assert.Equal(t, "connection reset", body.Error.Details)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/admin/listings/abc/approve", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
