package responses

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"training_tracker/internal/models"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: name is required", models.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("course %w", models.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("failed to create: %w", models.ErrConflict), http.StatusConflict},
		{models.ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, tc := range []struct {
		err       error
		status    int
		wantError string
	}{
		{errors.New("pq: password authentication failed"), http.StatusInternalServerError, "internal server error"},
		{fmt.Errorf("employee %w", models.ErrNotFound), http.StatusNotFound, "employee not found"},
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		Error(c, tc.err, "Failed")

		assert.Equal(t, tc.status, w.Code)
		var body APIResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "error", body.Status)
		assert.Equal(t, "Failed", body.Message)
		assert.Equal(t, tc.wantError, body.Error)
	}
}
