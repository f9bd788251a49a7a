package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"training_tracker/internal/services"
	"training_tracker/internal/utils"
)

type stubParser map[string]*services.Session

func (p stubParser) Parse(token string) (*services.Session, error) {
	if s, ok := p[token]; ok {
		return s, nil
	}
	return nil, errors.New("bad token")
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.New()
	parser := stubParser{
		"admin-token": {Role: utils.RoleAdmin},
		"emp-token":   {Role: utils.RoleEmployee, EmployeeID: &id},
	}

	r := gin.New()
	r.Use(Authenticate(parser))
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/any", RequireRole(utils.RoleAdmin, utils.RoleEmployee), func(c *gin.Context) {
		sess, _ := CurrentSession(c)
		c.String(http.StatusOK, sess.Role)
	})

	tests := []struct {
		name   string
		path   string
		cookie string
		bearer string
		want   int
	}{
		{name: "no session", path: "/admin", want: http.StatusUnauthorized},
		{name: "bad token", path: "/admin", cookie: "forged", want: http.StatusUnauthorized},
		{name: "admin cookie", path: "/admin", cookie: "admin-token", want: http.StatusNoContent},
		{name: "employee on admin route", path: "/admin", cookie: "emp-token", want: http.StatusForbidden},
		{name: "employee bearer", path: "/any", bearer: "emp-token", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
