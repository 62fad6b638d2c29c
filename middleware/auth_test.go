package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"sharebin/config"
	"sharebin/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func adminTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminKeyMiddleware())
	r.GET("/open", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin": utils.IsAdminFromContext(c)})
	})
	r.GET("/locked", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAdminKeyResolution(t *testing.T) {
	config.AppConfig = &config.Config{AdminKey: "s3cret"}
	r := adminTestRouter()

	tests := []struct {
		name    string
		target  string
		header  string
		isAdmin bool
	}{
		{"no credentials", "/open", "", false},
		{"bare header key", "/open", "s3cret", true},
		{"bearer header key", "/open", "Bearer s3cret", true},
		{"wrong header key", "/open", "nope", false},
		{"query key", "/open?adminKey=s3cret", "", true},
		{"wrong query key", "/open?adminKey=nope", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			if tt.isAdmin {
				assert.Contains(t, w.Body.String(), `"admin":true`)
			} else {
				assert.Contains(t, w.Body.String(), `"admin":false`)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	config.AppConfig = &config.Config{AdminKey: "s3cret"}
	r := adminTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/locked", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")

	req = httptest.NewRequest(http.MethodGet, "/locked", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestEmptySecretNeverAdmin(t *testing.T) {
	config.AppConfig = &config.Config{AdminKey: ""}
	r := adminTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin":false`)
}
