package handlers

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexmeet/backend/internal/dtos"
)

func TestAuthCookiesSecureFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, secure := range []bool{false, true} {
		t.Run(fmt.Sprintf("secure=%t", secure), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			h := NewAuthHandler(nil, 15*time.Minute, time.Hour, secure)
			h.setAuthCookies(c, &dtos.AuthResponse{AccessToken: "access", RefreshToken: "refresh"})

			cookies := w.Result().Cookies()
			require.Len(t, cookies, 2)
			for _, ck := range cookies {
				assert.Equal(t, secure, ck.Secure)
				assert.True(t, ck.HttpOnly)
			}
		})
	}
}
