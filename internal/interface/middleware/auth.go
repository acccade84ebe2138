package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/pkg/helpers"
	"github.com/oksasatya/bookstore-backend/pkg/response"
)

// Context keys set by Auth
const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
)

// Auth validates the access token from the Authorization bearer header or the
// access_token cookie and sets userID and userEmail in the Gin context.
func Auth(jwt *helpers.JWTManager, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ValidateToken(token)
		if err != nil {
			// unverified claims, for diagnostics only
			fields := logrus.Fields{"request_id": c.GetString("request_id")}
			if uid, uerr := helpers.UserIDFromToken(token); uerr == nil {
				fields["uid"] = uid
			}
			if exp, eerr := helpers.TokenExpiration(token); eerr == nil {
				fields["exp"] = exp
				fields["expired"] = helpers.IsTokenExpired(token, time.Now())
			}
			logger.WithError(err).WithFields(fields).Warn("access token rejected")
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	if tok, err := c.Cookie(helpers.AccessTokenCookie); err == nil {
		return tok
	}
	return ""
}
