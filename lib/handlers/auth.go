package handlers

import (
	"errors"
	"net/http"

	"github.com/fragforce/fragdonate/lib/df"
	"github.com/fragforce/fragdonate/lib/gcache"
	"github.com/gin-gonic/gin"
)

var ErrBadToken = errors.New("missing or invalid bearer token")

// RequireToken rejects requests that don't carry the groupcache.token bearer token
func RequireToken(c *gin.Context) {
	if !gcache.ValidToken(c.GetHeader(gcache.TokenKey)) {
		df.Log.WithContext(c).WithField("remote.addr", c.ClientIP()).Info("Rejected request with bad token")
		c.AbortWithStatusJSON(http.StatusForbidden, NewErrorResp(ErrBadToken, "Forbidden"))
		return
	}
	c.Next()
}
