package session

import (
	"github.com/gin-gonic/gin"

	"retailops-dashboard/pkg/errutil"
)

const contextKey = "session"

// Required rejects requests without a valid session cookie before any store
// access happens in the handler.
func Required(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(store.CookieName())
		if err != nil || token == "" {
			_ = c.Error(errutil.Unauthorized("unauthorized"))
			c.Abort()
			return
		}

		sess, err := store.Get(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(errutil.Internal("failed to resolve session", errutil.WithErr(err)))
			c.Abort()
			return
		}
		if sess == nil {
			_ = c.Error(errutil.Unauthorized("unauthorized"))
			c.Abort()
			return
		}

		c.Set(contextKey, sess)
		c.Next()
	}
}

// FromContext returns the session attached by Required, or nil.
func FromContext(c *gin.Context) *Session {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*Session)
	return sess
}
