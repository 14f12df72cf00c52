package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const wildcard = "*"

type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
}

// DefaultCORSConfig allows any origin, method and header.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:     []string{wildcard},
		AllowMethods:     []string{wildcard},
		AllowHeaders:     []string{wildcard},
		ExposeHeaders:    []string{TraceIDHeader},
		AllowCredentials: true,
	}
}

func CORS(cfg CORSConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if origin != "" && contains(cfg.AllowOrigins, origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		} else if origin == "" && contains(cfg.AllowOrigins, wildcard) {
			c.Header("Access-Control-Allow-Origin", wildcard)
		}

		methods := strings.Join(cfg.AllowMethods, ", ")
		if contains(cfg.AllowMethods, wildcard) {
			if requested := c.GetHeader("Access-Control-Request-Method"); requested != "" {
				methods = requested
			}
		}
		c.Header("Access-Control-Allow-Methods", methods)

		headers := strings.Join(cfg.AllowHeaders, ", ")
		if contains(cfg.AllowHeaders, wildcard) {
			if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" {
				headers = requested
			}
		}
		c.Header("Access-Control-Allow-Headers", headers)

		if len(cfg.ExposeHeaders) > 0 {
			c.Header("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ", "))
		}
		if cfg.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == wildcard || v == s {
			return true
		}
	}
	return false
}
