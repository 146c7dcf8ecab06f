package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// badPaths are scanner probe fragments that never belong to a legitimate
// request against this API.
var badPaths = []string{
	".env", "php", "mysql", "admin", "cgi-bin", "wp-login.php",
	"wp-admin", "xmlrpc.php", "config.php", "passwd", "shadow",
	"bin/bash", "bin/sh", "cmd.exe", "shell", "exec", "powershell",
	"actuator", "console", "manager/html", "web-console", "login.do",
	"favicon.ico", "geoserver", "goform", "luci", "tomcat",
}

func BlockBadActorsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestPath := c.Request.URL.Path

		for _, path := range badPaths {
			if strings.Contains(requestPath, path) {
				c.JSON(403, gin.H{"error": "Forbidden"})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
