package ginserver

import (
	_ "embed"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

//go:embed swagger/openapi.json
var openapiDoc []byte

//go:embed swagger/index.html
var swaggerPage string

// registerSwaggerRoutes serves the bundled OpenAPI document and a viewer page.
func registerSwaggerRoutes(router gin.IRoutes) {
	const docPath = "/swagger/doc.json"
	page := []byte(strings.ReplaceAll(swaggerPage, "{{SPEC_URL}}", docPath))

	router.GET(docPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", openapiDoc)
	})
	router.GET("/swagger", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})
}
