package api

import (
	"github.com/gin-gonic/gin"
)

// healthHandler handles GET /api/v1/health
func (s *Server) healthHandler(c *gin.Context) {
	SuccessResponse(c, "ok", gin.H{"status": "healthy"})
}
