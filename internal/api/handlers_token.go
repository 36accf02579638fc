package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// createToken handles POST /api/v1/tokens
func (s *Server) createToken(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		BadRequestError(c, "failed to read request body: "+err.Error())
		return
	}
	out, facadeErr := s.facade.Token.Create(body)
	WriteFacadeResult(c, http.StatusCreated, out, facadeErr)
}

// validateToken handles POST /api/v1/tokens/validate
func (s *Server) validateToken(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		BadRequestError(c, "failed to read request body: "+err.Error())
		return
	}
	out, facadeErr := s.facade.Token.Validate(body)
	WriteFacadeResult(c, http.StatusOK, out, facadeErr)
}
