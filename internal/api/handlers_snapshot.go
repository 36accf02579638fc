package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// createSnapshot handles POST /api/v1/snapshots
func (s *Server) createSnapshot(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		BadRequestError(c, "failed to read request body: "+err.Error())
		return
	}
	out, facadeErr := s.facade.Snapshot.Create(body)
	WriteFacadeResult(c, http.StatusCreated, out, facadeErr)
}

// restoreSnapshot handles POST /api/v1/snapshots/restore
func (s *Server) restoreSnapshot(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		BadRequestError(c, "failed to read request body: "+err.Error())
		return
	}
	out, facadeErr := s.facade.Snapshot.Restore(body)
	WriteFacadeResult(c, http.StatusOK, out, facadeErr)
}
