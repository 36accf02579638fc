package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// createSpace handles POST /api/v1/spaces
func (s *Server) createSpace(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		BadRequestError(c, "failed to read request body: "+err.Error())
		return
	}
	out, err := s.facade.Space.Create(body)
	WriteFacadeResult(c, http.StatusCreated, out, err)
}

// listSpaces handles GET /api/v1/spaces
func (s *Server) listSpaces(c *gin.Context) {
	out, err := s.facade.Space.List(nil)
	WriteFacadeResult(c, http.StatusOK, out, err)
}

// getSpace handles GET /api/v1/spaces/:name
func (s *Server) getSpace(c *gin.Context) {
	req, _ := json.Marshal(map[string]string{"name": c.Param("name")})
	out, err := s.facade.Space.Get(req)
	WriteFacadeResult(c, http.StatusOK, out, err)
}

// deleteSpace handles DELETE /api/v1/spaces/:name
func (s *Server) deleteSpace(c *gin.Context) {
	getReq, _ := json.Marshal(map[string]string{"name": c.Param("name")})
	getOut, err := s.facade.Space.Get(getReq)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	var space struct {
		ID int64 `json:"id"`
	}
	if jsonErr := json.Unmarshal(getOut, &space); jsonErr != nil || space.ID == 0 {
		WriteFacadeResult(c, http.StatusOK, getOut, nil)
		return
	}
	delReq, _ := json.Marshal(map[string]int64{"id": space.ID})
	out, err := s.facade.Space.Delete(delReq)
	WriteFacadeResult(c, http.StatusOK, out, err)
}
