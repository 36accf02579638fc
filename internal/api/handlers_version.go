package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) spaceIDFromName(c *gin.Context) (int64, bool) {
	req, _ := json.Marshal(map[string]string{"name": c.Param("name")})
	out, err := s.facade.Space.Get(req)
	if err != nil {
		InternalError(c, err.Error())
		return 0, false
	}
	var space struct {
		ID int64 `json:"id"`
	}
	if jsonErr := json.Unmarshal(out, &space); jsonErr != nil || space.ID == 0 {
		WriteFacadeResult(c, http.StatusOK, out, nil)
		return 0, false
	}
	return space.ID, true
}

// addVersion handles POST /api/v1/spaces/:name/versions
func (s *Server) addVersion(c *gin.Context) {
	spaceID, ok := s.spaceIDFromName(c)
	if !ok {
		return
	}
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Tag         string `json:"tag"`
		IsDefault   bool   `json:"is_default"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequestError(c, "invalid request body: "+err.Error())
		return
	}
	req, _ := json.Marshal(map[string]any{
		"space_id":    spaceID,
		"name":        body.Name,
		"description": body.Description,
		"tag":         body.Tag,
		"is_default":  body.IsDefault,
	})
	out, err := s.facade.Version.Add(req)
	WriteFacadeResult(c, http.StatusCreated, out, err)
}

// listVersions handles GET /api/v1/spaces/:name/versions
func (s *Server) listVersions(c *gin.Context) {
	spaceID, ok := s.spaceIDFromName(c)
	if !ok {
		return
	}
	req, _ := json.Marshal(map[string]int64{"space_id": spaceID})
	out, err := s.facade.Version.List(req)
	WriteFacadeResult(c, http.StatusOK, out, err)
}

// getVersion handles GET /api/v1/spaces/:name/versions/:unique_id
func (s *Server) getVersion(c *gin.Context) {
	spaceID, ok := s.spaceIDFromName(c)
	if !ok {
		return
	}
	uniqueID, err := strconv.ParseInt(c.Param("unique_id"), 10, 64)
	if err != nil {
		BadRequestError(c, "unique_id must be an integer")
		return
	}
	req, _ := json.Marshal(map[string]int64{"space_id": spaceID, "unique_id": uniqueID})
	out, facadeErr := s.facade.Version.Get(req)
	WriteFacadeResult(c, http.StatusOK, out, facadeErr)
}
