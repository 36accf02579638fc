package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// upsertVector handles POST /api/v1/spaces/:name/vectors
func (s *Server) upsertVector(c *gin.Context) {
	spaceID, ok := s.spaceIDFromName(c)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		BadRequestError(c, "failed to read request body: "+err.Error())
		return
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		BadRequestError(c, "invalid request body: "+err.Error())
		return
	}
	fields["space_id"], _ = json.Marshal(spaceID)
	req, _ := json.Marshal(fields)
	out, facadeErr := s.facade.Vector.Upsert(req)
	WriteFacadeResult(c, http.StatusCreated, out, facadeErr)
}

// getVector handles GET /api/v1/spaces/:name/vectors/:unique_id
func (s *Server) getVector(c *gin.Context) {
	spaceID, ok := s.spaceIDFromName(c)
	if !ok {
		return
	}
	uniqueID, err := strconv.ParseInt(c.Param("unique_id"), 10, 64)
	if err != nil {
		BadRequestError(c, "unique_id must be an integer")
		return
	}
	versionUniqueID, _ := strconv.ParseInt(c.Query("version_unique_id"), 10, 64)
	req, _ := json.Marshal(map[string]int64{
		"space_id":          spaceID,
		"version_unique_id": versionUniqueID,
		"unique_id":         uniqueID,
	})
	out, facadeErr := s.facade.Vector.Get(req)
	WriteFacadeResult(c, http.StatusOK, out, facadeErr)
}
