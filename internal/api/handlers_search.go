package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// search handles POST /api/v1/spaces/:name/search
func (s *Server) search(c *gin.Context) {
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
	out, facadeErr := s.facade.Search.Search(req)
	WriteFacadeResult(c, http.StatusOK, out, facadeErr)
}
