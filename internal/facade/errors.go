// Package facade is the Embedding ABI: one manager-handle type per service
// (Space, Version, Vector, Search, Snapshot, Token), each exposing methods
// shaped `(json []byte) ([]byte, error)` so a thin cgo layer could wrap them
// directly. Every error that reaches a boundary method is translated once,
// here, into the `{"error":{"code":int,"message":string}}` envelope.
package facade

import (
	"encoding/json"

	"github.com/tinyvectordb/tinyvectordb/internal/catalog"
)

// Error codes from the Embedding ABI contract.
const (
	CodeJSONParse        = 1001
	CodeStore            = 1002
	CodeMemoryAllocation = 1003
	CodeUnknown          = 1099
)

// ErrorEnvelope is the `{"error":{...}}` JSON shape returned on failure.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the ABI error code and a human-readable message.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// codeFor maps a catalog.Kind to an ABI error code. BadRequest always maps
// to JSON_PARSE_ERROR's sibling category (malformed input), Storage/NotFound/
// Conflict/Unauthorized map to STORE_ERROR since they're all catalog-layer
// failures from the caller's point of view, and Internal maps to UNKNOWN_ERROR.
func codeFor(kind catalog.Kind) int {
	switch kind {
	case catalog.BadRequest:
		return CodeJSONParse
	case catalog.NotFound, catalog.Conflict, catalog.Unauthorized, catalog.Storage:
		return CodeStore
	default:
		return CodeUnknown
	}
}

// errorResponse renders err as a marshalled ErrorEnvelope. Marshalling
// itself cannot fail for this fixed shape, but a defensive fallback keeps
// the ABI contract (always return valid JSON) even if it somehow did.
func errorResponse(err error) []byte {
	env := ErrorEnvelope{Error: ErrorBody{
		Code:    codeFor(catalog.KindOf(err)),
		Message: err.Error(),
	}}
	out, marshalErr := json.Marshal(env)
	if marshalErr != nil {
		return []byte(`{"error":{"code":1099,"message":"unknown error"}}`)
	}
	return out
}

// parseError renders a malformed-request-body failure as the ABI's
// JSON_PARSE_ERROR envelope.
func parseError(err error) []byte {
	env := ErrorEnvelope{Error: ErrorBody{Code: CodeJSONParse, Message: err.Error()}}
	out, marshalErr := json.Marshal(env)
	if marshalErr != nil {
		return []byte(`{"error":{"code":1001,"message":"invalid request body"}}`)
	}
	return out
}
