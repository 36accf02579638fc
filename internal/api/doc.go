// Package api provides the operator-facing REST surface over the embedded
// vector database: one route group per facade service
// (space/version/vector/search/snapshot/token), built on Gin with the same
// CORS/rate-limit/body-size middleware stack the rest of this project's
// HTTP tooling uses.
package api
