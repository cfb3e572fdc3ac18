// Package ratreader holds the domain types and repository surfaces shared
// between the storage layer, the ingestion pipeline, and the HTTP API.
package ratreader

import "errors"

var (
	ErrConflict        = errors.New("resource already exists")
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Repository is the full persistence surface backing the service.
type Repository interface {
	UserRepo
	SessionRepo
	FeedRepo
	ArticleRepo
}
