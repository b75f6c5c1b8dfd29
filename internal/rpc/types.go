package rpc

import (
	"fmt"
	"net/http"

	"github.com/jcdickinson/rsdoc/internal/registry"
)

// CrateDocsRequest is the request body for POST /crate-docs.
type CrateDocsRequest struct {
	Name       string `json:"name"`
	Version    string `json:"version,omitempty"`
	ModulePath string `json:"module_path,omitempty"`
}

// DocItemRequest is the request body for POST /doc-item.
type DocItemRequest struct {
	Name         string `json:"name"`
	Version      string `json:"version,omitempty"`
	ItemPath     string `json:"item_path"`
	ResolveLinks bool   `json:"resolve_links,omitempty"`
}

// SearchDocsRequest is the request body for POST /search-docs.
type SearchDocsRequest struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Query   string `json:"query"`
	Limit   int    `json:"limit,omitempty"`
}

// TextResponse carries rendered documentation.
type TextResponse struct {
	Text string `json:"text"`
}

// SearchCratesRequest is the request body for POST /search-crates.
type SearchCratesRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// SearchCratesResponse is the response body for POST /search-crates.
type SearchCratesResponse struct {
	Results []registry.Crate `json:"results"`
}

// StatusResponse is the response body for GET /status.
type StatusResponse struct {
	Crates      []CachedCrate `json:"crates"`
	MaxEntries  int           `json:"max_entries"`
	TTLSeconds  float64       `json:"ttl_seconds"`
	Hits        uint64        `json:"hits"`
	Misses      uint64        `json:"misses"`
	Evictions   uint64        `json:"evictions"`
	Expirations uint64        `json:"expirations"`
}

type CachedCrate struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ErrorResponse is the body of every non-200 response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RemoteError is a failure reported by the daemon.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned %d", e.Status)
	}
	return e.Message
}

// NotFound reports whether the daemon could not find the crate, module or
// item.
func (e *RemoteError) NotFound() bool {
	return e.Status == http.StatusNotFound
}
