package docs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jcdickinson/rsdoc/internal/markdown"
)

// LatestVersion asks docs.rs for the newest successful build.
const LatestVersion = "latest"

// VersionResolver picks a version when the caller names none. An error
// with a NotFound() method returning true is passed back to the caller;
// any other error falls back to LatestVersion.
type VersionResolver interface {
	DefaultVersion(ctx context.Context, name string) (string, error)
}

type notFounder interface {
	NotFound() bool
}

// Service answers documentation queries from a shared cache.
//
// Default versions returned by the VersionResolver are remembered per crate
// for the cache TTL. Fallbacks to LatestVersion are not remembered.
type Service struct {
	cache    *Cache
	fetcher  CrateFetcher
	versions VersionResolver
	baseURL  string
	logger   *slog.Logger

	mu       sync.Mutex
	defaults map[string]defaultVersion
}

type defaultVersion struct {
	version    string
	resolvedAt time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithVersionResolver sets the resolver used for empty versions. Without
// one, an empty version means LatestVersion.
func WithVersionResolver(r VersionResolver) ServiceOption {
	return func(s *Service) {
		s.versions = r
	}
}

// WithDocsBaseURL sets the origin used for resolved intra-doc links.
// Defaults to DefaultBaseURL.
func WithDocsBaseURL(u string) ServiceOption {
	return func(s *Service) {
		s.baseURL = u
	}
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

func NewService(cache *Cache, fetcher CrateFetcher, opts ...ServiceOption) *Service {
	s := &Service{
		cache:    cache,
		fetcher:  fetcher,
		baseURL:  DefaultBaseURL,
		logger:   slog.Default(),
		defaults: make(map[string]defaultVersion),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache returns the cache backing the service.
func (s *Service) Cache() *Cache {
	return s.cache
}

// Clear empties the crate cache and forgets resolved default versions.
func (s *Service) Clear() {
	s.cache.Clear()
	s.mu.Lock()
	clear(s.defaults)
	s.mu.Unlock()
}

// Crate returns the decoded crate, fetching it on a cache miss. It also
// returns the version that was used.
func (s *Service) Crate(ctx context.Context, name, version string) (*RustdocCrate, string, error) {
	version, err := s.resolveVersion(ctx, name, version)
	if err != nil {
		return nil, "", err
	}
	crate, err := s.cache.GetOrFetch(ctx, s.fetcher, name, version)
	if err != nil {
		return nil, "", err
	}
	return crate, version, nil
}

// CrateDocs renders the listing of a module. An empty modulePath lists the
// crate root.
func (s *Service) CrateDocs(ctx context.Context, name, version, modulePath string) (string, error) {
	crate, version, err := s.Crate(ctx, name, version)
	if err != nil {
		return "", err
	}
	module := crate.Root
	if modulePath != "" {
		id, ok := ResolveModulePath(crate, modulePath)
		if !ok {
			return "", &PathError{Kind: ErrModuleNotFound, Path: modulePath, Crate: name, Version: version}
		}
		module = id
	}
	return FormatModuleListing(crate, module), nil
}

// DocItem renders one item. With resolveLinks, intra-doc links in the
// item's docs point at docs.rs.
func (s *Service) DocItem(ctx context.Context, name, version, itemPath string, resolveLinks bool) (string, error) {
	crate, version, err := s.Crate(ctx, name, version)
	if err != nil {
		return "", err
	}
	item, ok := ResolveItemPath(crate, itemPath)
	if !ok {
		return "", &PathError{Kind: ErrItemNotFound, Path: itemPath, Crate: name, Version: version}
	}
	if resolveLinks && item.Docs != nil {
		if links := DocLinks(crate, item, s.baseURL, name, version); len(links) > 0 {
			// Cached trees are shared; render from a copy.
			resolved := *item
			text := markdown.ResolveLinks(*item.Docs, links)
			resolved.Docs = &text
			item = &resolved
		}
	}
	return FormatItemDetail(crate, item), nil
}

// SearchDocs lists local items whose name contains query.
func (s *Service) SearchDocs(ctx context.Context, name, version, query string, limit int) (string, error) {
	crate, version, err := s.Crate(ctx, name, version)
	if err != nil {
		return "", err
	}
	matches, total := SearchItems(crate, query, limit)
	if len(matches) == 0 {
		return fmt.Sprintf("No items matching '%s' found in %s v%s.", query, name, version), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d items matching '%s' in %s v%s (showing %d):\n\n", total, query, name, version, len(matches))
	b.WriteString(FormatSearchResults(crate, matches))
	return b.String(), nil
}

func (s *Service) resolveVersion(ctx context.Context, name, version string) (string, error) {
	if version != "" {
		return version, nil
	}
	if s.versions == nil {
		return LatestVersion, nil
	}
	if v, ok := s.rememberedDefault(name); ok {
		return v, nil
	}
	v, err := s.versions.DefaultVersion(ctx, name)
	if err != nil {
		var nf notFounder
		if errors.As(err, &nf) && nf.NotFound() {
			return "", err
		}
		s.logger.Warn("resolving default version failed, using latest", "crate", name, "error", err)
		return LatestVersion, nil
	}
	if v == "" {
		return LatestVersion, nil
	}
	s.mu.Lock()
	s.defaults[name] = defaultVersion{version: v, resolvedAt: s.cache.now()}
	s.mu.Unlock()
	return v, nil
}

func (s *Service) rememberedDefault(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.defaults[name]
	if !ok {
		return "", false
	}
	if s.cache.now().Sub(d.resolvedAt) > s.cache.ttl {
		delete(s.defaults, name)
		return "", false
	}
	return d.version, true
}
