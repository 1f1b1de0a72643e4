// Package manifest loads per-service YAML descriptors from a filesystem
// rooted at the services directory: one sub-directory per service id, each
// holding a manifest.yaml.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"gopkg.in/yaml.v3"

	"github.com/coconup/nomadpi-services-api/core"
)

const manifestFilename = "manifest.yaml"

type Store struct {
	fsys   fs.FS
	logger core.Logger
}

type Option func(*Store)

func WithLogger(logger core.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewStore(fsys fs.FS, opts ...Option) (*Store, error) {
	if fsys == nil {
		return nil, fmt.Errorf("manifest: filesystem is required")
	}
	store := &Store{
		fsys:   fsys,
		logger: glog.Nop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(store)
	}
	return store, nil
}

// Load reads and validates a single manifest. The load itself is a pure read;
// no state is cached across calls.
func (s *Store) Load(_ context.Context, serviceID string) (core.ServiceManifest, error) {
	if s == nil || s.fsys == nil {
		return core.ServiceManifest{}, manifestInternal("manifest: store is not configured")
	}
	id := strings.TrimSpace(serviceID)
	if id == "" || id != path.Clean(id) || strings.ContainsAny(id, "/\\") {
		return core.ServiceManifest{}, goerrors.New(
			fmt.Sprintf("manifest: invalid service id %q", serviceID),
			goerrors.CategoryBadInput,
		).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.GatewayErrorBadInput)
	}

	content, err := fs.ReadFile(s.fsys, path.Join(id, manifestFilename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return core.ServiceManifest{}, goerrors.Wrap(err, goerrors.CategoryNotFound,
				fmt.Sprintf("manifest: %s not found", id)).
				WithCode(http.StatusNotFound).
				WithTextCode(core.GatewayErrorNotFound)
		}
		return core.ServiceManifest{}, manifestInternal(fmt.Sprintf("manifest: read %s: %v", id, err))
	}

	manifest := core.ServiceManifest{}
	if err := yaml.Unmarshal(content, &manifest); err != nil {
		return core.ServiceManifest{}, goerrors.Wrap(err, goerrors.CategoryOperation,
			fmt.Sprintf("manifest: parse %s", id)).
			WithCode(http.StatusInternalServerError).
			WithTextCode(core.GatewayErrorInternal)
	}
	manifest.ServiceID = id

	if err := manifest.Validate(); err != nil {
		return core.ServiceManifest{}, goerrors.Wrap(err, goerrors.CategoryValidation,
			fmt.Sprintf("manifest: validate %s", id)).
			WithCode(http.StatusInternalServerError).
			WithTextCode(core.GatewayErrorBadInput)
	}
	return manifest, nil
}

// ListAll enumerates every service directory and loads each manifest. The
// result order follows directory enumeration order; callers must not depend
// on it.
func (s *Store) ListAll(ctx context.Context) ([]core.ServiceManifest, error) {
	ids, err := s.serviceIDs()
	if err != nil {
		return nil, err
	}
	manifests := make([]core.ServiceManifest, 0, len(ids))
	for _, id := range ids {
		manifest, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, manifest)
	}
	return manifests, nil
}

// ListGrouped maps service_type to {service_id, service_name} summaries.
func (s *Store) ListGrouped(ctx context.Context) (map[string][]core.ManifestSummary, error) {
	manifests, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]core.ManifestSummary)
	for _, manifest := range manifests {
		grouped[manifest.ServiceType] = append(grouped[manifest.ServiceType], core.ManifestSummary{
			ServiceID:   manifest.ServiceID,
			ServiceName: manifest.ServiceName,
		})
	}
	return grouped, nil
}

// ValidateAll loads and validates every manifest independently, without
// short-circuiting on the first failure. The per-manifest results are always
// returned; the aggregate error is non-nil when any manifest failed, which
// the surrounding bootstrap treats as fatal.
func (s *Store) ValidateAll(ctx context.Context) ([]core.ManifestValidation, error) {
	ids, err := s.serviceIDs()
	if err != nil {
		return nil, err
	}

	results := make([]core.ManifestValidation, 0, len(ids))
	failed := 0
	for _, id := range ids {
		_, loadErr := s.Load(ctx, id)
		results = append(results, core.ManifestValidation{ServiceID: id, Err: loadErr})
		if loadErr != nil {
			failed++
			s.logger.Error("manifest validation failed",
				"service_id", id,
				"error", loadErr.Error(),
			)
		}
	}

	if failed > 0 {
		return results, goerrors.New(
			fmt.Sprintf("manifest: %d of %d manifests are invalid", failed, len(ids)),
			goerrors.CategoryValidation,
		).
			WithCode(http.StatusInternalServerError).
			WithTextCode(core.GatewayErrorBadInput)
	}
	return results, nil
}

func (s *Store) serviceIDs() ([]string, error) {
	if s == nil || s.fsys == nil {
		return nil, manifestInternal("manifest: store is not configured")
	}
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, manifestInternal(fmt.Sprintf("manifest: read services directory: %v", err))
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		ids = append(ids, entry.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

func manifestInternal(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.GatewayErrorInternal)
}

var _ core.ManifestStore = (*Store)(nil)
