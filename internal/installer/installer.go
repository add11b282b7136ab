// Package installer downloads and installs cataloged resources onto disk,
// with HTTPS-only/path-contained validation, retrying downloads with
// exponential backoff, verifying checksums, and writing atomically.
package installer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rsmgr/internal/cachekit"
	"rsmgr/internal/logging"
	"rsmgr/internal/metrics"
	"rsmgr/internal/model"
	"rsmgr/internal/security"
)

func log() *zap.SugaredLogger { return logging.Get("installer") }

// DefaultMaxRetries bounds the total number of download attempts before
// Install gives up.
const DefaultMaxRetries = 3

// DefaultTimeout bounds a single download attempt.
const DefaultTimeout = 30 * time.Second

// Result is the outcome of installing a single resource.
type Result struct {
	ResourceID string
	Success    bool
	Path       string
	Error      string
	Message    string
	Skipped    bool
}

// Progress reports coarse-grained installation milestones. Callbacks are
// best-effort: a callback is never allowed to abort an install.
type Progress func(status string, fraction float64)

// BatchProgress reports per-resource progress within a batch install.
type BatchProgress func(resourceID string, current, total int, status string)

// Installer installs resources under baseDir, retrying failed downloads
// and writing files atomically.
type Installer struct {
	baseDir    string
	maxRetries int
	timeout    time.Duration
	client     *http.Client
	dlCache    *cachekit.Persistent // nil means "no download cache"

	mu       sync.Mutex
	registry map[string]model.Resource
}

// New returns an Installer rooted at baseDir.
func New(baseDir string, maxRetries int, timeout time.Duration) *Installer {
	if maxRetries < 1 {
		maxRetries = DefaultMaxRetries
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Installer{
		baseDir:    baseDir,
		maxRetries: maxRetries,
		timeout:    timeout,
		client:     &http.Client{Timeout: timeout},
		registry:   make(map[string]model.Resource),
	}
}

// WithDownloadCache enables a disk-backed cache of downloaded resource
// bytes, keyed by URL, so repeated installs of the same resource across
// process runs don't re-fetch content that's still within ttl.
func (i *Installer) WithDownloadCache(cache *cachekit.Persistent) *Installer {
	i.dlCache = cache
	return i
}

// RegisterResource makes a resource available to dependency-aware installs
// (InstallWithDependencies, BatchInstall) without requiring every caller
// to pass the full resource set on every call.
func (i *Installer) RegisterResource(r model.Resource) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.registry[r.ID] = r
}

func (i *Installer) lookupRegistered(id string) (model.Resource, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	r, ok := i.registry[id]
	return r, ok
}

func outcomeOf(r Result) string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Success:
		return "success"
	default:
		return "failed"
	}
}

func sendProgress(cb Progress, status string, fraction float64) {
	if cb == nil {
		return
	}
	defer func() { _ = recover() }() // a misbehaving callback must never abort the install
	cb(status, fraction)
}

// Install downloads and writes a single resource, returning a Result
// rather than an error for any expected failure mode (bad URL, bad path,
// download failure, checksum mismatch) so batch callers can keep going.
func (i *Installer) Install(ctx context.Context, resource model.Resource, force bool, progress Progress) (result Result) {
	correlationID := uuid.NewString()
	l := log().With(zap.String("correlation_id", correlationID), zap.String("resource_id", resource.ID))
	l.Debugw("install starting", "type", resource.Type)
	defer func() { metrics.InstallResultsTotal.WithLabelValues(outcomeOf(result)).Inc() }()

	sendProgress(progress, "Starting installation", 0.0)

	url := resourceURL(resource)
	if url == "" {
		l.Warnw("install failed", "reason", "missing url")
		return Result{ResourceID: resource.ID, Success: false, Error: "no url provided in resource"}
	}
	validatedURL, err := security.ValidateURL(url)
	if err != nil {
		l.Warnw("install rejected", "reason", err)
		return Result{ResourceID: resource.ID, Success: false, Error: err.Error()}
	}

	installPathStr := resourceInstallPath(resource)
	if installPathStr == "" {
		l.Warnw("install failed", "reason", "missing install path")
		return Result{ResourceID: resource.ID, Success: false, Error: "no install_path provided in resource"}
	}
	installPathStr = stripHomePrefix(installPathStr)

	installPath, err := security.ValidatePath(installPathStr, i.baseDir)
	if err != nil {
		l.Warnw("install rejected", "reason", err)
		return Result{ResourceID: resource.ID, Success: false, Error: err.Error()}
	}

	if !force {
		if _, err := os.Stat(installPath); err == nil {
			l.Infow("install skipped", "reason", "already installed", "path", installPath)
			return Result{ResourceID: resource.ID, Success: true, Path: installPath, Message: "Already installed", Skipped: true}
		}
	}

	sendProgress(progress, "Downloading", 0.3)
	content, err := i.downloadWithRetry(ctx, validatedURL, progress)
	if err != nil {
		l.Errorw("download failed", "error", err)
		return Result{ResourceID: resource.ID, Success: false, Error: err.Error()}
	}

	sendProgress(progress, "Verifying", 0.7)
	if checksum := resource.Source.Sha256; checksum != "" {
		if err := verifyChecksum(content, checksum); err != nil {
			l.Errorw("checksum verification failed", "error", err)
			return Result{ResourceID: resource.ID, Success: false, Error: err.Error()}
		}
	}

	sendProgress(progress, "Writing file", 0.9)
	finalPath, err := atomicWrite(installPath, content)
	if err != nil {
		l.Errorw("write failed", "error", err)
		return Result{ResourceID: resource.ID, Success: false, Error: err.Error()}
	}

	sendProgress(progress, "Complete", 1.0)
	l.Infow("install complete", "path", finalPath)
	return Result{ResourceID: resource.ID, Success: true, Path: finalPath, Message: "Installation successful"}
}

// resourceURL returns the resource's source URL, synthesizing a
// best-effort default GitHub raw URL when one is missing, exactly as
// spec'd: this keeps minimal test/demo resources installable without
// requiring every field to be fully populated.
func resourceURL(r model.Resource) string {
	if r.Source.URL != "" {
		return r.Source.URL
	}
	if r.ID == "" || r.Type == "" {
		return ""
	}
	return fmt.Sprintf("https://raw.githubusercontent.com/test/repo/main/%s/%s.md", typeDir(string(r.Type)), r.ID)
}

func resourceInstallPath(r model.Resource) string {
	if r.InstallPath != "" {
		return r.InstallPath
	}
	if r.ID == "" || r.Type == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s.md", typeDir(string(r.Type)), r.ID)
}

func typeDir(t string) string {
	if strings.HasSuffix(t, "s") {
		return t
	}
	return t + "s"
}

func stripHomePrefix(path string) string {
	switch {
	case strings.HasPrefix(path, "~/.claude/"):
		return strings.TrimPrefix(path, "~/.claude/")
	case strings.HasPrefix(path, "~"):
		return strings.TrimLeft(strings.TrimPrefix(path, "~"), "/")
	default:
		return path
	}
}

func verifyChecksum(content []byte, expected string) error {
	sum := sha256.Sum256(content)
	actual := hex.EncodeToString(sum[:])
	if actual != expected {
		return fmt.Errorf("%w: checksum mismatch, expected %s, got %s", ErrInstall, expected, actual)
	}
	return nil
}

func atomicWrite(targetPath string, content []byte) (string, error) {
	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: cannot create directory %s: %v", ErrInstall, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp_*.download")
	if err != nil {
		return "", fmt.Errorf("%w: cannot create temp file: %v", ErrInstall, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: atomic write failed: %v", ErrInstall, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: atomic write failed: %v", ErrInstall, err)
	}
	if err := os.Rename(tmpPath, targetPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: atomic write failed: %v", ErrInstall, err)
	}
	return targetPath, nil
}

func (i *Installer) downloadWithRetry(ctx context.Context, url string, progress Progress) ([]byte, error) {
	if i.dlCache != nil {
		if content, ok := i.dlCache.Get(url); ok {
			return content, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt < i.maxRetries; attempt++ {
		content, err := i.downloadOnce(ctx, url)
		if err == nil {
			if i.dlCache != nil {
				if cacheErr := i.dlCache.Set(url, content, 0); cacheErr != nil {
					log().Warnw("download cache write failed", "url", url, "error", cacheErr)
				}
			}
			return content, nil
		}
		lastErr = err

		if attempt < i.maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: download cancelled: %v", ErrInstall, ctx.Err())
			}
		}
	}
	return nil, fmt.Errorf("%w: download failed after %d attempts: %v", ErrInstall, i.maxRetries, lastErr)
}

func (i *Installer) downloadOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
