package installer

import "errors"

// ErrInstall is wrapped by installer failures of its own: a download
// error, a checksum mismatch, an atomic-write failure, or a dependency
// cycle in a batch. URL and path rejections carry the security package's
// errors instead.
var ErrInstall = errors.New("install failed")
