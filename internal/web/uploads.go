package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/JonMunkholm/usercount/internal/core"
	"github.com/JonMunkholm/usercount/internal/logging"
	"github.com/JonMunkholm/usercount/internal/session"
)

// Request errors raised by the web layer itself.
var (
	errInvalidUpload    = errors.New("invalid upload")
	errInvalidSelection = errors.New("invalid selection")
)

// multipartMemory is how much of a multipart form is kept in memory;
// the rest spills to temporary files.
const multipartMemory = 32 << 20

// uploadFiles loads every file of a multipart upload into the session.
//
// A file that fails to load is still added, carrying its error, so the user
// sees why. Only request-level failures are returned: an unreadable form,
// no files, too many files, a busy load limiter or a cancelled request.
func (s *Server) uploadFiles(w http.ResponseWriter, r *http.Request, sess *session.Session) ([]*session.File, error) {
	maxFile := s.analyzer.MaxFileSize()
	maxFiles := s.cfg.Upload.MaxFiles
	r.Body = http.MaxBytesReader(w, r.Body, maxFile*int64(maxFiles)+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, mbe.Limit)
		}
		return nil, fmt.Errorf("%w: %v", errInvalidUpload, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		return nil, core.ErrNoFile
	}
	if len(headers) > maxFiles {
		return nil, fmt.Errorf("%w: %d files sent, at most %d per upload", errInvalidUpload, len(headers), maxFiles)
	}

	added := make([]*session.File, 0, len(headers))
	for _, fh := range headers {
		ds, err := s.loadPart(r.Context(), fh, maxFile)
		if err != nil && !isFileError(err) {
			return added, err
		}
		added = append(added, sess.AddFile(fh.Filename, fh.Size, ds, err))
	}

	logging.FromContext(r.Context()).Info("files uploaded", "count", len(added), "session_id", sess.ID)
	return added, nil
}

// loadPart reads one multipart file, at most maxFile+1 bytes so oversized
// files are detected without reading them whole.
func (s *Server) loadPart(ctx context.Context, fh *multipart.FileHeader, maxFile int64) (*core.Dataset, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %v", errInvalidUpload, fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxFile+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %q: %v", errInvalidUpload, fh.Filename, err)
	}

	return s.analyzer.LoadFile(ctx, fh.Filename, fh.Header.Get("Content-Type"), data)
}

// isFileError reports whether err concerns the file itself rather than the
// request, so the batch can continue.
func isFileError(err error) bool {
	var le *core.LoadError
	return errors.As(err, &le)
}

// resetFiles empties the session and drops its memoized results.
func (s *Server) resetFiles(ctx context.Context, sess *session.Session) int {
	removed := sess.Reset()
	dropped := 0
	for _, f := range removed {
		if f.Dataset != nil {
			dropped += s.analyzer.Invalidate(f.Dataset.CacheKey())
		}
	}
	logging.FromContext(ctx).Info("files reset",
		"session_id", sess.ID, "files", len(removed), "cached_results", dropped)
	return len(removed)
}

// recompute analyses the session's files with their current settings and
// stores the result.
func (s *Server) recompute(ctx context.Context, sess *session.Session) core.BatchResult {
	batch := s.analyzer.Recompute(ctx, sess.Inputs(), sess.Common())
	sess.SetResult(batch)
	return batch
}
