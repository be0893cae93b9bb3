package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/JonMunkholm/usercount/internal/core"
	"github.com/JonMunkholm/usercount/internal/session"
)

// maxJSONBody bounds API request bodies.
const maxJSONBody = 1 << 20

// fileJSON is the API form of an uploaded file.
type fileJSON struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Size       int64             `json:"size"`
	UploadedAt time.Time         `json:"uploadedAt"`
	Loaded     bool              `json:"loaded"`
	Rows       int               `json:"rows"`
	Error      *core.UserMessage `json:"error,omitempty"`
	Settings   core.FileSettings `json:"settings"`
}

func filesJSON(files []*session.File) []fileJSON {
	out := make([]fileJSON, 0, len(files))
	for _, f := range files {
		j := fileJSON{
			ID:         f.ID,
			Name:       f.Name,
			Size:       f.Size,
			UploadedAt: f.UploadedAt,
			Loaded:     f.Loaded(),
			Error:      userMessage(f.Err),
			Settings:   f.Settings,
		}
		if f.Loaded() {
			j.Rows = f.Dataset.Len()
		}
		out = append(out, j)
	}
	return out
}

// fileResultJSON adds the user-facing error to a file result.
type fileResultJSON struct {
	core.FileResult
	Error *core.UserMessage `json:"error,omitempty"`
}

type batchJSON struct {
	Files     []fileResultJSON `json:"files"`
	Merged    core.ResultTable `json:"merged,omitempty"`
	HasMerged bool             `json:"hasMerged"`
}

func newBatchJSON(b core.BatchResult) batchJSON {
	out := batchJSON{
		Files:     make([]fileResultJSON, 0, len(b.Files)),
		Merged:    b.Merged,
		HasMerged: b.HasMerged,
	}
	for _, f := range b.Files {
		out.Files = append(out.Files, fileResultJSON{FileResult: f, Error: userMessage(f.Err)})
	}
	return out
}

// handleListFiles returns the session's files in upload order.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, false)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, filesJSON(sess.Files()))
}

// handleAddFiles uploads files and returns those added, including any that
// failed to load.
func (s *Server) handleAddFiles(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, false)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	added, err := s.uploadFiles(w, r, sess)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.recompute(r.Context(), sess)

	writeJSON(w, r, http.StatusCreated, filesJSON(added))
}

// handleDeleteFiles removes every file of the session.
func (s *Server) handleDeleteFiles(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, false)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.resetFiles(r.Context(), sess)
	w.WriteHeader(http.StatusNoContent)
}

// handleFileDimensions returns the choice lists of one loaded file.
func (s *Server) handleFileDimensions(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, true)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	f, err := sess.File(chi.URLParam(r, "fileID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if !f.Loaded() {
		s.respondError(w, r, f.Err, statusFor(f.Err))
		return
	}
	writeJSON(w, r, http.StatusOK, f.Dataset.Dimensions())
}

// handleAPIAnalyze applies the requested settings and recomputes.
func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, true)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	var req analyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		err = fmt.Errorf("%w: decode body: %v", errInvalidSelection, err)
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if err := s.validateRequest(&req); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	for _, f := range req.Files {
		if _, err := sess.File(f.ID); err != nil {
			err = fmt.Errorf("%w: %s", err, f.ID)
			s.respondError(w, r, err, statusFor(err))
			return
		}
	}
	for _, f := range req.Files {
		if err := sess.SetSettings(f.ID, f.settings()); err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
	}
	sess.SetCommon(req.Common.filter())

	writeJSON(w, r, http.StatusOK, newBatchJSON(s.recompute(r.Context(), sess)))
}

// handleResult returns one result table, optionally limited to ?locations=.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, true)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	table, err := sess.Table(chi.URLParam(r, "target"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	table = core.FilterLocations(table, formList(r.URL.Query(), fieldShowLocations))
	if table == nil {
		table = core.ResultTable{}
	}
	writeJSON(w, r, http.StatusOK, table)
}

// handleResultExport downloads one result table; see handleExport.
func (s *Server) handleResultExport(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r)
}
