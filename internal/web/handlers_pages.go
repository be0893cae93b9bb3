package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/usercount/internal/core"
	"github.com/JonMunkholm/usercount/internal/logging"
	"github.com/JonMunkholm/usercount/internal/session"
	appmw "github.com/JonMunkholm/usercount/internal/web/middleware"
	"github.com/JonMunkholm/usercount/internal/web/templates"
)

// sessionFor returns the request's session. With needState, a session that
// replaced an expired one is reported as ErrSessionNotFound.
func sessionFor(r *http.Request, needState bool) (*session.Session, error) {
	if needState && appmw.SessionExpired(r.Context()) {
		return nil, session.ErrSessionNotFound
	}
	return appmw.SessionFrom(r.Context())
}

// handleDashboard renders the dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, false)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	view := templates.DashboardView{
		Files:    fileViews(sess.Files()),
		Common:   commonView(sess),
		Accept:   templates.AcceptAttribute(core.AcceptedExtensions),
		MaxFiles: s.cfg.Upload.MaxFiles,
	}
	if appmw.SessionExpired(r.Context()) {
		view.Error = userMessage(session.ErrSessionNotFound)
	}
	if batch, ok := sess.Result(); ok {
		view.Result = resultView(batch, formList(r.URL.Query(), fieldShowLocations))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(view).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

// handleUpload loads the submitted files and returns to the dashboard.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, false)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if _, err := s.uploadFiles(w, r, sess); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.recompute(r.Context(), sess)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleReset removes every file of the session.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, false)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.resetFiles(r.Context(), sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleAnalyze stores the submitted filters and recomputes every file.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, true)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if err := r.ParseForm(); err != nil {
		err = fmt.Errorf("%w: %v", errInvalidSelection, err)
		s.respondError(w, r, err, statusFor(err))
		return
	}

	common := commonFromForm(r.PostForm)
	for _, f := range sess.Files() {
		if !f.Loaded() {
			continue
		}
		if err := sess.SetSettings(f.ID, settingsFromForm(r.PostForm, f, common != nil)); err != nil {
			s.respondError(w, r, err, statusFor(err))
			return
		}
	}
	sess.SetCommon(common)
	s.recompute(r.Context(), sess)

	http.Redirect(w, r, "/#results", http.StatusSeeOther)
}

// handleExport downloads one result table as CSV or Excel.
// Used by both the page links and the API.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFor(r, true)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	target := chi.URLParam(r, "target")
	format, err := exportFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	table, err := sess.Table(target)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	table = core.FilterLocations(table, formList(r.URL.Query(), fieldShowLocations))

	var buf bytes.Buffer
	if err := core.Export(&buf, table, format); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	name := core.ExportFileName(target == core.MergedTarget, format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(buf.Bytes())
}

// exportFormat parses the format query value; empty means CSV.
func exportFormat(v string) (core.Format, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "csv":
		return core.FormatCSV, nil
	case "xlsx", "excel":
		return core.FormatSpreadsheet, nil
	default:
		return core.FormatUnknown, fmt.Errorf("%w: export format %q", errInvalidSelection, v)
	}
}
