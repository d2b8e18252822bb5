package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/matzehuels/lineageview/pkg/buildinfo"
	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/explore"
	"github.com/matzehuels/lineageview/pkg/filter"
	"github.com/matzehuels/lineageview/pkg/graph"
	"github.com/matzehuels/lineageview/pkg/pipeline"
	"github.com/matzehuels/lineageview/pkg/render"
	"github.com/matzehuels/lineageview/pkg/resolve"
	"github.com/matzehuels/lineageview/pkg/session"
)

// maxBodyBytes bounds request bodies. Actions are tiny.
const maxBodyBytes = 64 << 10

type healthResponse struct {
	Status  string         `json:"status"`
	Build   buildinfo.Info `json:"build"`
	Project string         `json:"project,omitempty"`
	Digest  string         `json:"digest,omitempty"`
	Tables  int            `json:"tables"`
	Edges   int            `json:"edges"`
}

type tableResponse struct {
	Table     graph.Table `json:"table"`
	Neighbors []string    `json:"neighbors"`
}

type sessionResponse struct {
	ID        string          `json:"id"`
	State     filter.Snapshot `json:"state"`
	Query     string          `json:"query"`
	ExpiresAt time.Time       `json:"expires_at"`
	View      explore.View    `json:"view"`
}

type createSessionRequest struct {
	Actions []explore.Action `json:"actions,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Build: buildinfo.Get()}
	if loaded := s.Loaded(); loaded != nil {
		resp.Project = loaded.Meta.Project
		resp.Digest = loaded.Meta.Digest
		resp.Tables = loaded.Universe.TableCount()
		resp.Edges = loaded.Universe.EdgeCount()
	} else {
		resp.Status = "loading"
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleGraph resolves a stateless view from the URL query. A format
// parameter other than json returns the rendered artifact instead.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	loaded, ok := s.requireLoaded(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	st, err := filter.FromValues(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.viewOptions(st, nil)
	view, _, _, err := s.cfg.Runner.ViewWithCacheInfo(r.Context(), loaded, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := q.Get("format")
	if format == "" || format == render.FormatJSON {
		s.writeJSON(w, http.StatusOK, view)
		return
	}
	opts.Formats = []string{format}
	opts.Detailed = q.Get("detailed") == "true"
	if err := opts.ValidateForRender(); err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, err := s.cfg.Runner.Render(r.Context(), view, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	loaded, ok := s.requireLoaded(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit: %q", raw))
			return
		}
		limit = n
	}
	query := q.Get("q")
	if err := errors.ValidateSearch(query); err != nil {
		s.writeError(w, r, err)
		return
	}
	suggestions := resolve.Suggest(loaded.Universe, query, limit)
	if suggestions == nil {
		suggestions = []resolve.Suggestion{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	loaded, ok := s.requireLoaded(w, r)
	if !ok {
		return
	}
	tags := loaded.Universe.Tags()
	if tags == nil {
		tags = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	loaded, ok := s.requireLoaded(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := errors.ValidateTableID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, ok := loaded.Universe.Table(id)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeTableNotFound, "table not found: %s", id))
		return
	}
	neighbors := resolve.NeighborsOfTable(id, loaded.Universe.Edges())
	delete(neighbors, id)
	s.writeJSON(w, http.StatusOK, tableResponse{
		Table:     graph.FromTable(t),
		Neighbors: neighbors.Sorted(),
	})
}

// handleCreateSession starts a session seeded from the URL query, then
// applies any actions in the optional body.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	loaded, ok := s.requireLoaded(w, r)
	if !ok {
		return
	}
	st, err := filter.FromValues(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req createSessionRequest
	if r.ContentLength > 0 {
		if err := decodeBody(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	view, st, err := s.resolveView(r, loaded, st, req.Actions)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := session.New(st, loaded.Meta.Digest, s.cfg.SessionTTL)
	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeBackend, err, "store session"))
		return
	}
	s.writeJSON(w, http.StatusCreated, newSessionResponse(sess, st, view))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	loaded, ok := s.requireLoaded(w, r)
	if !ok {
		return
	}
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}
	view, st, err := s.resolveView(r, loaded, sess.FilterState(), nil)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionResponse(sess, st, view))
}

// handleSessionAction applies one controller action to the stored state.
// A rejected action leaves the session unchanged.
func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	loaded, ok := s.requireLoaded(w, r)
	if !ok {
		return
	}
	var action explore.Action
	if err := decodeBody(w, r, &action); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := action.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := session.ValidateID(id); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid session id: %q", id))
		return
	}
	unlock := s.lockSession(id)
	defer unlock()

	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}
	view, st, err := s.resolveView(r, loaded, sess.FilterState(), []explore.Action{action})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Digest = loaded.Meta.Digest
	sess.Update(st, s.cfg.SessionTTL)
	if err := s.cfg.Sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeBackend, err, "store session"))
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionResponse(sess, st, view))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := session.ValidateID(id); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid session id: %q", id))
		return
	}
	unlock := s.lockSession(id)
	err := s.cfg.Sessions.Delete(r.Context(), id)
	unlock()
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeBackend, err, "delete session"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) requireLoaded(w http.ResponseWriter, r *http.Request) (*pipeline.Loaded, bool) {
	loaded := s.Loaded()
	if loaded == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: errorDetail{
			Code:    errors.ErrCodeLoadFailed,
			Message: "metadata not loaded yet",
		}})
		return nil, false
	}
	return loaded, true
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	if err := session.ValidateID(id); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid session id: %q", id))
		return nil, false
	}
	sess, err := s.cfg.Sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeBackend, err, "load session"))
		return nil, false
	}
	if sess == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeSessionNotFound, "session not found: %s", id))
		return nil, false
	}
	return sess, true
}

// viewOptions copies the configured view defaults for one request.
func (s *Server) viewOptions(st filter.State, actions []explore.Action) pipeline.Options {
	opts := s.cfg.Options
	opts.State = st
	opts.Actions = actions
	opts.Formats = nil
	opts.Logger = s.cfg.Logger
	return opts
}

func (s *Server) resolveView(r *http.Request, loaded *pipeline.Loaded, st filter.State, actions []explore.Action) (explore.View, filter.State, error) {
	view, st, _, err := s.cfg.Runner.ViewWithCacheInfo(r.Context(), loaded, s.viewOptions(st, actions))
	return view, st, err
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed request body")
	}
	return nil
}

func newSessionResponse(sess *session.Session, st filter.State, view explore.View) sessionResponse {
	return sessionResponse{
		ID:        sess.ID,
		State:     st.Snapshot(),
		Query:     filter.Encode(st),
		ExpiresAt: sess.ExpiresAt,
		View:      view,
	}
}
