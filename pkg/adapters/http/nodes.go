package http

import (
	"errors"
	"net/http"

	"github.com/aretw0/promptdrafter/internal/presentation/graph"
	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/aretw0/promptdrafter/pkg/nodes"
	"github.com/go-chi/chi/v5"
)

// ListNodes returns every live node.
func (s *Server) ListNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ok(envelope{"nodes": s.Host.List()}))
}

// GraphNodes renders the live nodes as a Mermaid flowchart, marking nodes
// with a pending reconciliation.
func (s *Server) GraphNodes(w http.ResponseWriter, r *http.Request) {
	overlay := &graph.Overlay{Pending: true, Current: r.URL.Query().Get("current")}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(graph.GenerateMermaid(s.Host.List(), overlay)))
}

// CreateNode registers a node of the posted kind.
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind domain.NodeKind `json:"kind"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.Host.Create(req.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ok(envelope{"node": view}))
}

// GetNode returns a node snapshot.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	view, err := s.Host.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(envelope{"node": view}))
}

// DestroyNode tears a node down.
func (s *Server) DestroyNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Host.Destroy(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Executor.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

// SetText stores a field value. Reconciliation happens after the quiet
// period, so the request is only accepted.
func (s *Server) SetText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string  `json:"field"`
		Value *string `json:"value"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Value == nil {
		s.writeError(w, r, errors.Join(errBadRequest, errors.New("value is required")))
		return
	}
	if err := s.Host.SetText(chi.URLParam(r, "id"), req.Field, *req.Value); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ok(nil))
}

// FlushNode runs a pending reconciliation now.
func (s *Server) FlushNode(w http.ResponseWriter, r *http.Request) {
	view, err := s.Host.Flush(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(envelope{"node": view}))
}

// AppendPlaceholder appends the next placeholder to a prompt field.
func (s *Server) AppendPlaceholder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	placeholder, err := s.Host.AppendPlaceholder(id, req.Field)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.Host.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(envelope{"placeholder": placeholder, "node": view}))
}

// SetInputCount resizes a combiner.
func (s *Server) SetInputCount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.Host.SetInputCount(chi.URLParam(r, "id"), req.Count)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(envelope{"node": view}))
}

// ExecuteNode runs a node against its current texts and the posted inputs.
func (s *Server) ExecuteNode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Inputs     map[string]string `json:"inputs"`
		Mode       string            `json:"output_mode"`
		FixedIndex int               `json:"fixed_index"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var mode domain.OutputMode
	if req.Mode != "" {
		parsed, err := domain.ParseOutputMode(req.Mode)
		if err != nil {
			s.writeError(w, r, errors.Join(errBadRequest, err))
			return
		}
		mode = parsed
	}

	id := chi.URLParam(r, "id")
	view, err := s.Host.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.Executor.Execute(nodes.Request{
		Kind:       view.Kind,
		NodeID:     view.ID,
		Texts:      view.Texts,
		Inputs:     req.Inputs,
		Mode:       mode,
		FixedIndex: req.FixedIndex,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(envelope{"outputs": out}))
}

// SubscribeNode streams the port edits applied to a node.
func (s *Server) SubscribeNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.Host.Get(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.stream(w, r, id)
}
