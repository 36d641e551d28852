package http

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/go-chi/chi/v5"
)

func (s *Server) category(r *http.Request) (domain.Category, error) {
	return domain.ParseCategory(chi.URLParam(r, "category"))
}

// recordName returns the unescaped {name} path parameter.
func recordName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

// SaveRecord saves the posted record into the category of the route.
func (s *Server) SaveRecord(w http.ResponseWriter, r *http.Request) {
	category, err := s.category(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var payload map[string]any
	if err := decode(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}
	// The server stamps these itself.
	delete(payload, "type")
	delete(payload, "created")
	if category == domain.CategoryWildcard {
		delete(payload, "values")
	}

	rec, err := s.Library.SaveFromMap(r.Context(), category, payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(envelope{
		"message": fmt.Sprintf("Saved %s '%s'", category.RecordType(), rec.Name),
		"data":    rec,
	}))
}

// LoadRecord returns a saved record.
func (s *Server) LoadRecord(w http.ResponseWriter, r *http.Request) {
	category, err := s.category(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.Library.Load(r.Context(), category, recordName(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(envelope{"data": rec}))
}

// ListRecords returns the sorted names of a category. Prompt categories answer
// under "prompts", wildcard lists under "wildcards".
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	category, err := s.category(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	names, err := s.Library.List(r.Context(), category)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	key := "prompts"
	if category == domain.CategoryWildcard {
		key = "wildcards"
	}
	writeJSON(w, http.StatusOK, ok(envelope{key: names}))
}

// DeleteRecord removes a saved record.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	category, err := s.category(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := recordName(r)
	if err := s.Library.Delete(r.Context(), category, name); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(envelope{
		"message": fmt.Sprintf("Deleted %s '%s'", category.RecordType(), name),
	}))
}

// CountWildcardValues counts the values of a raw wildcard list.
func (s *Server) CountWildcardValues(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RawText string `json:"raw_text"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(envelope{"count": domain.CountValues(req.RawText)}))
}

// ResetSequential rewinds the sequential cursor of one wildcard node, or of
// every node when no id is given.
func (s *Server) ResetSequential(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UniqueID string `json:"unique_id"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.UniqueID == "" {
		s.Executor.ResetAll()
	} else {
		s.Executor.ResetSequential(req.UniqueID)
	}
	writeJSON(w, http.StatusOK, ok(envelope{"message": "Sequential index reset"}))
}

type textRequest struct {
	Text string `json:"text"`
}

// ParseWildcards extracts the wildcard references of a text.
func (s *Server) ParseWildcards(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(envelope{"wildcards": domain.ExtractWildcards(req.Text)}))
}

// NextPlaceholder returns the next free numeric placeholder for a text.
func (s *Server) NextPlaceholder(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(envelope{"placeholder": domain.NextPlaceholder(req.Text)}))
}

// CombineStrings smart-joins the posted strings.
func (s *Server) CombineStrings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Strings []string `json:"strings"`
	}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(envelope{"combined": domain.SmartJoin(req.Strings...)}))
}

// SubscribeLibrary streams library change events.
func (s *Server) SubscribeLibrary(w http.ResponseWriter, r *http.Request) {
	s.stream(w, r, LibraryStream)
}
