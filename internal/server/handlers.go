package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/morozRed/doxnav/internal/fileutil"
	"github.com/morozRed/doxnav/internal/fragment"
	"github.com/morozRed/doxnav/internal/navtree"
	"github.com/morozRed/doxnav/internal/render"
	"github.com/morozRed/doxnav/internal/search"
)

type treeResponse struct {
	Entries []render.Entry `json:"entries"`
	Errors  []string       `json:"errors,omitempty"`
}

type resolveResponse struct {
	Page string         `json:"page"`
	Path []render.Entry `json:"path"`
}

type fragmentResponse struct {
	Sentinel string         `json:"sentinel"`
	Records  []navtree.Spec `json:"records"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	st := s.Site()
	tree, err := st.NewTree()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	var resp treeResponse
	if expand, _ := strconv.ParseBool(r.URL.Query().Get("expand")); expand {
		if err := st.ExpandAll(r.Context(), tree); err != nil {
			resp.Errors = splitJoined(err)
		}
	}
	resp.Entries = render.Snapshot(tree, nil)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	if page == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing page parameter"))
		return
	}

	st := s.Site()
	tree, err := st.NewTree()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	path, err := st.Sync(r.Context(), tree, page)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{Page: page, Path: render.Entries(path)})
}

type searchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing q parameter"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	st := s.Site()
	tree, err := st.NewTree()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if expand, _ := strconv.ParseBool(r.URL.Query().Get("expand")); expand {
		if err := st.ExpandAll(r.Context(), tree); err != nil {
			s.log.WithError(err).Warn("search expansion incomplete")
		}
	}

	results := search.Search(search.Build(tree), query, limit)
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: query, Results: results})
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	sentinel := chi.URLParam(r, "sentinel")
	if !fragment.ValidSentinel(sentinel) {
		writeError(w, http.StatusBadRequest, errors.New("invalid sentinel"))
		return
	}

	records, err := s.Site().Loader().Load(r.Context(), sentinel)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, fragment.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	if records == nil {
		records = []navtree.Spec{}
	}
	writeJSON(w, http.StatusOK, fragmentResponse{Sentinel: sentinel, Records: records})
}

func (s *Server) handleSidebar(w http.ResponseWriter, r *http.Request) {
	st := s.Site()
	tree, err := st.NewTree()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	var active []*navtree.Node
	if page := r.URL.Query().Get("page"); page != "" {
		active, err = st.Sync(r.Context(), tree, page)
		if err != nil {
			s.log.WithError(err).WithField("page", page).Warn("sidebar sync incomplete")
		}
	}

	msgs := st.Messages()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.HTML(w, tree, active, render.SyncMessages{On: msgs.SyncOn, Off: msgs.SyncOff}); err != nil {
		s.log.WithError(err).Warn("failed to write sidebar")
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = fileutil.WriteJSON(w, value)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// splitJoined flattens an errors.Join result into messages.
func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
