package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/windowsadmins/appstore/pkg/catalog"
	"github.com/windowsadmins/appstore/pkg/web"
)

type softwareHandler struct {
	svc *catalog.Service
}

func (h *softwareHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.svc.List(r.Context(), catalog.ListOptions{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*catalog.SoftwareEntry{}
	}
	web.WriteJSON(w, http.StatusOK, entries)
}

func (h *softwareHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entry, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, entry)
}

func (h *softwareHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in catalog.EntryInput
	if err := web.DecodeJSON(w, r, &in); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body: %v", catalog.ErrInvalidInput, err))
		return
	}
	entry, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusCreated, entry)
}

func (h *softwareHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in catalog.EntryInput
	if err := web.DecodeJSON(w, r, &in); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body: %v", catalog.ErrInvalidInput, err))
		return
	}
	entry, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, entry)
}

func (h *softwareHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{"message": "software deleted", "id": id})
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q must be a positive integer", catalog.ErrInvalidInput, raw)
	}
	return id, nil
}
