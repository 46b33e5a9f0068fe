package handlers

import (
	"net/http"
	"sort"

	"github.com/facette/natsort"

	"github.com/camden-git/photodesk/catalog"
	"github.com/camden-git/photodesk/database"
)

// ListTags returns every tag in natural name order.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags := h.Lib.Tags()
	out := make([]catalog.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return natsort.Compare(out[i].Name, out[j].Name) })
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name" validate:"required"`
		Color string `json:"color"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	tag, err := h.Lib.CreateTag(req.Name, req.Color)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *Handler) SetTagColor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Color string `json:"color"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	tag, err := h.Lib.SetTagColor(urlParam(r, "tag"), req.Color)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// SetTagRelations replaces one of the prerequisite, corequisite or
// incompatible lists of a tag.
func (h *Handler) SetTagRelations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Targets []string `json:"targets"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	kind := database.RelationKind(urlParam(r, "kind"))
	tag, err := h.Lib.SetTagRelations(urlParam(r, "tag"), kind, req.Targets)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *Handler) TagStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Lib.TagStats())
}
