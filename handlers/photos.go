package handlers

import (
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/camden-git/photodesk/catalog"
)

// Handler exposes the library commands over HTTP.
type Handler struct {
	Lib       *catalog.Library
	validator *RequestValidator
}

func NewHandler(lib *catalog.Library) *Handler {
	return &Handler{Lib: lib, validator: NewRequestValidator()}
}

// urlParam returns the unescaped value of a route parameter.
func urlParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (h *Handler) OpenFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	resp, err := h.Lib.OpenFolder(r.Context(), req.Path)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetFolder(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"folder": h.Lib.Folder()})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Terms []string `json:"terms"`
		Sort  string   `json:"sort" validate:"omitempty,oneof=name name_desc rating rating_desc"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	total, err := h.Lib.Search(req.Terms, req.Sort)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total": total})
}

func queryInt(r *http.Request, key string, def int) (int, bool) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// ListPhotos returns one page of the active photo list.
func (h *Handler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	start, okStart := queryInt(r, "start", 0)
	count, okCount := queryInt(r, "count", 50)
	if !okStart || !okCount {
		WriteAPIError(w, http.StatusBadRequest, "invalid_input", "start and count must be integers")
		return
	}
	writeJSON(w, http.StatusOK, h.Lib.Page(start, count))
}

func (h *Handler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	p, err := h.Lib.Photo(urlParam(r, "photo_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PhotoFile streams the original media file of a photo.
func (h *Handler) PhotoFile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Lib.Photo(urlParam(r, "photo_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := os.Stat(p.Name); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, p.Name)
}

type stringValue struct {
	Value string `json:"value"`
}

// setPhotos runs a group-wide setter and writes the updated photos.
func (h *Handler) setPhotos(w http.ResponseWriter, r *http.Request, set func(id string) ([]catalog.Photo, error)) {
	photos, err := set(urlParam(r, "photo_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

func (h *Handler) SetTags(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tags []string `json:"tags"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.setPhotos(w, r, func(id string) ([]catalog.Photo, error) { return h.Lib.SetTags(id, req.Tags) })
}

func (h *Handler) SetPeople(w http.ResponseWriter, r *http.Request) {
	var req struct {
		People []string `json:"people"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.setPhotos(w, r, func(id string) ([]catalog.Photo, error) { return h.Lib.SetPeople(id, req.People) })
}

func (h *Handler) SetPhotographer(w http.ResponseWriter, r *http.Request) {
	var req stringValue
	if !h.decode(w, r, &req) {
		return
	}
	h.setPhotos(w, r, func(id string) ([]catalog.Photo, error) { return h.Lib.SetPhotographer(id, req.Value) })
}

func (h *Handler) SetCamera(w http.ResponseWriter, r *http.Request) {
	var req stringValue
	if !h.decode(w, r, &req) {
		return
	}
	h.setPhotos(w, r, func(id string) ([]catalog.Photo, error) { return h.Lib.SetCamera(id, req.Value) })
}

func (h *Handler) SetLocation(w http.ResponseWriter, r *http.Request) {
	var req stringValue
	if !h.decode(w, r, &req) {
		return
	}
	h.setPhotos(w, r, func(id string) ([]catalog.Photo, error) { return h.Lib.SetLocation(id, req.Value) })
}

func (h *Handler) SetDate(w http.ResponseWriter, r *http.Request) {
	var req stringValue
	if !h.decode(w, r, &req) {
		return
	}
	h.setPhotos(w, r, func(id string) ([]catalog.Photo, error) { return h.Lib.SetDate(id, req.Value) })
}

func (h *Handler) SetGroup(w http.ResponseWriter, r *http.Request) {
	var req stringValue
	if !h.decode(w, r, &req) {
		return
	}
	h.setPhotos(w, r, func(id string) ([]catalog.Photo, error) { return h.Lib.SetPhotoGroup(id, req.Value) })
}

func (h *Handler) SetRating(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating *int `json:"rating" validate:"required,gte=0"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.Lib.SetRating(urlParam(r, "photo_id"), *req.Rating)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) SetText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field" validate:"required,oneof=title description"`
		Value string `json:"value"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.Lib.SetText(urlParam(r, "photo_id"), catalog.PhotoStringField(req.Field), req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) SetFlag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Flag  string `json:"flag" validate:"required,oneof=is_duplicate hide_thumbnail"`
		Value bool   `json:"value"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.Lib.SetFlag(urlParam(r, "photo_id"), catalog.PhotoFlag(req.Flag), req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) QueueThumbnail(w http.ResponseWriter, r *http.Request) {
	queued, err := h.Lib.QueueThumbnail(urlParam(r, "photo_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusAccepted
	if !queued {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]bool{"queued": queued})
}

func (h *Handler) RemoveDeleted(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Names []string `json:"names" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	n, err := h.Lib.RemoveDeleted(req.Names)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (h *Handler) DetectDuplicates(w http.ResponseWriter, r *http.Request) {
	sets, err := h.Lib.DetectDuplicates()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][][]string{"duplicates": sets})
}

func (h *Handler) GroupMembers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"members": h.Lib.GroupMembers(urlParam(r, "group"))})
}

func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Lib.Counts())
}
