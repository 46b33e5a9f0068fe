package handlers

import (
	"net/http"

	"github.com/camden-git/photodesk/catalog"
)

func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Lib.People())
}

func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       string `json:"id"`
		Name     string `json:"name" validate:"required"`
		Photo    string `json:"photo"`
		Notes    string `json:"notes"`
		Category string `json:"category"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.Lib.CreatePerson(catalog.Person{
		ID: req.ID, Name: req.Name, Photo: req.Photo, Notes: req.Notes, Category: req.Category,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field" validate:"required,oneof=name photo notes category"`
		Value string `json:"value"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.Lib.SetPersonField(urlParam(r, "person_id"), catalog.PersonField(req.Field), req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ListCameras(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Lib.Cameras())
}

func (h *Handler) CreateCamera(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.Lib.CreateCamera(req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListPlaces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Lib.Places())
}

func (h *Handler) CreatePlace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       string  `json:"id"`
		Name     string  `json:"name" validate:"required"`
		Lat      float64 `json:"lat" validate:"gte=-90,lte=90"`
		Lng      float64 `json:"lng" validate:"gte=-180,lte=180"`
		Layer    string  `json:"layer"`
		Category string  `json:"category"`
		Shape    string  `json:"shape"`
		Tags     string  `json:"tags"`
		Notes    string  `json:"notes"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.Lib.CreatePlace(catalog.Place{
		ID: req.ID, Name: req.Name, Lat: req.Lat, Lng: req.Lng, Layer: req.Layer,
		Category: req.Category, Shape: req.Shape, Tags: req.Tags, Notes: req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field" validate:"required,oneof=name layer category shape tags notes"`
		Value string `json:"value"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.Lib.SetPlaceField(urlParam(r, "place_id"), catalog.PlaceField(req.Field), req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) SetPlacePosition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
		Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.Lib.SetPlacePosition(urlParam(r, "place_id"), req.Lat, req.Lng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) DeletePlace(w http.ResponseWriter, r *http.Request) {
	if err := h.Lib.DeletePlace(urlParam(r, "place_id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
