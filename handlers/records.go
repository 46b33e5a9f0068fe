package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/camden-git/photodesk/models"
	"github.com/camden-git/photodesk/repository"
)

// fieldUpdate carries a single-field update. Value is decoded once the field
// tells us its type.
type fieldUpdate struct {
	Field string          `json:"field" validate:"required"`
	Value json.RawMessage `json:"value" validate:"required"`
}

func decodeValue[T any](field string, raw json.RawMessage) (any, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w %s: %v", repository.ErrInvalidValue, field, err)
	}
	return v, nil
}

// withRecords runs fn against the open folder's repositories and writes its
// result with status.
func (h *Handler) withRecords(w http.ResponseWriter, r *http.Request, status int, fn func(repos *repository.Repositories) (any, error)) {
	var out any
	err := h.Lib.WithRecords(func(repos *repository.Repositories) error {
		var err error
		out, err = fn(repos)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, out)
}

func (h *Handler) ListPersonCategories(w http.ResponseWriter, r *http.Request) {
	h.withRecords(w, r, http.StatusOK, func(repos *repository.Repositories) (any, error) {
		return repos.PersonCategories.ListAll()
	})
}

func (h *Handler) CreatePersonCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name" validate:"required"`
		Color string `json:"color"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.withRecords(w, r, http.StatusCreated, func(repos *repository.Repositories) (any, error) {
		c := &models.PersonCategory{Name: req.Name, Color: req.Color}
		return c, repos.PersonCategories.Create(c)
	})
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	h.withRecords(w, r, http.StatusOK, func(repos *repository.Repositories) (any, error) {
		return repos.Groups.ListAll()
	})
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.withRecords(w, r, http.StatusCreated, func(repos *repository.Repositories) (any, error) {
		g := &models.Group{Name: req.Name}
		return g, repos.Groups.Create(g)
	})
}

func (h *Handler) ListLayers(w http.ResponseWriter, r *http.Request) {
	h.withRecords(w, r, http.StatusOK, func(repos *repository.Repositories) (any, error) {
		return repos.Layers.ListAll()
	})
}

func (h *Handler) CreateLayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name" validate:"required"`
		Color string `json:"color"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.withRecords(w, r, http.StatusCreated, func(repos *repository.Repositories) (any, error) {
		l := &models.Layer{Name: req.Name, Color: req.Color}
		return l, repos.Layers.Create(l)
	})
}

func (h *Handler) SetLayerColor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Color string `json:"color" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	id := urlParam(r, "layer_id")
	h.withRecords(w, r, http.StatusOK, func(repos *repository.Repositories) (any, error) {
		return map[string]string{"id": id, "color": req.Color}, repos.Layers.SetColor(id, req.Color)
	})
}

func (h *Handler) ListShapes(w http.ResponseWriter, r *http.Request) {
	h.withRecords(w, r, http.StatusOK, func(repos *repository.Repositories) (any, error) {
		return repos.Layers.ListShapes()
	})
}

func (h *Handler) CreateShape(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type   string      `json:"type" validate:"required"`
		Points [][]float64 `json:"points"`
		Layer  string      `json:"layer"`
		Name   string      `json:"name"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.withRecords(w, r, http.StatusCreated, func(repos *repository.Repositories) (any, error) {
		s := &models.Shape{Type: req.Type, Points: req.Points, Layer: req.Layer, Name: req.Name}
		return s, repos.Layers.CreateShape(s)
	})
}

func (h *Handler) UpdateShape(w http.ResponseWriter, r *http.Request) {
	var req fieldUpdate
	if !h.decode(w, r, &req) {
		return
	}
	var (
		value any
		err   error
	)
	if repository.ShapeField(req.Field) == repository.ShapeFieldPoints {
		value, err = decodeValue[[][]float64](req.Field, req.Value)
	} else {
		value, err = decodeValue[string](req.Field, req.Value)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := urlParam(r, "shape_id")
	h.withRecords(w, r, http.StatusOK, func(repos *repository.Repositories) (any, error) {
		return repos.Layers.UpdateShape(id, repository.ShapeField(req.Field), value)
	})
}

func (h *Handler) DeleteShape(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "shape_id")
	err := h.Lib.WithRecords(func(repos *repository.Repositories) error {
		return repos.Layers.DeleteShape(id)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListJournals(w http.ResponseWriter, r *http.Request) {
	h.withRecords(w, r, http.StatusOK, func(repos *repository.Repositories) (any, error) {
		return repos.Journals.ListAll()
	})
}

func (h *Handler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date       string   `json:"date" validate:"required"`
		Mood       int      `json:"mood"`
		Text       string   `json:"text"`
		Activities []string `json:"activities"`
		Steps      int      `json:"steps" validate:"gte=0"`
		IV         string   `json:"iv"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.withRecords(w, r, http.StatusCreated, func(repos *repository.Repositories) (any, error) {
		j := &models.Journal{
			Date: req.Date, Mood: req.Mood, Text: req.Text,
			Activities: req.Activities, Steps: req.Steps, IV: req.IV,
		}
		return j, repos.Journals.Create(j)
	})
}

func (h *Handler) UpdateJournal(w http.ResponseWriter, r *http.Request) {
	var req fieldUpdate
	if !h.decode(w, r, &req) {
		return
	}
	var (
		value any
		err   error
	)
	switch repository.JournalField(req.Field) {
	case repository.JournalFieldMood, repository.JournalFieldSteps:
		value, err = decodeValue[int](req.Field, req.Value)
	case repository.JournalFieldActivities:
		value, err = decodeValue[[]string](req.Field, req.Value)
	default:
		value, err = decodeValue[string](req.Field, req.Value)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	id := urlParam(r, "journal_id")
	h.withRecords(w, r, http.StatusOK, func(repos *repository.Repositories) (any, error) {
		return repos.Journals.Update(id, repository.JournalField(req.Field), value)
	})
}

func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	h.withRecords(w, r, http.StatusOK, func(repos *repository.Repositories) (any, error) {
		return repos.Journals.ListActivities()
	})
}

func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name" validate:"required"`
		Icon string `json:"icon"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.withRecords(w, r, http.StatusCreated, func(repos *repository.Repositories) (any, error) {
		a := &models.Activity{Name: req.Name, Icon: req.Icon}
		return a, repos.Journals.CreateActivity(a)
	})
}

func (h *Handler) ListWikiPages(w http.ResponseWriter, r *http.Request) {
	h.withRecords(w, r, http.StatusOK, func(repos *repository.Repositories) (any, error) {
		return repos.Wiki.ListAll()
	})
}

func (h *Handler) CreateWikiPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name" validate:"required"`
		Content string `json:"content"`
		IV      string `json:"iv"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	h.withRecords(w, r, http.StatusCreated, func(repos *repository.Repositories) (any, error) {
		p := &models.WikiPage{Name: req.Name, Content: req.Content, IV: req.IV}
		return p, repos.Wiki.Create(p)
	})
}

func (h *Handler) UpdateWikiPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field" validate:"required,oneof=name content iv"`
		Value string `json:"value"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	id := urlParam(r, "page_id")
	h.withRecords(w, r, http.StatusOK, func(repos *repository.Repositories) (any, error) {
		return repos.Wiki.Update(id, repository.WikiField(req.Field), req.Value)
	})
}

func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	h.withRecords(w, r, http.StatusOK, func(repos *repository.Repositories) (any, error) {
		return repos.Settings.ListAll()
	})
}

func (h *Handler) SetSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value *int `json:"value" validate:"required"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	name := urlParam(r, "name")
	h.withRecords(w, r, http.StatusOK, func(repos *repository.Repositories) (any, error) {
		return repos.Settings.Set(name, *req.Value)
	})
}
