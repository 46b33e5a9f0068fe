package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/camden-git/photodesk/media"
	"github.com/camden-git/photodesk/realtime"
)

// assetRoutePrefix is where thumbnails and other generated assets are served.
const assetRoutePrefix = "/api/assets/"

// RouterOptions holds what the router serves besides the library commands.
type RouterOptions struct {
	Hub            *realtime.Hub
	Assets         media.Store
	AllowedOrigins []string
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler.Handler)

	r.Route("/api", func(r chi.Router) {
		// opening a folder rescans it and websocket connections are long lived,
		// so neither runs under the request timeout
		r.Post("/folder", h.OpenFolder)
		if opts.Hub != nil {
			r.Get("/ws", opts.Hub.ServeWS)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/folder", h.GetFolder)
			r.Get("/counts", h.Counts)
			r.Post("/search", h.Search)
			r.Get("/groups/{group}/members", h.GroupMembers)

			r.Route("/photos", func(r chi.Router) {
				r.Get("/", h.ListPhotos)
				r.Post("/remove_deleted", h.RemoveDeleted)
				r.Post("/duplicates", h.DetectDuplicates)
				r.Route("/{photo_id}", func(r chi.Router) {
					r.Get("/", h.GetPhoto)
					r.Get("/file", h.PhotoFile)
					r.Post("/thumbnail", h.QueueThumbnail)
					r.Put("/tags", h.SetTags)
					r.Put("/people", h.SetPeople)
					r.Put("/photographer", h.SetPhotographer)
					r.Put("/camera", h.SetCamera)
					r.Put("/location", h.SetLocation)
					r.Put("/date", h.SetDate)
					r.Put("/group", h.SetGroup)
					r.Put("/rating", h.SetRating)
					r.Put("/text", h.SetText)
					r.Put("/flag", h.SetFlag)
				})
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", h.ListTags)
				r.Post("/", h.CreateTag)
				r.Get("/stats", h.TagStats)
				r.Route("/{tag}", func(r chi.Router) {
					r.Put("/color", h.SetTagColor)
					r.Put("/relations/{kind}", h.SetTagRelations)
				})
			})

			r.Route("/people", func(r chi.Router) {
				r.Get("/", h.ListPeople)
				r.Post("/", h.CreatePerson)
				r.Put("/{person_id}", h.UpdatePerson)
			})

			r.Route("/cameras", func(r chi.Router) {
				r.Get("/", h.ListCameras)
				r.Post("/", h.CreateCamera)
			})

			r.Route("/places", func(r chi.Router) {
				r.Get("/", h.ListPlaces)
				r.Post("/", h.CreatePlace)
				r.Route("/{place_id}", func(r chi.Router) {
					r.Put("/", h.UpdatePlace)
					r.Put("/position", h.SetPlacePosition)
					r.Delete("/", h.DeletePlace)
				})
			})

			r.Route("/records", func(r chi.Router) {
				r.Get("/person_categories", h.ListPersonCategories)
				r.Post("/person_categories", h.CreatePersonCategory)
				r.Get("/groups", h.ListGroups)
				r.Post("/groups", h.CreateGroup)
				r.Get("/layers", h.ListLayers)
				r.Post("/layers", h.CreateLayer)
				r.Put("/layers/{layer_id}/color", h.SetLayerColor)
				r.Get("/shapes", h.ListShapes)
				r.Post("/shapes", h.CreateShape)
				r.Put("/shapes/{shape_id}", h.UpdateShape)
				r.Delete("/shapes/{shape_id}", h.DeleteShape)
				r.Get("/journals", h.ListJournals)
				r.Post("/journals", h.CreateJournal)
				r.Put("/journals/{journal_id}", h.UpdateJournal)
				r.Get("/activities", h.ListActivities)
				r.Post("/activities", h.CreateActivity)
				r.Get("/wiki", h.ListWikiPages)
				r.Post("/wiki", h.CreateWikiPage)
				r.Put("/wiki/{page_id}", h.UpdateWikiPage)
				r.Get("/settings", h.ListSettings)
				r.Put("/settings/{name}", h.SetSetting)
			})

			if opts.Assets != nil {
				r.Get("/assets/*", AssetServer(opts.Assets, assetRoutePrefix))
			}
		})
	})

	return r
}
