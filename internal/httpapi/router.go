package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	r.Route("/board", func(rr chi.Router) {
		rr.Get("/", h.GetBoard)
		rr.Put("/", h.PutBoard)
	})
	r.Post("/drop", h.PostDrop)
	r.Get("/balls", h.GetBalls)
	r.Get("/balance", h.GetBalance)
	r.Post("/deposit", h.PostDeposit)
	r.Get("/stats", h.GetStats)
	r.Get("/rtp", h.GetRTP)
	r.Get("/ws", h.Watch)

	return r
}
