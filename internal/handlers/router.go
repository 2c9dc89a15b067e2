package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router builds the full HTTP surface.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.withRequestLog, h.withRecover, h.withIdentity)

	r.HandleFunc("/", h.Index).Methods(http.MethodGet)

	r.HandleFunc("/thread/new", h.requireAuth(h.NewThreadForm)).Methods(http.MethodGet)
	r.HandleFunc("/thread/new", h.requireAuth(h.CreateThread)).Methods(http.MethodPost)
	r.HandleFunc("/thread/{id:[0-9]+}", h.ThreadByID).Methods(http.MethodGet)
	r.HandleFunc("/thread/{id:[0-9]+}/post", h.requireAuth(h.CreatePost)).Methods(http.MethodPost)

	r.HandleFunc("/login", h.LoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.Logout).Methods(http.MethodGet)
	r.HandleFunc("/register", h.RegisterForm).Methods(http.MethodGet)
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)

	r.HandleFunc("/MyProfile", h.requireAuth(h.MyProfile)).Methods(http.MethodGet)
	r.HandleFunc("/update-profile", h.requireAuth(h.UpdateProfile)).Methods(http.MethodPost)

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/",
		http.FileServer(http.Dir(h.cfg.StaticDir))))
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(h.cfg.UploadDir))))

	r.NotFoundHandler = h.withIdentity(http.HandlerFunc(h.NotFound))

	return r
}
