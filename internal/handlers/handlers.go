package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"webforum/internal/auth"
	"webforum/internal/config"
	"webforum/internal/content"
	"webforum/internal/models"
	"webforum/internal/profile"
	"webforum/internal/store"
)

type Handler struct {
	cfg      *config.Config
	identity *auth.Service
	sessions *auth.Sessions
	content  *content.Service
	profiles *profile.Service
	tpls     *template.Template
	log      zerolog.Logger
}

func New(cfg *config.Config, identity *auth.Service, sessions *auth.Sessions,
	contentSvc *content.Service, profiles *profile.Service, log zerolog.Logger) (*Handler, error) {

	tpls, err := template.ParseGlob(filepath.Join(cfg.TemplateDir, "*.html"))
	if err != nil {
		return nil, err
	}
	return &Handler{
		cfg:      cfg,
		identity: identity,
		sessions: sessions,
		content:  contentSvc,
		profiles: profiles,
		tpls:     tpls,
		log:      log,
	}, nil
}

// render executes a view inside the layout. Every view receives the
// request's resolved identity (nil when anonymous).
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	id, _ := auth.IdentityFrom(r.Context())
	data["Identity"] = id

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tpls.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error().Err(err).Str("view", name).Msg("render failed")
	}
}

// serverError logs the failing operation and answers with the generic 500
// page. Parameter values stay out of the log.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.log.Error().Err(err).Str("op", op).Msg("request failed")
	w.WriteHeader(http.StatusInternalServerError)
	h.render(w, r, "error", map[string]any{"Title": "Server Error"})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	h.render(w, r, "notfound", map[string]any{"Title": "Not Found"})
}

// -------- Threads

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	threads, err := h.content.ListThreads(r.Context())
	if err != nil {
		h.serverError(w, r, "list threads", err)
		return
	}
	h.render(w, r, "index", map[string]any{
		"Title":   "Forum",
		"Threads": threads,
	})
}

func (h *Handler) NewThreadForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "new_thread", map[string]any{"Title": "New Thread"})
}

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	_, err := h.content.CreateThread(r.Context(), id.UserID,
		r.FormValue("title"), r.FormValue("content"))
	if err != nil {
		h.serverError(w, r, "create thread", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) ThreadByID(w http.ResponseWriter, r *http.Request) {
	threadID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	thread, err := h.content.GetThread(r.Context(), threadID)
	if errors.Is(err, store.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, "get thread", err)
		return
	}

	posts, err := h.content.ListPosts(r.Context(), threadID)
	if err != nil {
		h.serverError(w, r, "list posts", err)
		return
	}

	h.render(w, r, "thread", map[string]any{
		"Title":  thread.Title,
		"Thread": thread,
		"Posts":  posts,
	})
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	threadID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.NotFound(w, r)
		return
	}
	id, _ := auth.IdentityFrom(r.Context())

	_, err = h.content.CreatePost(r.Context(), threadID, id.UserID, r.FormValue("content"))
	if errors.Is(err, store.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, "create post", err)
		return
	}
	http.Redirect(w, r, "/thread/"+strconv.FormatInt(threadID, 10), http.StatusSeeOther)
}

// -------- Accounts

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login", map[string]any{"Title": "Login"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	user, err := h.identity.Authenticate(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		w.WriteHeader(http.StatusUnauthorized)
		h.render(w, r, "login", map[string]any{
			"Title": "Login",
			"Error": "Invalid username or password",
		})
		return
	}
	if err != nil {
		h.serverError(w, r, "authenticate", err)
		return
	}

	if err := h.sessions.Create(r.Context(), w, user); err != nil {
		h.serverError(w, r, "create session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register", map[string]any{"Title": "Register"})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	userID, err := h.identity.Register(r.Context(), username, password)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, "register", map[string]any{
			"Title": "Register",
			"Error": "All fields are required",
		})
		return
	case errors.Is(err, auth.ErrUsernameTaken):
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, "register", map[string]any{
			"Title": "Register",
			"Error": "Username taken",
		})
		return
	case err != nil:
		h.serverError(w, r, "register", err)
		return
	}

	// fresh accounts are logged in right away
	user := &models.User{ID: userID, Username: username, Verified: false}
	if err := h.sessions.Create(r.Context(), w, user); err != nil {
		h.serverError(w, r, "create session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// -------- Profile

func (h *Handler) MyProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	user, err := h.profiles.Get(r.Context(), id.UserID)
	if err != nil {
		h.serverError(w, r, "get profile", err)
		return
	}
	h.render(w, r, "profile", map[string]any{
		"Title": "My Profile",
		"User":  user,
	})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	if err := r.ParseMultipartForm(h.cfg.MaxAvatarBytes + 1<<20); err != nil {
		h.profileError(w, r, id.UserID, http.StatusBadRequest, "Could not read the form")
		return
	}

	var up *profile.Upload
	file, header, err := r.FormFile("avatar")
	switch {
	case err == nil:
		defer file.Close()
		up = &profile.Upload{Filename: header.Filename, File: file}
	case errors.Is(err, http.ErrMissingFile):
		// avatar is optional
	default:
		h.profileError(w, r, id.UserID, http.StatusBadRequest, "Could not read the file")
		return
	}

	err = h.profiles.Update(r.Context(), id.UserID, r.FormValue("username"), up)
	switch {
	case errors.Is(err, profile.ErrNotImage):
		h.profileError(w, r, id.UserID, http.StatusBadRequest, "Only images are allowed")
	case errors.Is(err, profile.ErrTooLarge):
		h.profileError(w, r, id.UserID, http.StatusBadRequest, "The file is too large")
	case errors.Is(err, auth.ErrUsernameTaken):
		h.profileError(w, r, id.UserID, http.StatusBadRequest, "Username taken")
	case err != nil:
		h.serverError(w, r, "update profile", err)
	default:
		http.Redirect(w, r, "/MyProfile", http.StatusSeeOther)
	}
}

// profileError re-renders the profile page with a message, keeping the
// stored (unchanged) user data on screen.
func (h *Handler) profileError(w http.ResponseWriter, r *http.Request, userID int64, status int, msg string) {
	user, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		h.serverError(w, r, "get profile", err)
		return
	}
	w.WriteHeader(status)
	h.render(w, r, "profile", map[string]any{
		"Title": "My Profile",
		"User":  user,
		"Error": msg,
	})
}
