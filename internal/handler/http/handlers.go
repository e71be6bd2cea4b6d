package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"example.com/streakly/internal/auth"
	"example.com/streakly/internal/domain"
	"example.com/streakly/internal/usecase"
	"example.com/streakly/pkg/response"
)

const (
	MinDailyGoal = 1
	MaxDailyGoal = 50
)

// Authenticator is the slice of the hosted auth provider the handlers need.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (auth.Session, error)
	SignIn(ctx context.Context, email, password string) (auth.Session, error)
	SignOut(ctx context.Context, token string) error
}

type Handler struct {
	mux      *http.ServeMux
	registry *usecase.Registry
	auth     Authenticator
}

func New(registry *usecase.Registry, authClient Authenticator) http.Handler {
	h := &Handler{
		mux:      http.NewServeMux(),
		registry: registry,
		auth:     authClient,
	}
	h.routes()
	return h
}

func (h *Handler) routes() {
	h.mux.HandleFunc("GET /healthz", h.health)
	h.mux.HandleFunc("POST /api/auth/signup", h.signUp)
	h.mux.HandleFunc("POST /api/auth/signin", h.signIn)
	h.mux.HandleFunc("POST /api/auth/signout", h.signOut)
	h.mux.HandleFunc("GET /api/state", h.state)
	h.mux.HandleFunc("GET /api/tasks", h.tasks)
	h.mux.HandleFunc("POST /api/tasks", h.addTask)
	h.mux.HandleFunc("POST /api/tasks/{id}/toggle", h.toggleTask)
	h.mux.HandleFunc("PATCH /api/tasks/{id}", h.editTask)
	h.mux.HandleFunc("DELETE /api/tasks/{id}", h.deleteTask)
	h.mux.HandleFunc("PUT /api/settings/goal", h.setGoal)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"ok": "true"})
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	h.credentials(w, r, h.auth.SignUp, http.StatusCreated)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	h.credentials(w, r, h.auth.SignIn, http.StatusOK)
}

func (h *Handler) credentials(w http.ResponseWriter, r *http.Request, call func(context.Context, string, string) (auth.Session, error), okStatus int) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email/password")
		return
	}
	session, err := call(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthFailed) {
			writeError(w, http.StatusUnauthorized, "credentials")
			return
		}
		writeError(w, http.StatusBadGateway, "auth")
		return
	}
	response.JSON(w, okStatus, session)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	user, token, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if err := h.auth.SignOut(r.Context(), token); err != nil {
		writeError(w, http.StatusBadGateway, "auth")
		return
	}
	h.registry.Drop(user.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	m := h.registry.For(user.ID)
	if err := m.Load(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "store")
		return
	}
	response.JSON(w, http.StatusOK, m.Snapshot())
}

func (h *Handler) tasks(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	m := h.registry.For(user.ID)
	if err := m.Load(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "store")
		return
	}
	if day := r.URL.Query().Get("day"); day != "" {
		response.JSON(w, http.StatusOK, map[string]any{"items": m.TasksByDay(day)})
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"items": m.Snapshot().Tasks})
}

func (h *Handler) addTask(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "json")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text")
		return
	}
	m := h.registry.For(user.ID)
	task, err := m.AddTask(r.Context(), req.Text)
	if err != nil {
		writeError(w, http.StatusBadGateway, "store")
		return
	}
	response.JSON(w, http.StatusCreated, task)
}

func (h *Handler) toggleTask(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	m := h.registry.For(user.ID)
	if err := m.ToggleTask(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusBadGateway, "store")
		return
	}
	response.JSON(w, http.StatusOK, m.Snapshot())
}

func (h *Handler) editTask(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "json")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text")
		return
	}
	m := h.registry.For(user.ID)
	// StartEditing works off the cache; a fresh manager has nothing in it
	// yet and would silently drop the edit.
	if err := m.Load(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "store")
		return
	}
	m.StartEditing(r.PathValue("id"))
	m.SetEditText(req.Text)
	if err := m.SaveEdit(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "store")
		return
	}
	response.JSON(w, http.StatusOK, m.Snapshot())
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	m := h.registry.For(user.ID)
	if err := m.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusBadGateway, "store")
		return
	}
	response.JSON(w, http.StatusOK, m.Snapshot())
}

func (h *Handler) setGoal(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Goal int `json:"goal"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "json")
		return
	}
	if req.Goal < MinDailyGoal || req.Goal > MaxDailyGoal {
		writeError(w, http.StatusBadRequest, "goal")
		return
	}
	m := h.registry.For(user.ID)
	if err := m.SetDailyGoal(r.Context(), req.Goal); err != nil {
		writeError(w, http.StatusBadGateway, "store")
		return
	}
	response.JSON(w, http.StatusOK, m.Snapshot())
}

// currentUser gates repository access on a valid bearer token. On failure
// it writes the 401 itself and returns ok=false.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (domain.User, string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		writeError(w, http.StatusUnauthorized, "token")
		return domain.User{}, "", false
	}
	user, err := auth.UserFromToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "token")
		return domain.User{}, "", false
	}
	return user, token, true
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data")
	}
	return nil
}

func writeError(w http.ResponseWriter, code int, msg string) {
	response.JSON(w, code, map[string]string{"error": msg})
}
