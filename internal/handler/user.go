package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/filmorate/internal/model"
	"github.com/sakif/filmorate/internal/service"
)

// UserHandler serves /users: CRUD and the friendship graph.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HTTP: GET /users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HTTP: GET /users/{id}
func (h *UserHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HTTP: POST /users
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if err := decodeJSON(r, &user); err != nil {
		h.logger.Warn("invalid user JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	user.ID = 0

	created, err := h.users.Create(r.Context(), &user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HTTP: PUT /users
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if err := decodeJSON(r, &user); err != nil {
		h.logger.Warn("invalid user JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	updated, err := h.users.Update(r.Context(), &user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HTTP: DELETE /users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	conf, err := h.users.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

// HTTP: DELETE /users
func (h *UserHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	conf, err := h.users.DeleteAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

// HTTP: PUT /users/{id}/friends/{friendId}
func (h *UserHandler) HandleAddFriend(w http.ResponseWriter, r *http.Request) {
	userID, friendID, err := pathIDs(r, "id", "friendId")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.AddFriend(r.Context(), userID, friendID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HTTP: DELETE /users/{id}/friends/{friendId}
func (h *UserHandler) HandleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, friendID, err := pathIDs(r, "id", "friendId")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.RemoveFriend(r.Context(), userID, friendID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HTTP: GET /users/{id}/friends
func (h *UserHandler) HandleFriends(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	friends, err := h.users.Friends(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// HTTP: GET /users/{id}/friends/common/{otherId}
func (h *UserHandler) HandleCommonFriends(w http.ResponseWriter, r *http.Request) {
	id, otherID, err := pathIDs(r, "id", "otherId")
	if err != nil {
		writeError(w, err)
		return
	}

	common, err := h.users.CommonFriends(r.Context(), id, otherID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, common)
}
