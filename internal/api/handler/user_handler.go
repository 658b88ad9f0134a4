package handler

import (
	"net/http"

	"lc_stat/internal/app/service"
	"lc_stat/internal/common"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	userService    *service.UserService
	friendsService *service.FriendsService
}

func NewUserHandler(userService *service.UserService, friendsService *service.FriendsService) *UserHandler {
	return &UserHandler{userService: userService, friendsService: friendsService}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/debug-user", h.debugUser)
}

// RegisterMeRoutes mounts the profile routes of the authenticated caller.
func (h *UserHandler) RegisterMeRoutes(r chi.Router) {
	r.Get("/", h.getMe)
	r.Put("/", h.updateMe)
	r.Get("/friends", h.listFriends)
	r.Post("/friends", h.addFriend)
	r.Delete("/friends/{username}", h.removeFriend)
}

func (h *UserHandler) debugUser(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	if uid == "" {
		common.RespondWithError(w, http.StatusBadRequest, "uid query parameter is required")
		return
	}

	view, err := h.userService.Debug(r.Context(), uid)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *UserHandler) getMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(r.Context(), uid)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) updateMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}

	var req service.UpdateProfileRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), uid, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) listFriends(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}

	friends, err := h.friendsService.ResolveFriends(r.Context(), uid)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, friends)
}

func (h *UserHandler) addFriend(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}

	var req service.FriendRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}

	user, err := h.userService.AddFriend(r.Context(), uid, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) removeFriend(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.RemoveFriend(r.Context(), uid, chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}
