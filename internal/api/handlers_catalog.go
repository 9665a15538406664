package api

import (
	"net/http"

	"shareit/internal/service"

	"github.com/julienschmidt/httprouter"
)

func (s *HTTPServer) handleCreateUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.UserCreate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.svc.Users.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch service.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.svc.Users.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.svc.Users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	users, err := s.svc.Users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *HTTPServer) handleDeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := pathID(ps, "userId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := actingUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req service.ItemCreate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.svc.Items.Create(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := actingUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	itemID, err := pathID(ps, "itemId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch service.ItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.svc.Items.Update(r.Context(), userID, itemID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("itemId") == "search" {
		s.searchItems(w, r)
		return
	}

	userID, err := actingUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	itemID, err := pathID(ps, "itemId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := s.svc.Items.Get(r.Context(), userID, itemID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleListOwnerItems(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := actingUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := s.svc.Items.ListByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *HTTPServer) searchItems(w http.ResponseWriter, r *http.Request) {
	views, err := s.svc.Items.Search(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}
