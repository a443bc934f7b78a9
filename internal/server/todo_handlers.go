package server

import (
	"net/http"

	"github.com/Tomlord1122/dashboard-backend/internal/schema"
	"github.com/Tomlord1122/dashboard-backend/internal/service"
)

const msgInvalidParameter = "Invalid parameter"

func (s *Server) getListsHandler(w http.ResponseWriter, r *http.Request) {
	lists, err := s.todoService.GetLists(r.Context())
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, lists)
}

func (s *Server) createListHandler(w http.ResponseWriter, r *http.Request) {
	var req service.CreateListRequest
	if !s.decodeJSON(w, r, schema.TodoList, &req) {
		return
	}

	list, err := s.todoService.CreateList(r.Context(), req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, list)
}

func (s *Server) getListHandler(w http.ResponseWriter, r *http.Request) {
	listID, ok := idParam(r, "listId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, msgInvalidParameter)
		return
	}

	list, err := s.todoService.GetList(r.Context(), listID)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, list)
}

func (s *Server) updateListHandler(w http.ResponseWriter, r *http.Request) {
	listID, ok := idParam(r, "listId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, msgInvalidParameter)
		return
	}
	var req service.UpdateListRequest
	if !s.decodeJSON(w, r, schema.TodoList, &req) {
		return
	}

	list, err := s.todoService.UpdateList(r.Context(), listID, req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, list)
}

func (s *Server) deleteListHandler(w http.ResponseWriter, r *http.Request) {
	listID, ok := idParam(r, "listId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, msgInvalidParameter)
		return
	}

	if err := s.todoService.DeleteList(r.Context(), listID); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, struct{}{})
}

func (s *Server) createItemHandler(w http.ResponseWriter, r *http.Request) {
	listID, ok := idParam(r, "listId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, msgInvalidParameter)
		return
	}
	var req service.CreateItemRequest
	if !s.decodeJSON(w, r, schema.TodoItemCreate, &req) {
		return
	}

	item, err := s.todoService.AppendItem(r.Context(), listID, req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, item)
}

func (s *Server) getItemHandler(w http.ResponseWriter, r *http.Request) {
	listID, ok1 := idParam(r, "listId")
	itemID, ok2 := idParam(r, "itemId")
	if !ok1 || !ok2 {
		respondWithError(w, http.StatusBadRequest, msgInvalidParameter)
		return
	}

	item, err := s.todoService.GetItem(r.Context(), listID, itemID)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, item)
}

func (s *Server) updateItemHandler(w http.ResponseWriter, r *http.Request) {
	listID, ok1 := idParam(r, "listId")
	itemID, ok2 := idParam(r, "itemId")
	if !ok1 || !ok2 {
		respondWithError(w, http.StatusBadRequest, msgInvalidParameter)
		return
	}
	var req service.UpdateItemRequest
	if !s.decodeJSON(w, r, schema.TodoItemUpdate, &req) {
		return
	}

	item, err := s.todoService.UpdateItem(r.Context(), listID, itemID, req)
	if err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, item)
}

func (s *Server) deleteItemHandler(w http.ResponseWriter, r *http.Request) {
	listID, ok1 := idParam(r, "listId")
	itemID, ok2 := idParam(r, "itemId")
	if !ok1 || !ok2 {
		respondWithError(w, http.StatusBadRequest, msgInvalidParameter)
		return
	}

	if err := s.todoService.DeleteItem(r.Context(), listID, itemID); err != nil {
		s.respondWithServiceError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, struct{}{})
}
