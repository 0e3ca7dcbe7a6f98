package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/larder/internal/model"
	"github.com/dukerupert/larder/internal/store"
	"github.com/dukerupert/larder/internal/validate"
	"github.com/dukerupert/larder/internal/websocket"
)

type ItemHandler struct {
	store  *store.ItemStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewItemHandler(s *store.ItemStore, hub *websocket.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{store: s, hub: hub, logger: logger}
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.Filter{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		Priority:  q.Get("priority"),
		Purchased: q.Get("purchased"),
		Sort:      q.Get("sort"),
		Order:     q.Get("order"),
	}

	items, err := h.store.List(filter)
	if err != nil {
		h.logger.Error("list items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		h.logger.Error("compute stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		// Non-numeric ids resolve to nothing, same as unknown ones
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	item, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get item", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMalformed(w)
		return
	}

	if msgs := validate.Item(in, true); len(msgs) > 0 {
		writeValidationError(w, msgs)
		return
	}

	item, err := h.store.Create(in)
	if err != nil {
		h.logger.Error("create item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.hub.Broadcast(websocket.ItemCreated(item))
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	existing, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get item", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var in model.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMalformed(w)
		return
	}

	// Partial validation: omitted fields mean "leave unchanged"
	if msgs := validate.Item(in, false); len(msgs) > 0 {
		writeValidationError(w, msgs)
		return
	}

	item, err := h.store.Update(id, in)
	if err != nil {
		h.logger.Error("update item", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.hub.Broadcast(websocket.ItemUpdated(item))
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	existing, err := h.store.GetByID(id)
	if err != nil {
		h.logger.Error("get item", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.store.Delete(id); err != nil {
		h.logger.Error("delete item", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.hub.Broadcast(websocket.ItemDeleted(id))
	w.WriteHeader(http.StatusNoContent)
}
