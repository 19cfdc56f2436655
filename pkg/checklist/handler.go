package checklist

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/homedash/homedash/internal/rest"
	log "github.com/sirupsen/logrus"
)

type ItemDTO struct {
	Id       string  `json:"id,omitempty"`
	Title    string  `json:"title"`
	Due      *string `json:"due,omitempty"`
	DueDate  string  `json:"dueDate,omitempty"`
	Done     bool    `json:"done"`
	Position int     `json:"position,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	list := mux.Vars(r)["list"]
	log.Debugf("Listing items of %s", list)
	items, err := h.service.List(r.Context(), list)
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, ItemToDTO(item))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	list := mux.Vars(r)["list"]
	item, ok := decodeItem(w, r, list)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), item)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ItemToDTO(created))
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["itemId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid item id", "")
		return
	}
	item, ok := decodeItem(w, r, vars["list"])
	if !ok {
		return
	}
	item.Id = id
	updated, err := h.service.Update(r.Context(), item)
	if err != nil {
		writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ItemToDTO(updated))
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["itemId"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid item id", "")
		return
	}
	deleted, err := h.service.Delete(r.Context(), vars["list"], id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeError(w, ErrItemNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeItem(w http.ResponseWriter, r *http.Request, list string) (Item, bool) {
	var dto ItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return Item{}, false
	}
	item, err := DTOToItem(dto, list)
	if err != nil {
		writeError(w, err)
		return Item{}, false
	}
	return item, true
}

func writeError(w http.ResponseWriter, err error) {
	var invalid *InvalidItemError
	switch {
	case errors.As(err, &invalid):
		rest.WriteError(w, http.StatusBadRequest, invalid.Message, "")
	case errors.Is(err, ErrInvalidList):
		rest.WriteError(w, http.StatusBadRequest, "Invalid list name", "")
	case errors.Is(err, ErrItemNotFound):
		rest.WriteError(w, http.StatusNotFound, "Item not found", "")
	default:
		log.Errorf("checklist request failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to update list", "")
	}
}

func ItemToDTO(item Item) ItemDTO {
	dto := ItemDTO{
		Id:       item.Id.String(),
		Title:    item.Title,
		DueDate:  item.DueDate,
		Done:     item.Done,
		Position: item.Position,
	}
	if item.Due != nil {
		due := item.Due.Format(time.RFC3339)
		dto.Due = &due
	}
	return dto
}

func DTOToItem(dto ItemDTO, list string) (Item, error) {
	item := Item{
		List:     list,
		Title:    dto.Title,
		DueDate:  dto.DueDate,
		Done:     dto.Done,
		Position: dto.Position,
	}
	if dto.Due != nil && *dto.Due != "" {
		due, err := time.Parse(time.RFC3339, *dto.Due)
		if err != nil {
			return Item{}, &InvalidItemError{Message: "Invalid due"}
		}
		item.Due = &due
	}
	return item, nil
}
