package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/erazemk/izposoja/internal/catalog"
	"github.com/erazemk/izposoja/internal/imaging"
	"github.com/erazemk/izposoja/internal/model"
)

// ItemsHandler handles the item catalog and owner dashboards.
type ItemsHandler struct {
	Catalog *catalog.Service
	Log     zerolog.Logger
}

var itemStatuses = map[model.ItemStatus]bool{
	model.ItemStatusAvailable:   true,
	model.ItemStatusUnavailable: true,
	model.ItemStatusSold:        true,
	model.ItemStatusReturned:    true,
}

// List handles GET /api/items?status=&type=&category=&urgency=.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{
		Status:   model.ItemStatus(strings.ToUpper(q.Get("status"))),
		Type:     model.ItemType(strings.ToUpper(q.Get("type"))),
		Category: q.Get("category"),
		Urgency:  strings.ToUpper(q.Get("urgency")),
	}
	if f.Status != "" && !itemStatuses[f.Status] {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if f.Type != "" && !f.Type.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid type")
		return
	}

	items, err := h.Catalog.Browse(r.Context(), f)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(items))
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in catalog.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	item, err := h.Catalog.Create(r.Context(), claims.UserID, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	h.Log.Info().Str("user", claims.Username).Int64("item", item.ID).Str("type", string(item.Type)).Msg("item posted")
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	item, err := h.Catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	var in catalog.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	item, err := h.Catalog.Update(r.Context(), claims.UserID, id, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	h.Log.Info().Str("user", claims.Username).Int64("item", id).Msg("item updated")
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if err := h.Catalog.Delete(r.Context(), claims.UserID, id); err != nil {
		writeError(w, h.Log, err)
		return
	}

	h.Log.Info().Str("user", claims.Username).Int64("item", id).Msg("item deleted")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Prepare(file)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, imaging.ErrUnsupported):
		jsonError(w, http.StatusBadRequest, "image must be JPEG or PNG")
		return
	case err != nil:
		writeError(w, h.Log, err)
		return
	}

	claims := GetClaims(r.Context())
	if err := h.Catalog.SetPhoto(r.Context(), claims.UserID, id, photo.Data, photo.MIME); err != nil {
		writeError(w, h.Log, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "image uploaded",
		"width":   photo.Width,
		"height":  photo.Height,
	})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	data, mime, err := h.Catalog.Photo(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// Active handles GET /api/me/items/active.
func (h *ItemsHandler) Active(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.Active(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(items))
}

// Lent handles GET /api/me/items/lent.
func (h *ItemsHandler) Lent(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.Lent(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Sold handles GET /api/me/items/sold.
func (h *ItemsHandler) Sold(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.Sold(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}
