package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/erazemk/izposoja/internal/notify"
)

// NotificationsHandler serves a member's inbox.
type NotificationsHandler struct {
	Inbox *notify.Inbox
	Log   zerolog.Logger
}

// List handles GET /api/notifications. With ?unread=true only unread ones
// are returned.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	fetch := h.Inbox.List
	if r.URL.Query().Get("unread") == "true" {
		fetch = h.Inbox.Unread
	}
	list, err := fetch(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(list))
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.Inbox.UnreadCount(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"count": count})
}

// MarkRead handles PUT /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "notification")
	if !ok {
		return
	}

	n, err := h.Inbox.MarkRead(r.Context(), GetClaims(r.Context()).UserID, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, n)
}

// MarkAllRead handles PUT /api/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.Inbox.MarkAllRead(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int64{"updated": n})
}

// Delete handles DELETE /api/notifications/{id}.
func (h *NotificationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "notification")
	if !ok {
		return
	}

	if err := h.Inbox.Delete(r.Context(), GetClaims(r.Context()).UserID, id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "notification deleted"})
}
