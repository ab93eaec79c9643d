package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/erazemk/izposoja/internal/auth"
	"github.com/erazemk/izposoja/internal/lending"
	"github.com/erazemk/izposoja/internal/model"
)

// RequestsHandler exposes the borrow and purchase lifecycle.
type RequestsHandler struct {
	Engine *lending.Engine
	Log    zerolog.Logger
}

type createRequestRequest struct {
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Create handles POST /api/requests.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkBody(req); err != nil {
		writeError(w, h.Log, err)
		return
	}

	claims := GetClaims(r.Context())
	created, err := h.Engine.CreateRequest(r.Context(), req.ItemID, claims.UserID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	h.Log.Info().Str("user", claims.Username).Int64("request", created.ID).Int64("item", req.ItemID).Msg("request created")
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/requests/{id}. Only the two parties may see it.
func (h *RequestsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "request")
	if !ok {
		return
	}

	req, err := h.party(r.Context(), GetClaims(r.Context()), id, false)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, req)
}

// Mine handles GET /api/requests/mine.
func (h *RequestsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Engine.RequestsByRequester)
}

// Received handles GET /api/requests/received.
func (h *RequestsHandler) Received(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Engine.RequestsReceived)
}

// Accepted handles GET /api/requests/accepted.
func (h *RequestsHandler) Accepted(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Engine.AcceptedRequestsFor)
}

func (h *RequestsHandler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, int64) ([]model.Request, error)) {
	reqs, err := fetch(r.Context(), GetClaims(r.Context()).UserID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(reqs))
}

// UpdateStatus handles PUT /api/requests/{id}/status. Only the item owner
// may accept or reject.
func (h *RequestsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "request")
	if !ok {
		return
	}

	var body updateStatusRequest
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := checkBody(body); err != nil {
		writeError(w, h.Log, err)
		return
	}

	claims := GetClaims(r.Context())
	if _, err := h.party(r.Context(), claims, id, true); err != nil {
		writeError(w, h.Log, err)
		return
	}

	status := model.RequestStatus(strings.ToUpper(strings.TrimSpace(body.Status)))
	h.respond(w, claims, "request status updated")(h.Engine.UpdateRequestStatus(r.Context(), id, status))
}

// MarkLent handles POST /api/requests/{id}/lent.
func (h *RequestsHandler) MarkLent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "request")
	if !ok {
		return
	}
	claims := GetClaims(r.Context())
	h.respond(w, claims, "item marked as lent")(h.Engine.MarkAsLent(r.Context(), id, claims.UserID))
}

// ConfirmReceipt handles POST /api/requests/{id}/receipt.
func (h *RequestsHandler) ConfirmReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "request")
	if !ok {
		return
	}
	claims := GetClaims(r.Context())
	h.respond(w, claims, "receipt confirmed")(h.Engine.ConfirmReceipt(r.Context(), id, claims.UserID))
}

// MarkDone handles POST /api/requests/{id}/done. Only the item owner may
// end a loan.
func (h *RequestsHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "request")
	if !ok {
		return
	}
	claims := GetClaims(r.Context())
	if _, err := h.party(r.Context(), claims, id, true); err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.respond(w, claims, "request marked as done")(h.Engine.MarkRequestAsDone(r.Context(), id))
}

// ConfirmReturn handles POST /api/requests/{id}/return. The side confirming
// follows from who the caller is.
func (h *RequestsHandler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "request")
	if !ok {
		return
	}
	claims := GetClaims(r.Context())
	req, err := h.party(r.Context(), claims, id, false)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	isBorrower := req.RequesterID == claims.UserID
	h.respond(w, claims, "return confirmed")(h.Engine.ConfirmReturn(r.Context(), id, claims.UserID, isBorrower))
}

// party loads a request and checks the caller is one of its parties, or
// its owner when ownerOnly is set.
func (h *RequestsHandler) party(ctx context.Context, claims *auth.Claims, id int64, ownerOnly bool) (*model.Request, error) {
	req, err := h.Engine.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.OwnerID == claims.UserID {
		return req, nil
	}
	if ownerOnly {
		return nil, fmt.Errorf("%w: only the item owner can do this", lending.ErrForbidden)
	}
	if req.RequesterID != claims.UserID {
		return nil, fmt.Errorf("%w: not a party to request %d", lending.ErrForbidden, id)
	}
	return req, nil
}

func (h *RequestsHandler) respond(w http.ResponseWriter, claims *auth.Claims, msg string) func(*model.Request, error) {
	return func(req *model.Request, err error) {
		if err != nil {
			writeError(w, h.Log, err)
			return
		}
		h.Log.Info().
			Str("user", claims.Username).
			Int64("request", req.ID).
			Str("status", string(req.Status)).
			Msg(msg)
		jsonResponse(w, http.StatusOK, req)
	}
}
