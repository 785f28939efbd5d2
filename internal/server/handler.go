package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/rferrer/steady/internal/service"
	"github.com/rferrer/steady/internal/weekly"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// apiError is what a failed handler produces: an HTTP status plus the stable
// error body `{"error": ..., "error_code": ...}`.
type apiError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Code    string `json:"error_code,omitempty"`
}

// statusByCode maps service error codes onto the error taxonomy: validation
// 400, authorization 401/403, missing 404, conflict 409.
var statusByCode = map[string]int{
	"ROOM_CODE_TOO_SHORT":   http.StatusBadRequest,
	"ROOM_CODE_TOO_LONG":    http.StatusBadRequest,
	"ROOM_CODE_INVALID":     http.StatusBadRequest,
	"ROOM_CODE_RESERVED":    http.StatusBadRequest,
	"DISPLAY_NAME_INVALID":  http.StatusBadRequest,
	"FOCUS_AREAS_INVALID":   http.StatusBadRequest,
	"CONFIRMATION_REQUIRED": http.StatusBadRequest,
	"JOIN_REQUIRED":         http.StatusUnauthorized,
	"NOT_A_MEMBER":          http.StatusForbidden,
	"NOT_CREATOR":           http.StatusForbidden,
	"ROOM_INVITE_ONLY":      http.StatusForbidden,
	"ROOM_LOCKED":           http.StatusForbidden,
	"ROOM_FULL":             http.StatusForbidden,
	"ROOM_NOT_FOUND":        http.StatusNotFound,
	"NOTHING_TO_UNDO":       http.StatusNotFound,
	"DUPLICATE_NAME":        http.StatusConflict,
	"FOCUS_ALREADY_SET":     http.StatusConflict,
	"UNDO_WINDOW_ELAPSED":   http.StatusConflict,
}

// serviceError translates a service-layer failure into an apiError. Unknown
// errors become a generic 500 carrying the underlying message.
func serviceError(err error) *apiError {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		status, ok := statusByCode[svcErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		return &apiError{Status: status, Message: svcErr.Message, Code: svcErr.Code}
	}
	return &apiError{Status: http.StatusInternalServerError, Message: err.Error()}
}

func badRequest(message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Message: message}
}

// apiHandler is an http.HandlerFunc that reports failure as a value instead
// of writing it ad hoc.
type apiHandler func(w http.ResponseWriter, r *http.Request) *apiError

// wrap turns an apiHandler into an http.HandlerFunc, writing the error body
// and logging server-side failures.
func wrap(fn apiHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if apiErr := fn(w, r); apiErr != nil {
			if apiErr.Status >= http.StatusInternalServerError {
				slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", apiErr.Message)
			}
			writeJSON(w, apiErr.Status, apiErr)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Handler aggregates all HTTP handlers; services are injected.
type Handler struct {
	rooms    *service.RoomService
	ledger   *service.LedgerService
	focus    *service.FocusService
	suggest  *service.SuggestService
	validate *validator.Validate
}

// NewHandler creates a Handler over the given services.
func NewHandler(rooms *service.RoomService, ledger *service.LedgerService, focus *service.FocusService, suggest *service.SuggestService) *Handler {
	return &Handler{
		rooms:    rooms,
		ledger:   ledger,
		focus:    focus,
		suggest:  suggest,
		validate: validator.New(),
	}
}

// decode parses and shape-validates a JSON request body.
func (h *Handler) decode(r *http.Request, dst any) *apiError {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid JSON body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return badRequest("invalid payload: " + err.Error())
	}
	return nil
}

// AdmitRoom handles POST /room: create and/or join a room.
func (h *Handler) AdmitRoom(w http.ResponseWriter, r *http.Request) *apiError {
	var req admitRequest
	if apiErr := h.decode(r, &req); apiErr != nil {
		return apiErr
	}

	result, err := h.rooms.Admit(r.Context(), service.AdmitParams{
		RoomCode:    req.RoomCode,
		DisplayName: req.DisplayName,
		UserID:      req.UserID,
		InviteCode:  req.InviteCode,
	})
	if err != nil {
		return serviceError(err)
	}

	resp := map[string]any{
		"room":    newRoomView(result.Room, result.MemberCount, req.UserID),
		"created": result.Created,
		"joined":  result.Member != nil,
	}
	if result.Member != nil {
		resp["member"] = newMemberView(result.Member)
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

// GetRoom handles GET /room: public fields plus an optional duplicate-name
// pre-check. Read-only; never creates the room.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) *apiError {
	roomCode := r.URL.Query().Get("roomCode")
	if roomCode == "" {
		return badRequest("roomCode is required")
	}

	room, count, err := h.rooms.Peek(r.Context(), roomCode)
	if err != nil {
		return serviceError(err)
	}

	resp := map[string]any{"room": newRoomView(room, count, r.URL.Query().Get("userId"))}
	if name := r.URL.Query().Get("displayName"); name != "" {
		available, err := h.rooms.NameAvailable(r.Context(), roomCode, name, r.URL.Query().Get("userId"))
		if err != nil {
			return serviceError(err)
		}
		resp["nameAvailable"] = available
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

// ManageRoom handles POST /room-manage: creator-only settings update.
func (h *Handler) ManageRoom(w http.ResponseWriter, r *http.Request) *apiError {
	var req manageRequest
	if apiErr := h.decode(r, &req); apiErr != nil {
		return apiErr
	}

	room, err := h.rooms.Manage(r.Context(), service.ManageParams{
		RoomCode:   req.RoomCode,
		UserID:     req.UserID,
		Locked:     req.Locked,
		InviteOnly: req.InviteOnly,
		MaxMembers: req.MaxMembers,
	})
	if err != nil {
		return serviceError(err)
	}

	writeJSON(w, http.StatusOK, map[string]any{"room": newRoomView(room, 0, req.UserID)})
	return nil
}

// GetRoomSettings handles GET /room-manage: settings plus roster, creator-only.
func (h *Handler) GetRoomSettings(w http.ResponseWriter, r *http.Request) *apiError {
	roomCode := r.URL.Query().Get("roomCode")
	userID := r.URL.Query().Get("userId")
	if roomCode == "" || userID == "" {
		return badRequest("roomCode and userId are required")
	}

	room, members, err := h.rooms.Roster(r.Context(), roomCode, userID)
	if err != nil {
		return serviceError(err)
	}

	roster := make([]memberView, len(members))
	for i := range members {
		roster[i] = newMemberView(&members[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":    newRoomView(room, len(members), userID),
		"members": roster,
	})
	return nil
}

// LeaveRoom handles POST /room-leave: confirmation-gated membership removal.
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) *apiError {
	var req leaveRequest
	if apiErr := h.decode(r, &req); apiErr != nil {
		return apiErr
	}

	if err := h.rooms.Leave(r.Context(), req.RoomCode, req.UserID, req.Confirm); err != nil {
		return serviceError(err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"left": true})
	return nil
}

// PreviewLeave handles GET /room-leave: describes what a confirmed leave will
// remove.
func (h *Handler) PreviewLeave(w http.ResponseWriter, r *http.Request) *apiError {
	roomCode := r.URL.Query().Get("roomCode")
	userID := r.URL.Query().Get("userId")
	if roomCode == "" || userID == "" {
		return badRequest("roomCode and userId are required")
	}

	preview, err := h.rooms.PreviewLeave(r.Context(), roomCode, userID)
	if err != nil {
		return serviceError(err)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"displayName": preview.DisplayName,
		"joinedAt":    preview.JoinedAt,
		"entryCount":  preview.EntryCount,
	})
	return nil
}

// PostEntry handles POST /state: append a signed entry and return the fresh
// weekly state.
func (h *Handler) PostEntry(w http.ResponseWriter, r *http.Request) *apiError {
	var req entryRequest
	if apiErr := h.decode(r, &req); apiErr != nil {
		return apiErr
	}

	entry, err := h.ledger.Append(r.Context(), req.RoomCode, req.UserID, req.Delta, req.Label)
	if err != nil {
		return serviceError(err)
	}

	state, err := h.ledger.State(r.Context(), req.RoomCode, req.UserID, time.Now())
	if err != nil {
		return serviceError(err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entry": newEntryView(entry),
		"state": h.stateView(state, nil),
	})
	return nil
}

// GetState handles GET /state: the recomputed weekly aggregate and
// leaderboard, plus the caller's own history when months is supplied.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) *apiError {
	roomCode := r.URL.Query().Get("roomCode")
	if roomCode == "" {
		return badRequest("roomCode is required")
	}
	userID := r.URL.Query().Get("userId")

	state, err := h.ledger.State(r.Context(), roomCode, userID, time.Now())
	if err != nil {
		return serviceError(err)
	}

	var history []entryView
	if monthsStr := r.URL.Query().Get("months"); monthsStr != "" && userID != "" {
		months, err := strconv.Atoi(monthsStr)
		if err != nil {
			return badRequest("months must be an integer")
		}
		entries, err := h.ledger.History(r.Context(), roomCode, userID, months)
		if err != nil {
			return serviceError(err)
		}
		history = make([]entryView, len(entries))
		for i := range entries {
			history[i] = newEntryView(&entries[i])
		}
	}

	writeJSON(w, http.StatusOK, h.stateView(state, history))
	return nil
}

// UndoEntry handles DELETE /state: retract the caller's most recent entry
// inside the undo window.
func (h *Handler) UndoEntry(w http.ResponseWriter, r *http.Request) *apiError {
	roomCode := r.URL.Query().Get("roomCode")
	userID := r.URL.Query().Get("userId")
	if roomCode == "" || userID == "" {
		return badRequest("roomCode and userId are required")
	}

	if err := h.ledger.Undo(r.Context(), roomCode, userID); err != nil {
		return serviceError(err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"undone": true})
	return nil
}

// SetFocus handles POST /focus: one-time weekly focus lock.
func (h *Handler) SetFocus(w http.ResponseWriter, r *http.Request) *apiError {
	var req focusRequest
	if apiErr := h.decode(r, &req); apiErr != nil {
		return apiErr
	}

	focus, err := h.focus.Set(r.Context(), req.RoomCode, req.UserID, req.Areas, time.Now())
	if err != nil {
		return serviceError(err)
	}
	writeJSON(w, http.StatusOK, focusView{
		WeekKey:   focus.WeekKey,
		Set:       true,
		Areas:     focus.Areas,
		Locked:    focus.Locked,
		CreatedAt: focus.CreatedAt,
	})
	return nil
}

// GetFocus handles GET /focus: the caller's focus for the current week.
func (h *Handler) GetFocus(w http.ResponseWriter, r *http.Request) *apiError {
	roomCode := r.URL.Query().Get("roomCode")
	userID := r.URL.Query().Get("userId")
	if roomCode == "" || userID == "" {
		return badRequest("roomCode and userId are required")
	}

	now := time.Now()
	focus, err := h.focus.Get(r.Context(), roomCode, userID, now)
	if err != nil {
		return serviceError(err)
	}
	if focus == nil {
		writeJSON(w, http.StatusOK, focusView{WeekKey: weekly.WindowFor(now).Key})
		return nil
	}
	writeJSON(w, http.StatusOK, focusView{
		WeekKey:   focus.WeekKey,
		Set:       true,
		Areas:     focus.Areas,
		Locked:    focus.Locked,
		CreatedAt: focus.CreatedAt,
	})
	return nil
}

// SuggestRooms handles GET /room-suggestions: candidate room codes.
func (h *Handler) SuggestRooms(w http.ResponseWriter, r *http.Request) *apiError {
	count := 0
	if countStr := r.URL.Query().Get("count"); countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil {
			return badRequest("count must be an integer")
		}
		count = n
	}

	suggestions, err := h.suggest.Suggest(r.Context(), count)
	if err != nil {
		return serviceError(err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
	return nil
}

// ValidateRoomCode handles POST /room-suggestions: run a candidate code
// through the admission rules without creating anything.
func (h *Handler) ValidateRoomCode(w http.ResponseWriter, r *http.Request) *apiError {
	var req suggestValidateRequest
	if apiErr := h.decode(r, &req); apiErr != nil {
		return apiErr
	}

	v, err := h.suggest.Validate(r.Context(), req.RoomCode)
	if err != nil {
		return serviceError(err)
	}
	resp := map[string]any{
		"code":      v.Code,
		"valid":     v.Valid,
		"available": v.Available,
	}
	if v.ErrorCode != "" {
		resp["error_code"] = v.ErrorCode
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (h *Handler) stateView(state *service.RoomState, history []entryView) stateView {
	board := make([]statsView, len(state.Leaderboard))
	for i, m := range state.Leaderboard {
		board[i] = newStatsView(m)
	}
	view := stateView{
		WeekKey:     state.WeekKey,
		WindowStart: state.WindowStart,
		WindowEnd:   state.WindowEnd,
		Leaderboard: board,
		Milestone:   state.Milestone,
		History:     history,
	}
	if state.You != nil {
		you := newStatsView(*state.You)
		view.You = &you
	}
	return view
}
