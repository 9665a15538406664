package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/export"
	"shareit/internal/models"
	"shareit/internal/service"

	"github.com/julienschmidt/httprouter"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Validation("invalid JSON body: %v", err)
	}
	return nil
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.health != nil {
		if err := s.health.HealthCheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type bookingBody struct {
	ItemID int64  `json:"itemId"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, err := actingUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body bookingBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	req := service.BookingRequest{ItemID: body.ItemID}
	if req.Start, err = models.ParseTimestamp(body.Start, s.location); err != nil {
		writeError(w, r, domain.Validation("start: %v", err))
		return
	}
	if req.End, err = models.ParseTimestamp(body.End, s.location); err != nil {
		writeError(w, r, domain.Validation("end: %v", err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	view, err := s.svc.Bookings.Create(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := actingUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	bookingID, err := pathID(ps, "bookingId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("approved"))
	approved, err := strconv.ParseBool(raw)
	if err != nil {
		writeError(w, r, domain.Validation("approved must be true or false, got %q", raw))
		return
	}

	view, err := s.svc.Bookings.SetApproval(r.Context(), userID, bookingID, approved)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("bookingId") == "owner" {
		s.listBookings(w, r, models.RoleOwner)
		return
	}

	userID, err := actingUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	bookingID, err := pathID(ps, "bookingId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := s.svc.Bookings.Get(r.Context(), userID, bookingID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleListBookerBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.listBookings(w, r, models.RoleBooker)
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request, role models.BookingRole) {
	userID, err := actingUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	state, err := service.ParseState(r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	from, err := queryInt(r, "from", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	size, err := queryInt(r, "size", s.booking.DefaultPageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views, err := s.svc.Bookings.List(r.Context(), userID, role, state, from, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *HTTPServer) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("bookingId") != "owner" {
		writeError(w, r, domain.NotFound("Route %s %s not found", r.Method, r.URL.Path))
		return
	}
	if s.svc.Exporter == nil {
		writeError(w, r, domain.NotFound("Export is not configured"))
		return
	}

	userID, err := actingUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	state, err := service.ParseState(r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	bookings, err := s.svc.Bookings.Export(r.Context(), userID, state)
	if err != nil {
		writeError(w, r, err)
		return
	}

	report := export.OwnerReport{
		OwnerID:     userID,
		State:       state,
		GeneratedAt: time.Now(),
		Bookings:    bookings,
	}
	data, err := s.svc.Exporter.Render(report)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.FileName()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *HTTPServer) handleAddComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

	var req service.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	view, err := s.svc.Comments.Add(r.Context(), userID, itemID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}
