package interfaces

import (
	"net/http"
	"strconv"
	"time"

	"bistro/internal/pkg/httpx"
	"bistro/internal/service/calendar/application"
	"bistro/internal/service/calendar/domain"
)

// CalendarHandler 日历的 HTTP 入口
type CalendarHandler struct {
	scheduler *application.CalendarScheduler
}

func NewCalendarHandler(scheduler *application.CalendarScheduler) *CalendarHandler {
	return &CalendarHandler{scheduler: scheduler}
}

func (h *CalendarHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /calendars", h.create)
	mux.HandleFunc("GET /calendars", h.list)
	mux.HandleFunc("GET /calendars/{id}", h.get)
	mux.HandleFunc("PATCH /calendars/{id}", h.update)
	mux.HandleFunc("GET /calendars/month/{year}/{month}", h.byMonth)
}

func (h *CalendarHandler) create(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	var req application.CreateCalendarRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	view, err := h.scheduler.Create(r.Context(), &req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, view)
}

// list 默认只返回本月及以后的日历，?all=true 返回全部
func (h *CalendarHandler) list(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	var (
		list *application.CalendarList
		err  error
	)
	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); all {
		list, err = h.scheduler.ListAll(r.Context())
	} else {
		list, err = h.scheduler.ListUpcoming(r.Context())
	}
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

func (h *CalendarHandler) get(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	id, ok := httpx.PathInt64(w, r, "id")
	if !ok {
		return
	}
	view, err := h.scheduler.GetByID(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *CalendarHandler) update(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	id, ok := httpx.PathInt64(w, r, "id")
	if !ok {
		return
	}
	var req application.UpdateCalendarRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	view, err := h.scheduler.Update(r.Context(), id, &req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *CalendarHandler) byMonth(w http.ResponseWriter, r *http.Request) {
	r = httpx.Context(r)

	year, ok := httpx.PathInt64(w, r, "year")
	if !ok {
		return
	}
	month, ok := httpx.PathInt64(w, r, "month")
	if !ok {
		return
	}
	if month < 1 || month > 12 {
		httpx.WriteError(w, r, domain.ErrInvalidMonth)
		return
	}
	list, err := h.scheduler.FindByMonth(r.Context(), int(year), time.Month(month))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}
