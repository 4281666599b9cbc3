// Package router serves the slider, north arrow and layer list over HTTP.
//
// Handlers never touch a controller directly: every read and write is
// submitted to the dispatch loop that owns them.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
	"github.com/mohammed-shakir/geotime-toolkit/internal/dispatch"
	"github.com/mohammed-shakir/geotime-toolkit/internal/geoview"
	"github.com/mohammed-shakir/geotime-toolkit/internal/layerevents"
	"github.com/mohammed-shakir/geotime-toolkit/internal/northarrow"
	"github.com/mohammed-shakir/geotime-toolkit/internal/snapshot"
	"github.com/mohammed-shakir/geotime-toolkit/internal/timeslider"
)

const maxBody = 64 << 10

// Deps are the loop-owned objects the routes operate on.
type Deps struct {
	Loop   *dispatch.Loop
	View   geoview.Kind
	Slider *timeslider.Controller
	Arrow  *northarrow.Controller
	Layers *geoview.LayerList
	Events *layerevents.Applier
}

type handlers struct {
	log *slog.Logger
	d   Deps
}

// New returns the /v1 routes. Mount it under "/v1".
func New(logger *slog.Logger, d Deps) chi.Router {
	h := &handlers{log: logger.With("component", "router"), d: d}

	r := chi.NewRouter()
	r.Get("/slider", h.getSlider)
	r.Put("/slider/steps", h.putSteps)
	r.Get("/slider/steps/{step}/time", h.getStepTime)
	r.Get("/north-arrow", h.getNorthArrow)
	r.Put("/north-arrow/heading", h.putHeading)
	r.Get("/layers", h.getLayers)
	r.Post("/layers/events", h.postLayerEvent)
	return r
}

// do runs fn on the loop, answering 503 when the loop is gone.
func (h *handlers) do(w http.ResponseWriter, r *http.Request, fn func()) bool {
	err := h.d.Loop.Do(r.Context(), fn)
	if err == nil {
		return true
	}
	status := http.StatusInternalServerError
	if errors.Is(err, dispatch.ErrStopped) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	h.log.WarnContext(r.Context(), "dispatch failed", "err", err, "path", r.URL.Path)
	writeError(w, status, err.Error())
	return false
}

func (h *handlers) capture() snapshot.Snapshot {
	return snapshot.Capture(string(h.d.View), h.d.Slider, h.d.Arrow)
}

func (h *handlers) getSlider(w http.ResponseWriter, r *http.Request) {
	var s snapshot.Snapshot
	if !h.do(w, r, func() { s = h.capture() }) {
		return
	}
	etag := s.ETag()
	w.Header().Set("ETag", etag)
	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type stepsReq struct {
	Start *int `json:"start"`
	End   *int `json:"end"`
}

func (h *handlers) putSteps(w http.ResponseWriter, r *http.Request) {
	var req stepsReq
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Start == nil || req.End == nil {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}

	var s snapshot.Snapshot
	if !h.do(w, r, func() {
		h.d.Slider.SetSteps(*req.Start, *req.End)
		s = h.capture()
	}) {
		return
	}
	w.Header().Set("ETag", s.ETag())
	writeJSON(w, http.StatusOK, s)
}

type stepTimeResp struct {
	Step int        `json:"step"`
	Time *time.Time `json:"time"`
}

func (h *handlers) getStepTime(w http.ResponseWriter, r *http.Request) {
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "step must be an integer")
		return
	}

	var (
		t  time.Time
		ok bool
	)
	if !h.do(w, r, func() { t, ok = h.d.Slider.TimeForStep(step) }) {
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, stepTimeResp{Step: step})
		return
	}
	t = t.UTC()
	writeJSON(w, http.StatusOK, stepTimeResp{Step: step, Time: &t})
}

type northArrowResp struct {
	Bound    bool    `json:"bound"`
	Heading  float64 `json:"heading"`
	AutoHide bool    `json:"auto_hide"`
}

func (h *handlers) arrowState() northArrowResp {
	return northArrowResp{
		Bound:    h.d.Arrow.Bound(),
		Heading:  h.d.Arrow.Heading(),
		AutoHide: h.d.Arrow.AutoHide(),
	}
}

func (h *handlers) getNorthArrow(w http.ResponseWriter, r *http.Request) {
	var out northArrowResp
	if !h.do(w, r, func() { out = h.arrowState() }) {
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type headingReq struct {
	Heading  *float64 `json:"heading"`
	AutoHide *bool    `json:"auto_hide"`
}

func (h *handlers) putHeading(w http.ResponseWriter, r *http.Request) {
	var req headingReq
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Heading == nil {
		writeError(w, http.StatusBadRequest, "heading is required")
		return
	}

	var out northArrowResp
	if !h.do(w, r, func() {
		h.d.Arrow.SetHeading(*req.Heading)
		if req.AutoHide != nil {
			h.d.Arrow.SetAutoHide(*req.AutoHide)
		}
		out = h.arrowState()
	}) {
		return
	}
	if !out.Bound {
		writeError(w, http.StatusConflict, "north arrow is not bound to a view")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type layerResp struct {
	ID            string            `json:"id"`
	LoadStatus    model.LoadStatus  `json:"load_status"`
	TimeAware     bool              `json:"time_aware"`
	TimeFiltering *bool             `json:"time_filtering,omitempty"`
	Extent        *model.TimeExtent `json:"extent,omitempty"`
	Interval      *model.TimeValue  `json:"interval,omitempty"`
}

func (h *handlers) getLayers(w http.ResponseWriter, r *http.Request) {
	var out []layerResp
	if !h.do(w, r, func() {
		for _, l := range h.d.Layers.Layers() {
			lr := layerResp{ID: l.ID(), LoadStatus: l.LoadStatus()}
			if ta, ok := l.(geoview.TimeAware); ok {
				tf, ext, iv := ta.IsTimeFilteringEnabled(), ta.FullTimeExtent(), ta.TimeInterval()
				lr.TimeAware = true
				lr.TimeFiltering = &tf
				lr.Extent = &ext
				lr.Interval = &iv
			}
			out = append(out, lr)
		}
	}) {
		return
	}
	if out == nil {
		out = []layerResp{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"layers": out})
}

func (h *handlers) postLayerEvent(w http.ResponseWriter, r *http.Request) {
	var ev layerevents.Event
	if err := decodeBody(w, r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		res      layerevents.Result
		applyErr error
	)
	if !h.do(w, r, func() { res, applyErr = h.d.Events.Apply(ev) }) {
		return
	}
	if applyErr != nil {
		writeError(w, eventStatus(applyErr), applyErr.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": res.String()})
}

func eventStatus(err error) int {
	switch {
	case errors.Is(err, layerevents.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, layerevents.ErrUnknownLayer):
		return http.StatusNotFound
	case errors.Is(err, layerevents.ErrLayerExists):
		return http.StatusConflict
	case errors.Is(err, layerevents.ErrNotTemporal):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

// etagMatch handles a comma separated If-None-Match list and "*".
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, c := range strings.Split(header, ",") {
		c = strings.TrimSpace(c)
		c = strings.TrimPrefix(c, "W/")
		if c == "*" || c == etag {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
