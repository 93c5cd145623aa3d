package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tensionlab/pkg/buildinfo"
	errs "github.com/matzehuels/tensionlab/pkg/errors"
	"github.com/matzehuels/tensionlab/pkg/geom"
	"github.com/matzehuels/tensionlab/pkg/render"
	"github.com/matzehuels/tensionlab/pkg/session"
	"github.com/matzehuels/tensionlab/pkg/state"
)

// number encodes non-finite values as null.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

type resultJSON struct {
	TensionA   number `json:"tensionA"`
	TensionB   number `json:"tensionB"`
	ForceAX    number `json:"forceAX"`
	ForceAY    number `json:"forceAY"`
	ForceBX    number `json:"forceBX"`
	ForceBY    number `json:"forceBY"`
	TorqueA    number `json:"torqueA"`
	TorqueB    number `json:"torqueB"`
	NetTorque  number `json:"netTorque"`
	Degenerate bool   `json:"degenerate"`
}

type labelJSON struct {
	Point    string  `json:"point"`
	Octant   string  `json:"octant"`
	X        float64 `json:"x"` // canvas frame
	Y        float64 `json:"y"`
	Align    string  `json:"align"`
	Baseline string  `json:"baseline"`
	Score    int     `json:"score"`
}

type lineJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type diagramResponse struct {
	Session  string             `json:"session"`
	Source   string             `json:"source"`
	Revision uint64             `json:"revision"`
	State    map[string]float64 `json:"state"`
	Result   resultJSON         `json:"result"`
	Labels   []labelJSON        `json:"labels"`
	Readout  []lineJSON         `json:"readout"`
	Query    string             `json:"query"`
	Saved    string             `json:"saved,omitempty"`
}

// respond writes the session's current view. The caller holds e.mu.
func (s *Server) respond(w http.ResponseWriter, e *entry, outcome *session.Outcome) {
	v := e.sess.View(s.opts.Frame)
	r := v.Result
	resp := diagramResponse{
		Session:  e.sess.ID(),
		Source:   e.sess.Source().String(),
		Revision: e.sess.Revision(),
		State:    v.State.Map(),
		Result: resultJSON{
			TensionA:   number(r.TensionA),
			TensionB:   number(r.TensionB),
			ForceAX:    number(r.ForceAX),
			ForceAY:    number(r.ForceAY),
			ForceBX:    number(r.ForceBX),
			ForceBY:    number(r.ForceBY),
			TorqueA:    number(r.TorqueA),
			TorqueB:    number(r.TorqueB),
			NetTorque:  number(v.NetTorque),
			Degenerate: r.Degenerate,
		},
		Query: e.loc.Query().Encode(),
	}
	for i, p := range v.Labels {
		c := v.Frame.ToCanvas(p.Anchor)
		resp.Labels = append(resp.Labels, labelJSON{
			Point:    state.PointID(i).Label(),
			Octant:   p.Octant.String(),
			X:        c.X,
			Y:        c.Y,
			Align:    string(p.Align),
			Baseline: string(p.Baseline),
			Score:    p.Score,
		})
	}
	for _, l := range v.Lines() {
		resp.Readout = append(resp.Readout, lineJSON{Name: l.Name, Value: l.Value})
	}
	if outcome != nil {
		resp.Saved = outcome.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Get(),
	})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	id := s.clientID(w, r)
	e, err := s.open(r.Context(), id, r.URL.Query())
	if err != nil {
		writeError(w, badRequest("cannot start session", err))
		return
	}
	defer e.mu.Unlock()
	s.respond(w, e, nil)
}

// toWorld converts a client coordinate in the named frame.
func (s *Server) toWorld(frame string, x, y float64) (geom.Point, *Error) {
	if err := errs.ValidateFinite("x", x); err != nil {
		return geom.Point{}, badRequest("invalid coordinate", err)
	}
	if err := errs.ValidateFinite("y", y); err != nil {
		return geom.Point{}, badRequest("invalid coordinate", err)
	}
	switch frame {
	case "", "world":
		return geom.Pt(x, y), nil
	case "canvas":
		return s.opts.Frame.ToWorld(geom.Pt(x, y)), nil
	}
	return geom.Point{}, badRequest("frame must be canvas or world", nil)
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, badRequest("x and y must be numbers", nil))
		return
	}
	p, apiErr := s.toWorld(q.Get("frame"), x, y)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	cur, err := s.peek(r.Context(), r)
	if err != nil {
		writeError(w, badRequest("cannot start session", err))
		return
	}
	id, ok := state.HitTest(cur, p, state.HitRadius)

	resp := map[string]any{"hit": ok}
	if ok {
		resp["point"] = id.Label()
	}
	writeJSON(w, http.StatusOK, resp)
}

type dragRequest struct {
	Point string   `json:"point"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Frame string   `json:"frame"`
}

// handleDrag moves a point to its release position and saves.
func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequest("invalid JSON body", err))
		return
	}
	id, ok := state.ParsePointID(req.Point)
	if !ok {
		writeError(w, badRequest("unknown point "+strconv.Quote(req.Point), nil))
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, badRequest("x and y are required", nil))
		return
	}
	p, apiErr := s.toWorld(req.Frame, *req.X, *req.Y)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	e, err := s.lookup(r.Context(), s.clientID(w, r))
	if err != nil {
		writeError(w, badRequest("cannot start session", err))
		return
	}
	defer e.mu.Unlock()
	e.sess.Drag(id, p)
	outcome := e.sess.Save(r.Context())
	s.respond(w, e, &outcome)
}

type controlRequest struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// handleControl applies a raw widget value. Unparseable values count as zero.
func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequest("invalid JSON body", err))
		return
	}
	kind, ok := state.ParseControlKind(req.Kind)
	if !ok {
		writeError(w, badRequest("kind must be magnitude or direction", nil))
		return
	}

	e, err := s.lookup(r.Context(), s.clientID(w, r))
	if err != nil {
		writeError(w, badRequest("cannot start session", err))
		return
	}
	defer e.mu.Unlock()
	outcome := e.sess.Control(r.Context(), state.Control{Kind: kind, Raw: req.Value})
	s.respond(w, e, &outcome)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	e, err := s.lookup(r.Context(), s.clientID(w, r))
	if err != nil {
		writeError(w, badRequest("cannot start session", err))
		return
	}
	defer e.mu.Unlock()
	e.sess.Reset(r.Context())
	s.respond(w, e, nil)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	cur, err := s.peek(r.Context(), r)
	if err != nil {
		writeError(w, badRequest("cannot start session", err))
		return
	}
	scene := render.Build(state.Evaluate(cur, s.opts.Frame))

	switch format {
	case "svg":
		data := render.SVG(scene)
		if r.URL.Query().Get("engine") == "graphviz" {
			data, err = render.DOTToSVG(r.Context(), render.DOT(scene))
			if err != nil {
				writeError(w, internal("graphviz render failed", err))
				return
			}
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(data)
	case "png":
		var buf bytes.Buffer
		if err := render.PNG(&buf, scene); err != nil {
			writeError(w, internal("png render failed", err))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(render.DOT(scene)))
	default:
		writeError(w, notFound("unknown render format "+strconv.Quote(format)))
	}
}
