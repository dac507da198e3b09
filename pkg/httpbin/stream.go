package httpbin

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/WhileEndless/go-httpbin/pkg/errors"
	"github.com/WhileEndless/go-httpbin/pkg/request"
	"github.com/WhileEndless/go-httpbin/pkg/stream"
)

const octetContentType = "application/octet-stream"

// Drip sends numbytes asterisks spread over duration seconds, flushing
// each one as it is produced.
//
//	/drip?duration=1&numbytes=10&delay=0&code=200
func (h *HTTPBin) Drip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}

	plan, err := stream.ParseDrip(d.Query("duration"), d.Query("numbytes"), d.Query("delay"), h.opts.MaxDuration)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if int64(plan.Units) > h.opts.MaxBodySize {
		h.writeError(w, errors.OutOfRange("numbytes", "numbytes exceeds "+strconv.FormatInt(h.opts.MaxBodySize, 10)))
		return
	}

	code := http.StatusOK
	if raw := d.Query("code"); raw != "" {
		code, err = strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, errors.InvalidParameter("code", raw, err))
			return
		}
		if code < 200 || code > 599 || !bodyAllowed(code) {
			h.writeError(w, errors.OutOfRange("code",
				"code must be between 200 and 599 and allow a body"))
			return
		}
	}

	w.Header().Set("Content-Type", octetContentType)
	w.WriteHeader(code)
	h.emit(w, r, plan, stream.DripSource('*'))
}

// Stream sends n newline-delimited JSON lines, capped at the configured maximum
func (h *HTTPBin) Stream(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}

	n, err := nonNegativeInt(d, "n")
	if err != nil {
		h.writeError(w, err)
		return
	}
	n = min(n, h.opts.MaxStreamLines)

	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(http.StatusOK)
	h.emit(w, r, stream.LinePlan(n, h.opts.LineInterval), stream.LineSource())
}

// emit streams plan to the client. Headers are flushed first so clients see
// the status before the first pause.
func (h *HTTPBin) emit(w http.ResponseWriter, r *http.Request, plan stream.Plan, src stream.Source) {
	rc := http.NewResponseController(w)
	_ = rc.Flush()

	written, err := stream.NewEmitter(w, rc.Flush).Emit(r.Context(), plan, src)
	if err != nil {
		h.logger.Debug("stream stopped",
			zap.String("path", r.URL.Path),
			zap.Int64("bytes", written),
			zap.Error(err),
		)
	}
}

// Delay waits the given number of seconds before echoing the request
func (h *HTTPBin) Delay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}

	raw := d.PathParam("seconds")
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		h.writeError(w, errors.InvalidParameter("delay", raw, err))
		return
	}
	if !(seconds >= 0 && seconds <= h.opts.MaxDuration.Seconds()) {
		h.writeError(w, errors.OutOfRange("delay", "delay must be between 0 and "+h.opts.MaxDuration.String()))
		return
	}

	if err := stream.Sleep(r.Context(), time.Duration(seconds*float64(time.Second))); err != nil {
		h.logger.Debug("delay cancelled", zap.Error(err))
		return
	}
	echo, err := newEcho(d, false)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, echo)
}

// Bytes returns n pseudorandom bytes, reproducible with ?seed=
func (h *HTTPBin) Bytes(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}

	n, err := h.byteCount(d)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var seed *uint64
	if raw := d.Query("seed"); raw != "" {
		s, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			h.writeError(w, errors.InvalidParameter("seed", raw, err))
			return
		}
		seed = &s
	}

	writeResponse(w, http.StatusOK, octetContentType, stream.RandomBytes(n, seed))
}

// Range serves n pattern bytes and honors Range requests
func (h *HTTPBin) Range(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	d, ok := h.describe(w, r, ps)
	if !ok {
		return
	}

	n, err := h.byteCount(d)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", octetContentType)
	w.Header().Set("ETag", `"range`+strconv.Itoa(n)+`"`)
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(stream.PatternBytes(n)))
}

func (h *HTTPBin) byteCount(d *request.Descriptor) (int, error) {
	n, err := nonNegativeInt(d, "n")
	if err != nil {
		return 0, err
	}
	if int64(n) > h.opts.MaxBodySize {
		return 0, errors.OutOfRange("n", "n exceeds "+strconv.FormatInt(h.opts.MaxBodySize, 10))
	}
	return n, nil
}

func nonNegativeInt(d *request.Descriptor, param string) (int, error) {
	raw := d.PathParam(param)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidParameter(param, raw, err)
	}
	if n < 0 {
		return 0, errors.OutOfRange(param, param+" must be non-negative")
	}
	return n, nil
}
