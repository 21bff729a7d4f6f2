package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/ocifkit/ocifkit/pkg/buildinfo"
	"github.com/ocifkit/ocifkit/pkg/errors"
	"github.com/ocifkit/ocifkit/pkg/observability"
	"github.com/ocifkit/ocifkit/pkg/pipeline"
	"github.com/ocifkit/ocifkit/pkg/validate"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// reportBody is the validation report returned by /v1/validate and by
// /v1/export for invalid documents.
type reportBody struct {
	Valid  bool                    `json:"valid"`
	Format validate.Format         `json:"format,omitempty"`
	Errors []validate.LocatedError `json:"errors"`
}

func newReport(res validate.Result) reportBody {
	errs := res.Errors
	if errs == nil {
		errs = []validate.LocatedError{}
	}
	return reportBody{Valid: res.Valid, Format: res.Format, Errors: errs}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Get().Version,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	src, ok := s.readBody(w, r)
	if !ok {
		return
	}
	opts := s.defaults
	opts.Refresh = queryBool(r, "refresh")
	res, err := s.runner.Validate(r.Context(), src, opts)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newReport(res))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	info, ok := pipeline.Info(format)
	if !ok {
		writeError(w, http.StatusBadRequest, string(errors.ErrCodeInvalidFormat),
			errors.UserMessage(pipeline.ValidateFormat(format)))
		return
	}

	opts, err := s.exportOptions(r, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(errors.GetCode(err)), errors.UserMessage(err))
		return
	}

	src, ok := s.readBody(w, r)
	if !ok {
		return
	}

	res, err := s.runner.Export(r.Context(), src, opts)
	var invalid *pipeline.InvalidDocumentError
	switch {
	case stderrors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, newReport(invalid.Report))
		return
	case errors.Is(err, errors.ErrCodeUnsupported):
		writeError(w, http.StatusNotImplemented, string(errors.ErrCodeUnsupported), errors.UserMessage(err))
		return
	case errors.Is(err, errors.ErrCodeTimeout) || stderrors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, string(errors.ErrCodeTimeout), "export timed out")
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Disposition", `inline; filename="diagram.`+info.Extension+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// exportOptions overlays query parameters on the server defaults.
func (s *Server) exportOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := s.defaults
	opts.Formats = []string{format}
	q := r.URL.Query()

	if v := q.Get("connector"); v != "" {
		opts.Connector = v
	}
	if v := q.Get("engine"); v != "" {
		opts.Engine = v
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v)
		}
		opts.PNGScale = scale
	}
	if q.Has("pinned") {
		opts.Pinned = queryBool(r, "pinned")
	}
	if q.Has("labels") {
		opts.Labels = queryBool(r, "labels")
	}
	opts.Refresh = queryBool(r, "refresh")

	// Validate a copy so the runner's logger is still applied later.
	check := opts
	if err := check.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

// readBody reads the request body, answering 413 or 400 itself on failure.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	src, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput),
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), "read body: "+err.Error())
		return nil, false
	}
	if len(src) == 0 {
		writeError(w, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), "empty request body")
		return nil, false
	}
	return src, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	route := r.URL.Path
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		route = rctx.RoutePattern()
	}
	observability.HTTP().OnError(r.Context(), r.Method, route, err)
	s.logger.Error("request failed", "route", route, "err", err)
	writeError(w, http.StatusInternalServerError, string(errors.ErrCodeInternal), "internal error")
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}
