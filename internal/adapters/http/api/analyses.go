package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/workpulse/internal/adapters/export"
	service "github.com/okian/workpulse/internal/app"
	"github.com/okian/workpulse/internal/domain/correlation"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/normalize"
	"github.com/okian/workpulse/internal/domain/report"
)

// Multipart field names of POST /analyses.
const (
	FieldActivity        = "activity"
	FieldSurvey          = "survey"
	FieldDelimiter       = "delimiter"
	FieldStandardBrowser = "standard_browser"
	FieldStandardPDFTool = "standard_pdf_tool"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AnalysesHandler serves the /analyses routes.
type AnalysesHandler struct {
	deps      Dependencies
	maxUpload int64
}

// NewAnalysesHandler creates a new analyses handler.
func NewAnalysesHandler(deps Dependencies) *AnalysesHandler {
	return &AnalysesHandler{deps: deps, maxUpload: DefaultMaxUploadBytes}
}

// analysisResponse is the status view of an analysis.
type analysisResponse struct {
	ID           string             `json:"id"`
	Status       model.Status       `json:"status"`
	Error        string             `json:"error,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	FinishedAt   *time.Time         `json:"finished_at,omitempty"`
	Standard     model.StandardApps `json:"standard_apps"`
	Diagnostics  model.Diagnostics  `json:"diagnostics"`
	Days         int                `json:"days"`
	Correlations int                `json:"correlations"`
}

func newAnalysisResponse(a *model.Analysis) analysisResponse {
	resp := analysisResponse{
		ID:           a.ID,
		Status:       a.Status,
		Error:        a.Error,
		CreatedAt:    a.CreatedAt,
		Standard:     a.Standard,
		Diagnostics:  a.Diagnostics,
		Days:         len(a.Days),
		Correlations: len(a.Correlations),
	}
	if !a.FinishedAt.IsZero() {
		finished := a.FinishedAt
		resp.FinishedAt = &finished
	}
	return resp
}

type appsResponse struct {
	TopApps    []model.AppRank    `json:"top_apps"`
	Standard   model.StandardApps `json:"standard_apps"`
	Columns    report.Columns     `json:"columns"`
	Vocabulary []string           `json:"vocabulary"`
}

type correlationsResponse struct {
	Target      string                    `json:"target,omitempty"`
	MinAbsR     float64                   `json:"min_abs_r,omitempty"`
	Rows        []model.CorrelationRow    `json:"rows,omitempty"`
	Significant []model.CorrelationResult `json:"significant,omitempty"`
}

// HandleSubmit handles POST /analyses requests.
func (h *AnalysesHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_analysis"

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", WrapKind(op, ErrTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	sub, err := readSubmission(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ack, err := h.deps.Submit(r.Context(), sub)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	status := http.StatusAccepted
	if ack.Duplicate {
		status = http.StatusOK
	}
	w.Header().Set("Location", "/analyses/"+ack.ID)
	writeJSON(w, status, ack)
}

func readSubmission(form *multipart.Form) (service.Submission, error) {
	var (
		sub service.Submission
		err error
	)
	if sub.Activity, err = readFile(form, FieldActivity); err != nil {
		return sub, err
	}
	if sub.Survey, err = readFile(form, FieldSurvey); err != nil {
		return sub, err
	}
	if d := formValue(form, FieldDelimiter); d != "" {
		if sub.Delimiter, err = normalize.ParseDelimiter(d); err != nil {
			return sub, err
		}
	}
	sub.Standard = model.StandardApps{
		Browser: formValue(form, FieldStandardBrowser),
		PDFTool: formValue(form, FieldStandardPDFTool),
	}
	return sub, nil
}

func readFile(form *multipart.Form, field string) ([]byte, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, fmt.Errorf("missing %s file", field)
	}
	f, err := files[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty %s file", field)
	}
	return data, nil
}

func formValue(form *multipart.Form, field string) string {
	if v := form.Value[field]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// HandleGet handles GET /analyses/{id} requests.
func (h *AnalysesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	a, ok := h.lookup(w, r, "api.get_analysis", false)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newAnalysisResponse(a))
}

// daysResponse is the numeric day table plus the full day records, which
// also carry the title metrics and the joined survey response.
type daysResponse struct {
	*model.Table
	Days []model.DailyRecord `json:"days"`
}

// HandleDays handles GET /analyses/{id}/days requests.
func (h *AnalysesHandler) HandleDays(w http.ResponseWriter, r *http.Request) {
	a, ok := h.lookup(w, r, "api.get_days", true)
	if !ok {
		return
	}
	days := a.Days
	if days == nil {
		days = []model.DailyRecord{}
	}
	writeJSON(w, http.StatusOK, daysResponse{Table: a.Table, Days: days})
}

// HandleCorrelations handles GET /analyses/{id}/correlations requests.
// With ?target= only significant results against that score are returned,
// filtered by ?min_abs_r= (default 0.2).
func (h *AnalysesHandler) HandleCorrelations(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_correlations"
	a, ok := h.lookup(w, r, op, true)
	if !ok {
		return
	}

	q := r.URL.Query()
	target := q.Get("target")
	if target == "" {
		writeJSON(w, http.StatusOK, correlationsResponse{Rows: a.Correlations})
		return
	}
	if !model.IsTarget(target) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("unknown target %q", target)))
		return
	}
	minAbsR := report.MinReportedR
	if s := q.Get("min_abs_r"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 1 {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("invalid min_abs_r %q", s)))
			return
		}
		minAbsR = v
	}
	writeJSON(w, http.StatusOK, correlationsResponse{
		Target:      target,
		MinAbsR:     minAbsR,
		Significant: correlation.Significant(a.Correlations, target, minAbsR),
	})
}

// HandleApps handles GET /analyses/{id}/apps requests.
func (h *AnalysesHandler) HandleApps(w http.ResponseWriter, r *http.Request) {
	a, ok := h.lookup(w, r, "api.get_apps", true)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, appsResponse{
		TopApps:    a.TopApps,
		Standard:   a.Standard,
		Columns:    report.Resolve(a.Standard),
		Vocabulary: a.Apps,
	})
}

// HandleHeatmap handles GET /analyses/{id}/heatmap requests.
func (h *AnalysesHandler) HandleHeatmap(w http.ResponseWriter, r *http.Request) {
	a, ok := h.lookup(w, r, "api.get_heatmap", true)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.BuildHeatmap(*a.Table, a.Standard))
}

// HandleExport handles GET /analyses/{id}/export.xlsx requests.
func (h *AnalysesHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	a, ok := h.lookup(w, r, "api.export_analysis", true)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, a); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="workpulse-%s.xlsx"`, a.ID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// lookup resolves the {id} path value. With finished set, analyses that are
// not done are answered with 409 carrying their status.
func (h *AnalysesHandler) lookup(w http.ResponseWriter, r *http.Request, op string, finished bool) (*model.Analysis, bool) {
	id := r.PathValue("id")
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return nil, false
	}
	a, err := h.deps.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return nil, false
	}
	if finished && (a.Status != model.StatusDone || a.Table == nil) {
		cause := fmt.Errorf("status %s", a.Status)
		if a.Error != "" {
			cause = fmt.Errorf("status %s: %s", a.Status, a.Error)
		}
		writeError(w, http.StatusConflict, "not_ready", WrapKind(op, ErrNotReady, cause))
		return nil, false
	}
	return a, true
}
