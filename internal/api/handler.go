package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	"CupSentinel/internal/analyzer"
	"CupSentinel/internal/model"
	"CupSentinel/internal/pattern"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Detector runs detection for a company.
type Detector interface {
	Analyze(ctx context.Context, company string, includeChart bool) (*analyzer.Report, error)
}

// SymbolLister lists the tracked universe.
type SymbolLister interface {
	Symbols() []model.Symbol
}

// DetectPatternRequest is the body of POST /detect-pattern.
type DetectPatternRequest struct {
	Company     string `json:"company" validate:"required,max=64"`
	IncludePlot bool   `json:"include_plot" default:"false"`
}

// DetectPatternResponse is the data of a successful detection.
type DetectPatternResponse struct {
	Company         string          `json:"company"`
	PatternDetected bool            `json:"pattern_detected"`
	PlotBase64      string          `json:"plot_base64,omitempty"`
	Points          *pattern.Points `json:"points,omitempty"`
}

// Handler serves the detection API.
type Handler struct {
	detector Detector
	symbols  SymbolLister
	log      zerolog.Logger
}

// NewHandler creates a Handler.
func NewHandler(d Detector, symbols SymbolLister, log zerolog.Logger) *Handler {
	return &Handler{detector: d, symbols: symbols, log: log.With().Str("component", "api").Logger()}
}

// RegisterRoutes attaches the API routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/detect-pattern", h.DetectPattern)
	e.GET("/symbols", h.Symbols)
	e.GET("/healthz", h.Healthz)
}

// DetectPattern runs detection for the requested company.
func (h *Handler) DetectPattern(c echo.Context) error {
	var req DetectPatternRequest
	if errs := ReadAndValidateRequest(c, &req); errs != nil {
		return BadRequestResponse(c, errs)
	}

	rep, err := h.detector.Analyze(c.Request().Context(), req.Company, req.IncludePlot)
	switch {
	case errors.Is(err, analyzer.ErrUnknownCompany):
		return AppErrorResponse(c, BadRequestError("Unknown company name: "+req.Company, err))
	case errors.Is(err, pattern.ErrInvalidInput):
		return AppErrorResponse(c, UnprocessableError("Not enough price data for "+req.Company, err))
	case err != nil:
		h.log.Error().Err(err).Str("company", req.Company).Msg("detection failed")
		return InternalServerErrorResponse(c)
	}

	resp := DetectPatternResponse{
		Company:         rep.Company,
		PatternDetected: rep.Result.Detected,
	}
	if rep.Result.Detected {
		pts := rep.Result.Points
		resp.Points = &pts
	}
	if req.IncludePlot && len(rep.ChartPNG) > 0 {
		resp.PlotBase64 = base64.StdEncoding.EncodeToString(rep.ChartPNG)
	}
	return SuccessResponse(c, resp)
}

// Symbols lists the configured ticker/company pairs.
func (h *Handler) Symbols(c echo.Context) error {
	return SuccessResponse(c, h.symbols.Symbols())
}

// Healthz reports liveness.
func (h *Handler) Healthz(c echo.Context) error {
	return DataResponse(c, http.StatusOK, map[string]string{"status": "ok"})
}
