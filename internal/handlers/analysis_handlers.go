package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	api_models "recruitassist-backend/internal/models"
	"recruitassist-backend/internal/services"
	"recruitassist-backend/pkg/httputil"
)

// AnalysisService defines the interface expected from the analysis service.
type AnalysisService interface {
	AnalyzeApplication(ctx context.Context, applicationID int64) (*api_models.ApplicationAnalysis, error)
	GetAnalysis(ctx context.Context, applicationID int64) (*api_models.ApplicationAnalysis, error)
}

type AnalysisHandler struct {
	analysisService AnalysisService
}

func NewAnalysisHandler(svc AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: svc,
	}
}

// HandleAnalyzeApplication handles POST /api/applications/{applicationID}/analyze.
// It runs the AI assessment synchronously and returns the stored result.
func (h *AnalysisHandler) HandleAnalyzeApplication(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "applicationID")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	analysis, err := h.analysisService.AnalyzeApplication(r.Context(), id)
	if err != nil {
		log.Printf("AnalyzeApplication handler failed for application %d: %v", id, err)
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			httputil.RespondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrAnalysisUnavailable):
			httputil.RespondError(w, http.StatusServiceUnavailable, err.Error())
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to analyze application")
		}
		return
	}
	httputil.RespondJSON(w, http.StatusOK, toAnalysisResponse(analysis))
}

// HandleGetAnalysis handles GET /api/applications/{applicationID}/analysis.
func (h *AnalysisHandler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "applicationID")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	analysis, err := h.analysisService.GetAnalysis(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrAnalysisNotFound) {
			httputil.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("GetAnalysis handler failed for application %d: %v", id, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to retrieve analysis")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, toAnalysisResponse(analysis))
}

func toAnalysisResponse(a *api_models.ApplicationAnalysis) api_models.ApplicationAnalysisResponse {
	strengths := a.KeyStrengths
	if strengths == nil {
		strengths = []string{}
	}
	return api_models.ApplicationAnalysisResponse{
		ApplicationID: a.ApplicationID,
		MatchScore:    a.MatchScore,
		Analysis:      a.Analysis,
		KeyStrengths:  strengths,
		UpdatedAt:     a.UpdatedAt,
	}
}
