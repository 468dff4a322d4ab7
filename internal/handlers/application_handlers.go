package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	api_models "recruitassist-backend/internal/models"
	"recruitassist-backend/internal/services"
	"recruitassist-backend/pkg/httputil"
)

// ApplicationService defines the interface expected from the application service.
type ApplicationService interface {
	CreateApplication(ctx context.Context, req api_models.CreateApplicationRequest) (*api_models.Application, error)
	GetApplication(ctx context.Context, id int64) (*api_models.ApplicationResponse, error)
	ListApplications(ctx context.Context, jobID *int64) ([]api_models.ApplicationResponse, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type ApplicationHandler struct {
	appService ApplicationService
}

func NewApplicationHandler(appSvc ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		appService: appSvc,
	}
}

// HandleCreateApplication handles POST /api/applications/create. This is the
// public submission endpoint used by the careers page and by the agent.
func (h *ApplicationHandler) HandleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req api_models.CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	app, err := h.appService.CreateApplication(r.Context(), req)
	if err != nil {
		log.Printf("CreateApplication handler failed for job %d: %v", req.JobID, err)
		switch {
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrJobNotFound):
			httputil.RespondError(w, http.StatusNotFound, err.Error())
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to create application")
		}
		return
	}

	resp := api_models.CreateApplicationResponse{
		ApplicationID: app.ID,
		Message:       "Application submitted successfully",
	}
	httputil.RespondJSON(w, http.StatusCreated, resp)
}

// HandleGetApplication handles GET /api/applications/{applicationID}.
func (h *ApplicationHandler) HandleGetApplication(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "applicationID")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	app, err := h.appService.GetApplication(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			httputil.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("GetApplication handler failed for application %d: %v", id, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to retrieve application")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, app)
}

// HandleListApplications handles GET /api/applications, with an optional
// ?job_id= filter.
func (h *ApplicationHandler) HandleListApplications(w http.ResponseWriter, r *http.Request) {
	var jobID *int64
	if raw := r.URL.Query().Get("job_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid job_id filter")
			return
		}
		jobID = &id
	}

	apps, err := h.appService.ListApplications(r.Context(), jobID)
	if err != nil {
		log.Printf("ListApplications handler failed: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list applications")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, apps)
}

// HandleUpdateApplicationStatus handles PATCH /api/applications/{applicationID}/status.
func (h *ApplicationHandler) HandleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "applicationID")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	var req api_models.UpdateApplicationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	if err := h.appService.UpdateStatus(r.Context(), id, req.Status); err != nil {
		log.Printf("UpdateApplicationStatus handler failed for application %d: %v", id, err)
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			httputil.RespondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrInvalidStatus):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to update application status")
		}
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "Status updated"})
}
