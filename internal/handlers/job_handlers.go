package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"recruitassist-backend/internal/auth"
	api_models "recruitassist-backend/internal/models"
	"recruitassist-backend/internal/services"
	"recruitassist-backend/pkg/httputil"
)

// JobService defines the interface expected from the job service.
type JobService interface {
	CreateJob(ctx context.Context, req api_models.CreateJobRequest) (*api_models.JobResponse, error)
	GetJob(ctx context.Context, id int64) (*api_models.JobResponse, error)
	ListJobs(ctx context.Context) ([]api_models.JobResponse, error)
	UpdateJob(ctx context.Context, id int64, req api_models.UpdateJobRequest) (*api_models.JobResponse, error)
	DeleteJob(ctx context.Context, id int64) error
}

type JobHandler struct {
	jobService JobService
}

func NewJobHandler(jobSvc JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// parseIDParam extracts a numeric {id}-style URL parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// HandleCreateJob handles POST /api/jobs/create.
func (h *JobHandler) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req api_models.CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	job, err := h.jobService.CreateJob(r.Context(), req)
	if err != nil {
		userID, _ := auth.GetUserIDFromContext(r.Context())
		log.Printf("CreateJob handler failed for user %s: %v", userID, err)
		switch {
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to create job")
		}
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, job)
}

// HandleGetJob handles GET /api/jobs/{jobID}.
func (h *JobHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "jobID")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := h.jobService.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			httputil.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("GetJob handler failed for job %d: %v", id, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to retrieve job")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, job)
}

// HandleListJobs handles GET /api/jobs.
func (h *JobHandler) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobService.ListJobs(r.Context())
	if err != nil {
		log.Printf("ListJobs handler failed: %v", err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, jobs)
}

// HandleUpdateJob handles PUT /api/jobs/{jobID}.
func (h *JobHandler) HandleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "jobID")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	var req api_models.UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	job, err := h.jobService.UpdateJob(r.Context(), id, req)
	if err != nil {
		log.Printf("UpdateJob handler failed for job %d: %v", id, err)
		switch {
		case errors.Is(err, services.ErrJobNotFound):
			httputil.RespondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrValidation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to update job")
		}
		return
	}
	httputil.RespondJSON(w, http.StatusOK, job)
}

// HandleDeleteJob handles DELETE /api/jobs/{jobID}.
func (h *JobHandler) HandleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "jobID")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	if err := h.jobService.DeleteJob(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			httputil.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("DeleteJob handler failed for job %d: %v", id, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to delete job")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"msg": "Job deleted"})
}
