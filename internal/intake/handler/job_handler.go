package handler

import (
	"encoding/json"
	"net/http"

	"github.com/DanishBukhari/IntegWithGhl/internal/intake/model"
	"github.com/DanishBukhari/IntegWithGhl/internal/intake/provider"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/errors"
	"github.com/DanishBukhari/IntegWithGhl/internal/system/utils"
)

type JobHandler struct{}

func NewJobHandler() *JobHandler {
	return &JobHandler{}
}

// CreateJob handles POST /jobs
func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {

	var request model.JobRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		clientError := errors.NewClientError(errors.ErrorMessage{
			Code:        errors.CreateJobBadRequest.Code,
			Message:     errors.CreateJobBadRequest.Message,
			Description: utils.HandleDecodeError(err, "job"),
		}, http.StatusBadRequest)
		utils.HandleError(w, clientError)
		return
	}

	service := provider.NewJobIntakeProvider().GetJobIntakeService()
	response, err := service.CreateJob(r.Context(), request)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, response)
}
