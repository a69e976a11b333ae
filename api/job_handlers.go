package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-linkage-engine/model"
)

// jobCanceller is implemented by engines that can stop running jobs.
type jobCanceller interface {
	CancelJob(jobID string) error
}

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := api.engine.GetJob(jobID)
	if err != nil {
		SendLookupError(c, "get job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobsHandler lists jobs, filtered by the optional label and status query parameters
func (api *API) ListJobsHandler(c *gin.Context) {
	label := c.Query("label")
	statusParam := c.Query("status")

	if result := ValidateJobStatus(statusParam); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}
	var statusFilter *model.JobStatus
	if statusParam != "" {
		status := model.JobStatus(statusParam)
		statusFilter = &status
	}

	jobs := api.engine.ListJobs(label, statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"label": label,
		"total": len(jobs),
	})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"metrics": api.engine.GetMetrics()})
}

// CancelJobHandler asks a pending or running job to stop
func (api *API) CancelJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	canceller, ok := api.engine.(jobCanceller)
	if !ok {
		SendNotSupportedError(c, "Job cancellation")
		return
	}
	if _, err := api.engine.GetJob(jobID); err != nil {
		SendLookupError(c, "cancel job", err)
		return
	}
	if err := canceller.CancelJob(jobID); err != nil {
		SendError(c, http.StatusConflict, ErrorCodeJobNotActive, err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Cancellation requested for job '" + jobID + "'",
		"job_id":  jobID,
	})
}
