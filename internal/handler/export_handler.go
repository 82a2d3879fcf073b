package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fieldpilot/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves spreadsheet downloads.
type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// JobsCSV handles GET /api/v1/exports/jobs.csv
// The file is built in memory so a failure can still be reported as JSON.
// @Summary Export jobs as CSV
// @Tags exports
// @Produce text/csv
// @Param status query string false "Status filter"
// @Param priority query string false "Priority filter"
// @Param client_id query string false "Client ID filter"
// @Success 200 {file} file "CSV file"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Security BearerAuth
// @Router /exports/jobs.csv [get]
func (h *ExportHandler) JobsCSV(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}
	filter, ok := jobFilterFromQuery(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.JobsCSV(c.Request.Context(), actor, filter, &buf); err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("jobs_%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// TimesheetXLSX handles GET /api/v1/exports/timesheet.xlsx?from=YYYY-MM-DD&to=YYYY-MM-DD
// @Summary Export a timesheet
// @Description Work sessions started between from and to (both inclusive) as an Excel workbook
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day (YYYY-MM-DD)"
// @Success 200 {file} file "XLSX file"
// @Failure 400 {object} ErrorResponseBody "Invalid range"
// @Failure 403 {object} ErrorResponseBody "Forbidden"
// @Security BearerAuth
// @Router /exports/timesheet.xlsx [get]
func (h *ExportHandler) TimesheetXLSX(c *gin.Context) {
	actor, ok := extractActor(c)
	if !ok {
		return
	}

	var input service.TimesheetInput
	if err := c.ShouldBindQuery(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.TimesheetXLSX(c.Request.Context(), actor, input, &buf); err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("timesheet_%s_%s.xlsx", input.From.Format("20060102"), input.To.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
