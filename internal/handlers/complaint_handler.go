package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"complaintdesk/internal/apperrors"
	"complaintdesk/internal/models"
	"complaintdesk/internal/pdf"
	"complaintdesk/internal/services"
)

type ComplaintHandler struct {
	service services.ComplaintService
	reports *pdf.ReportGenerator
}

func NewComplaintHandler(service services.ComplaintService, reports *pdf.ReportGenerator) *ComplaintHandler {
	return &ComplaintHandler{service: service, reports: reports}
}

type createComplaintRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Categories  []string `json:"categories" binding:"required,min=1"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in_progress resolved rejected"`
}

// @Summary      File a complaint
// @Tags         Complaints
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      createComplaintRequest  true  "Complaint payload"
// @Success      201   {object}  models.Complaint
// @Failure      409   {object}  map[string]string
// @Router       /complaints [post]
func (h *ComplaintHandler) Create(c *gin.Context) {
	userID, _ := getUserAndRole(c)

	var req createComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaint := &models.Complaint{
		Title:       req.Title,
		Description: req.Description,
		Categories:  req.Categories,
	}
	if err := h.service.Add(c.Request.Context(), complaint, userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

// @Summary      List own complaints
// @Tags         Complaints
// @Security     BearerAuth
// @Produce      json
// @Param        page       query     int  false  "Page (1-based)"
// @Param        page_size  query     int  false  "Page size"
// @Success      200  {array}   models.Complaint
// @Failure      404  {object}  map[string]string
// @Router       /complaints [get]
func (h *ComplaintHandler) ListMine(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	page, pageSize := pageParams(c)

	complaints, err := h.service.ListByUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

// @Summary      Get own complaint
// @Tags         Complaints
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Complaint ID"
// @Success      200  {object}  models.Complaint
// @Failure      404  {object}  map[string]string
// @Router       /complaints/{id} [get]
func (h *ComplaintHandler) GetMine(c *gin.Context) {
	userID, _ := getUserAndRole(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	complaint, err := h.service.GetForUser(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

// ===== admin =====

// @Summary      List complaints (admin)
// @Tags         Admin
// @Security     BearerAuth
// @Produce      json
// @Param        status     query     string  false  "Status filter"
// @Param        user_id    query     int     false  "Author filter"
// @Param        page       query     int     false  "Page (1-based)"
// @Param        page_size  query     int     false  "Page size"
// @Success      200  {array}   models.Complaint
// @Failure      404  {object}  map[string]string
// @Router       /admin/complaints [get]
func (h *ComplaintHandler) AdminList(c *gin.Context) {
	status := c.Query("status")
	userID, _ := strconv.Atoi(c.DefaultQuery("user_id", "0"))
	page, pageSize := pageParams(c)

	complaints, err := h.service.List(c.Request.Context(), status, userID, page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

// @Summary      Get any complaint (admin)
// @Tags         Admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Complaint ID"
// @Success      200  {object}  models.Complaint
// @Failure      404  {object}  map[string]string
// @Router       /admin/complaints/{id} [get]
func (h *ComplaintHandler) AdminGet(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	complaint, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

// @Summary      Update complaint status (admin)
// @Tags         Admin
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      int                  true  "Complaint ID"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  models.Complaint
// @Failure      404   {object}  map[string]string
// @Router       /admin/complaints/{id}/status [put]
func (h *ComplaintHandler) AdminUpdateStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaint, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

// @Summary      Complaints summary report (admin)
// @Description  Renders the filtered complaint list as a PDF
// @Tags         Admin
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        status   query  string  false  "Status filter"
// @Param        user_id  query  int     false  "Author filter"
// @Success      200  {file}    file
// @Router       /admin/complaints/report [get]
func (h *ComplaintHandler) AdminReport(c *gin.Context) {
	status := c.Query("status")
	userID, _ := strconv.Atoi(c.DefaultQuery("user_id", "0"))

	complaints, err := h.service.List(c.Request.Context(), status, userID, 1, 1000)
	if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
		writeError(c, err)
		return
	}

	data, err := h.reports.ComplaintsSummary(complaints, time.Now())
	if err != nil {
		writeError(c, err)
		return
	}

	filename := fmt.Sprintf("complaints_%s.pdf", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
