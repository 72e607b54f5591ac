// auditlogs.go implements the read-only audit log endpoints.
package admin

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/auditlog"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/paging"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AuditLogService answers audit log queries
type AuditLogService interface {
	GetAuditLogs(ctx context.Context, q auditlog.Query) (*paging.Result[auditlog.Entry], error)
	GetAuditLogByID(ctx context.Context, id int64) (*auditlog.EntryWithPrevious, error)
	ExportAuditLogs(ctx context.Context, q auditlog.Query) (*auditlog.ExportResult, error)
}

// AuditLogHandlers handles /audit-logs
type AuditLogHandlers struct {
	svc AuditLogService
}

// NewAuditLogHandlers creates the audit log handlers
func NewAuditLogHandlers(svc AuditLogService) *AuditLogHandlers {
	return &AuditLogHandlers{svc: svc}
}

// auditQuery reads entityType, entityId, configurationId, page and pageSize
func auditQuery(c *gin.Context) (auditlog.Query, bool) {
	page, ok := pageRequest(c)
	if !ok {
		return auditlog.Query{}, false
	}
	q := auditlog.Query{Request: page}
	if v := c.Query("entityType"); v != "" {
		q.EntityType = &v
	}
	if v := c.Query("entityId"); v != "" {
		q.EntityID = &v
	}
	if v := c.Query("configurationId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(c, apperr.Validation("invalid configurationId %q", v))
			return auditlog.Query{}, false
		}
		q.ConfigurationID = &id
	}
	return q, true
}

// @Summary      List audit log entries
// @Description  Newest first. All given filters must match.
// @Tags         Audit
// @Security     Bearer
// @Produce      json
// @Param        entityType       query  string  false  "extension, bucket, configuration, settings, userGroup or user"
// @Param        entityId         query  string  false  "Entity ID"
// @Param        configurationId  query  int     false  "Configuration and its extensions"
// @Param        page             query  int     false  "Zero-based page"
// @Param        pageSize         query  int     false  "Items per page, max 100"
// @Success      200  {object}  map[string]interface{}  "items: []Entry, total: int"
// @Router       /api/v1/audit-logs [get]
func (h *AuditLogHandlers) ListAuditLogs(c *gin.Context) {
	q, ok := auditQuery(c)
	if !ok {
		return
	}
	result, err := h.svc.GetAuditLogs(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAuditLog returns one entry with the snapshot before it
// GET /api/v1/audit-logs/:id
func (h *AuditLogHandlers) GetAuditLog(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	entry, err := h.svc.GetAuditLogByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ExportAuditLogs downloads the matching entries as an xlsx workbook
// GET /api/v1/audit-logs/export
func (h *AuditLogHandlers) ExportAuditLogs(c *gin.Context) {
	q, ok := auditQuery(c)
	if !ok {
		return
	}
	result, err := h.svc.ExportAuditLogs(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.FileName))
	c.Data(http.StatusOK, xlsxContentType, result.FileContent)
}
