package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/transfer-agent/api/v1"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetForms returns the pulled forms with filtering and pagination
// (GET /forms)
func (h *Handler) GetForms(c *gin.Context, params v1.GetFormsParams) {
	page := 1
	if params.Page != nil && *params.Page > 0 {
		page = *params.Page
	}
	pageSize := defaultPageSize
	if params.PageSize != nil && *params.PageSize > 0 {
		pageSize = *params.PageSize
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
	}

	var source string
	if params.Source != nil {
		source = *params.Source
	}

	forms, total, err := h.transferSrv.Forms(c.Request.Context(), source, uint64(pageSize), uint64((page-1)*pageSize))
	if err != nil {
		zap.S().Named("form_handler").Errorw("failed to list forms", "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to list forms"})
		return
	}

	pageCount := (total + pageSize - 1) / pageSize
	if pageCount == 0 {
		pageCount = 1
	}

	apiForms := make([]v1.Form, 0, len(forms))
	for _, f := range forms {
		apiForms = append(apiForms, v1.NewFormFromModel(f))
	}

	c.JSON(http.StatusOK, v1.FormListResponse{
		Forms:     apiForms,
		Total:     total,
		Page:      page,
		PageCount: pageCount,
	})
}
