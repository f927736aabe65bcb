package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/kubev2v/transfer-agent/api/v1"
	srvErrors "github.com/kubev2v/transfer-agent/pkg/errors"
)

const defaultImportsLimit = 20

// CreateImport starts pulling the forms of a source directory
// (POST /imports)
func (h *Handler) CreateImport(c *gin.Context) {
	var req v1.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.Error{Error: "invalid request body: " + err.Error()})
		return
	}

	var formID string
	if req.FormId != nil {
		formID = *req.FormId
	}

	id, err := h.transferSrv.Import(c.Request.Context(), req.Source, formID)
	if err != nil {
		switch {
		case srvErrors.IsTransferInProgressError(err):
			c.JSON(http.StatusConflict, v1.Error{Error: err.Error()})
		case srvErrors.IsResourceNotFoundError(err):
			c.JSON(http.StatusNotFound, v1.Error{Error: err.Error()})
		default:
			zap.S().Named("import_handler").Errorw("failed to start import", "source", req.Source, "error", err)
			c.JSON(http.StatusBadRequest, v1.Error{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, v1.ImportResponse{Id: id})
}

// GetImports returns the most recent imports
// (GET /imports)
func (h *Handler) GetImports(c *gin.Context, params v1.GetImportsParams) {
	limit := defaultImportsLimit
	if params.Limit != nil && *params.Limit > 0 {
		limit = min(*params.Limit, maxPageSize)
	}

	transfers, err := h.transferSrv.List(c.Request.Context(), uint64(limit))
	if err != nil {
		zap.S().Named("import_handler").Errorw("failed to list imports", "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to list imports"})
		return
	}

	resp := v1.TransferListResponse{Transfers: make([]v1.Transfer, 0, len(transfers))}
	for _, t := range transfers {
		resp.Transfers = append(resp.Transfers, v1.NewTransferFromModel(t))
	}

	c.JSON(http.StatusOK, resp)
}

// GetImport returns the progress of an import
// (GET /imports/{id})
func (h *Handler) GetImport(c *gin.Context, id string) {
	t, err := h.transferSrv.Status(c.Request.Context(), id)
	if err != nil {
		if srvErrors.IsResourceNotFoundError(err) {
			c.JSON(http.StatusNotFound, v1.Error{Error: err.Error()})
			return
		}
		zap.S().Named("import_handler").Errorw("failed to get import", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, v1.Error{Error: "failed to get import"})
		return
	}

	c.JSON(http.StatusOK, v1.NewTransferFromModel(*t))
}

// DeleteImport requests the cancellation of a running import
// (DELETE /imports/{id})
func (h *Handler) DeleteImport(c *gin.Context, id string) {
	if err := h.transferSrv.Cancel(id); err != nil {
		if srvErrors.IsResourceNotFoundError(err) {
			c.JSON(http.StatusNotFound, v1.Error{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, v1.Error{Error: err.Error()})
		return
	}

	t, err := h.transferSrv.Status(c.Request.Context(), id)
	if err != nil {
		c.Status(http.StatusAccepted)
		return
	}

	c.JSON(http.StatusAccepted, v1.NewTransferFromModel(*t))
}
