// README: Admin handlers for commission administration.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabcab/internal/http/middleware"
	"cabcab/internal/modules/commission"
	"cabcab/internal/types"
)

type AdminHandler struct {
	commission *commission.Service
}

func NewAdminHandler(svc *commission.Service) *AdminHandler {
	return &AdminHandler{commission: svc}
}

type setCommissionReq struct {
	Percentage      *float64 `json:"percentage"`
	PaymentMethodID string   `json:"payment_method_id"`
}

func (h *AdminHandler) SetCommission(c *gin.Context) {
	var req setCommissionReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Percentage == nil {
		writeError(c, http.StatusBadRequest, "percentage is required")
		return
	}
	caller := middleware.Caller(c)
	setting, err := h.commission.Set(c.Request.Context(), commission.SetCommand{
		AdminID:         caller.UserID,
		PaymentMethodID: types.ID(req.PaymentMethodID),
		Percentage:      *req.Percentage,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, setting)
}

func (h *AdminHandler) EnableCommission(c *gin.Context) {
	caller := middleware.Caller(c)
	setting, err := h.commission.Enable(c.Request.Context(), caller.UserID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, setting)
}

func (h *AdminHandler) DisableCommission(c *gin.Context) {
	caller := middleware.Caller(c)
	setting, err := h.commission.Disable(c.Request.Context(), caller.UserID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, setting)
}

func (h *AdminHandler) GetCommission(c *gin.Context) {
	caller := middleware.Caller(c)
	setting, stats, err := h.commission.Get(c.Request.Context(), caller.UserID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"setting": setting, "statistics": stats})
}
