package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"pharmacy-storefront/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) dashboard(c *gin.Context) {
	d, err := h.svc.Backoffice.Dashboard(c.Request.Context(), staffCapability(c))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, newDashboardView(d))
}

func (h *Handler) adminListMedicines(c *gin.Context) {
	medicines, err := h.svc.Backoffice.ListMedicines(c.Request.Context(), staffCapability(c))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"medicines": newMedicineViews(medicines)})
}

func (h *Handler) adminGetMedicine(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	m, err := h.svc.Backoffice.GetMedicine(c.Request.Context(), staffCapability(c), id)
	if err != nil {
		h.respondError(c, err, h.path("/dashboard/medicines"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"medicine": newMedicineView(m)})
}

func (h *Handler) adminCreateMedicine(c *gin.Context) {
	var req service.MedicineInput
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.svc.Backoffice.CreateMedicine(c.Request.Context(), staffCapability(c), req)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Medicine added successfully!",
		"medicine": newMedicineView(m),
	})
}

func (h *Handler) adminUpdateMedicine(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req service.MedicineInput
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.svc.Backoffice.UpdateMedicine(c.Request.Context(), staffCapability(c), id, req)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Medicine updated successfully!",
		"medicine": newMedicineView(m),
	})
}

func (h *Handler) adminDeleteMedicine(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Backoffice.DeleteMedicine(c.Request.Context(), staffCapability(c), id); err != nil {
		h.respondError(c, err, h.path("/dashboard/medicines"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Medicine deleted successfully!"})
}

// adminExportMedicines streams the catalog as an Excel workbook
func (h *Handler) adminExportMedicines(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.Backoffice.ExportMedicines(c.Request.Context(), staffCapability(c), &buf); err != nil {
		h.respondError(c, err, h.path("/dashboard/medicines"))
		return
	}

	filename := fmt.Sprintf("medicines-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) adminListCategories(c *gin.Context) {
	categories, err := h.svc.Backoffice.ListCategories(c.Request.Context(), staffCapability(c))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) adminCreateCategory(c *gin.Context) {
	var req service.CategoryInput
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.svc.Backoffice.CreateCategory(c.Request.Context(), staffCapability(c), req)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Category added successfully!",
		"category": category,
	})
}

func (h *Handler) adminDeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Backoffice.DeleteCategory(c.Request.Context(), staffCapability(c), id); err != nil {
		h.respondError(c, err, h.path("/dashboard/categories"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully!"})
}

// adminListOrders lists every order, optionally filtered by ?status=
func (h *Handler) adminListOrders(c *gin.Context) {
	status := c.Query("status")
	orders, err := h.svc.Backoffice.ListOrders(c.Request.Context(), staffCapability(c), status)
	if err != nil {
		h.respondError(c, err, h.path("/dashboard/orders"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":        newOrderViews(orders),
		"status_filter": status,
	})
}

func (h *Handler) adminUpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Backoffice.UpdateOrderStatus(c.Request.Context(), staffCapability(c), id, req.Status)
	if err != nil {
		h.respondError(c, err, h.path("/dashboard/orders"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Order #%d status updated to %s.", order.ID, order.Status),
		"order":   newOrderView(order),
	})
}

func (h *Handler) adminListUsers(c *gin.Context) {
	users, err := h.svc.Backoffice.ListUsers(c.Request.Context(), staffCapability(c))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
