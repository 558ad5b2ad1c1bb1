package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) home(c *gin.Context) {
	page, err := h.svc.Catalog.Home(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": page.Categories,
		"featured":   newMedicineViews(page.Featured),
	})
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.svc.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) listCategoryMedicines(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	h.renderMedicineListing(c, id)
}

// listMedicines serves the catalog, optionally filtered by ?category_id=
func (h *Handler) listMedicines(c *gin.Context) {
	var categoryID int64
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		categoryID = id
	}
	h.renderMedicineListing(c, categoryID)
}

func (h *Handler) renderMedicineListing(c *gin.Context, categoryID int64) {
	listing, err := h.svc.Catalog.ListMedicines(c.Request.Context(), categoryID)
	if err != nil {
		h.respondError(c, err, h.path("/medicines"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":   listing.Category,
		"categories": listing.Categories,
		"medicines":  newMedicineViews(listing.Medicines),
	})
}

func (h *Handler) getMedicine(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	detail, err := h.svc.Catalog.GetMedicine(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, h.path("/medicines"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"medicine": newMedicineView(detail.Medicine),
		"category": detail.Category,
		"related":  newMedicineViews(detail.Related),
	})
}

func (h *Handler) search(c *gin.Context) {
	q := c.Query("q")
	medicines, err := h.svc.Catalog.Search(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":     q,
		"medicines": newMedicineViews(medicines),
	})
}
