package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) viewCart(c *gin.Context) {
	view, err := h.svc.Cart.View(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": newCartView(view)})
}

// addToCart adds quantity (default 1) of a medicine to the cart
func (h *Handler) addToCart(c *gin.Context) {
	medicineID, ok := paramID(c, "medicine_id")
	if !ok {
		return
	}

	quantity := 1
	if c.Request.ContentLength > 0 {
		var req quantityRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
	}

	line, err := h.svc.Cart.Add(c.Request.Context(), actor(c), medicineID, quantity)
	if err != nil {
		h.respondError(c, err, h.path("/medicines/")+c.Param("medicine_id"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": line.Medicine.Name + " added to cart!",
		"line":    newCartLineView(line),
	})
}

// updateCartLine sets a line's quantity; zero or less removes it
func (h *Handler) updateCartLine(c *gin.Context) {
	lineID, ok := paramID(c, "item_id")
	if !ok {
		return
	}

	var req quantityRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity == nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  "Please correct the errors below.",
			"fields": gin.H{"quantity": "This field is required."},
		})
		return
	}

	line, err := h.svc.Cart.SetQuantity(c.Request.Context(), actor(c), lineID, *req.Quantity)
	if err != nil {
		h.respondError(c, err, h.path("/cart"))
		return
	}

	if line == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated.",
		"line":    newCartLineView(line),
	})
}

func (h *Handler) removeCartLine(c *gin.Context) {
	lineID, ok := paramID(c, "item_id")
	if !ok {
		return
	}

	if err := h.svc.Cart.Remove(c.Request.Context(), actor(c), lineID); err != nil {
		h.respondError(c, err, h.path("/cart"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart."})
}
