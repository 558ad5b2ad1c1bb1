package api

import (
	"errors"
	"fmt"
	"net/http"

	"pharmacy-storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// prepareCheckout returns the cart about to be ordered, or the stock problems
func (h *Handler) prepareCheckout(c *gin.Context) {
	view, err := h.svc.Checkout.Prepare(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err, h.path("/cart"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": newCartView(view)})
}

func (h *Handler) placeOrder(c *gin.Context) {
	var req service.CheckoutInput
	if !bindJSON(c, &req) {
		return
	}

	placed, err := h.svc.Checkout.PlaceOrder(c.Request.Context(), actor(c), req)
	if err != nil {
		redirect := h.path("/cart")
		var validation *service.ValidationError
		if errors.As(err, &validation) {
			redirect = ""
		}
		h.respondError(c, err, redirect)
		return
	}

	location := h.path(fmt.Sprintf("/orders/%d/confirmation", placed.Order.ID))
	c.Header("Location", location)
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Order placed successfully!",
		"order":    newOrderView(&placed.Order),
		"items":    newOrderItemViews(placed.Items),
		"redirect": location,
	})
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.svc.Orders.ListForUser(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": newOrderViews(orders)})
}

// getOrder handles order tracking
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	detail, err := h.svc.Orders.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.respondError(c, err, h.path("/orders"))
		return
	}
	c.JSON(http.StatusOK, newOrderDetailView(detail))
}

func (h *Handler) orderConfirmation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	detail, err := h.svc.Orders.Confirmation(c.Request.Context(), actor(c), id)
	if err != nil {
		h.respondError(c, err, h.path("/orders"))
		return
	}
	c.JSON(http.StatusOK, newOrderDetailView(detail))
}
