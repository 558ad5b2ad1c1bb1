package api

import (
	"net/http"

	"pharmacy-storefront/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listReminders(c *gin.Context) {
	page, err := h.svc.Reminders.List(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"today":     page.Today.Format(service.ReminderDateLayout),
		"reminders": newReminderViews(page.Active, page.Today),
		"upcoming":  newReminderViews(page.Upcoming, page.Today),
	})
}

func (h *Handler) addReminder(c *gin.Context) {
	var req service.ReminderInput
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.svc.Reminders.Add(c.Request.Context(), actor(c), req)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Reminder added successfully!",
		"reminder": newReminderView(r, h.svc.Reminders.Today()),
	})
}

func (h *Handler) updateReminder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req service.ReminderInput
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.svc.Reminders.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.respondError(c, err, h.path("/reminders"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Reminder updated successfully!",
		"reminder": newReminderView(r, h.svc.Reminders.Today()),
	})
}

func (h *Handler) deleteReminder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Reminders.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.respondError(c, err, h.path("/reminders"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully!"})
}
