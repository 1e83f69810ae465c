package handler

import (
	notifapp "github.com/vendra/backend/internal/application/notification"
	"github.com/vendra/backend/internal/domain/notification"
	"github.com/vendra/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// defaultListLimit caps list endpoints when no limit is given
const defaultListLimit = 200

// NotificationHandler handles notification API endpoints
type NotificationHandler struct {
	BaseHandler
	service *notifapp.Service
	stream  *NotificationStream
}

// NewNotificationHandler creates a new NotificationHandler. The stream
// is optional; without it the SSE endpoint is not registered.
func NewNotificationHandler(service *notifapp.Service, stream *NotificationStream) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		stream:  stream,
	}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.ListActive)
		notifications.GET("/archived", h.ListArchived)
		notifications.POST("", h.Create)
		notifications.PATCH("/:id/read", h.MarkRead)
		notifications.PATCH("/:id/unread", h.MarkUnread)
		notifications.DELETE("/:id", h.Delete)
		notifications.POST("/delete-by-message", h.DeleteByMessage)
		notifications.DELETE("", h.ClearAll)
		notifications.POST("/purge", h.PurgeArchived)
		if h.stream != nil {
			notifications.GET("/stream", h.stream.Serve)
		}
	}
}

// ListActive returns active notifications, newest first
func (h *NotificationHandler) ListActive(c *gin.Context) {
	records, err := h.service.ListActive(c.Request.Context(), defaultListLimit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewNotificationResponseList(records))
}

// ListArchived returns archived notifications, newest first
func (h *NotificationHandler) ListArchived(c *gin.Context) {
	records, err := h.service.ListArchived(c.Request.Context(), defaultListLimit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewNotificationResponseList(records))
}

// Create emits a notification manually. Keyed requests go through the
// dedup path; a suppressed duplicate returns 200 with no data.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	notifType := notification.Type(req.Type)
	if req.MessageKey != "" {
		record, created, err := h.service.Notify(c.Request.Context(), req.Message, notifType, req.MessageKey)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if !created {
			h.Success(c, nil)
			return
		}
		h.Created(c, dto.NewNotificationResponse(record))
		return
	}

	record, err := h.service.CreateManual(c.Request.Context(), req.Message, notifType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewNotificationResponse(record))
}

// MarkRead marks a notification as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// MarkUnread marks a notification as unread
func (h *NotificationHandler) MarkUnread(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return
	}
	if err := h.service.MarkUnread(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Delete archives a notification
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DeleteByMessage archives every active notification with the given text
func (h *NotificationHandler) DeleteByMessage(c *gin.Context) {
	var req dto.DeleteByMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	count, err := h.service.DeleteByMessage(c.Request.Context(), req.Message)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.CountResponse{Count: count})
}

// ClearAll archives every active notification
func (h *NotificationHandler) ClearAll(c *gin.Context) {
	count, err := h.service.ClearAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.CountResponse{Count: count})
}

// PurgeArchived permanently removes archived notifications
func (h *NotificationHandler) PurgeArchived(c *gin.Context) {
	count, err := h.service.PurgeArchived(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.CountResponse{Count: count})
}
