package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/ports"
)

// NotificationHandler exposes the notification list of the caller's session.
// Anonymous sessions get a local list that is never persisted.
type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List handles GET /v1/notifications. Authenticated sessions are reloaded
// from the record store first.
//
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  notificationListResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	items, err := h.service.Load(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.Notification{}
	}
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	return c.JSON(http.StatusOK, notificationListResponse{Data: items, Unread: unread})
}

// Create handles POST /v1/notifications.
//
// @Summary      Add a notification
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        body  body      createNotificationRequest  true  "Notification"
// @Success      201   {object}  domain.Notification
// @Failure      400   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/notifications [post]
func (h *NotificationHandler) Create(c echo.Context) error {
	var req createNotificationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	n, err := h.service.Add(c.Request().Context(), sess, ports.NotificationInput{
		Kind:      domain.NotificationKind(req.Kind),
		Title:     req.Title,
		Body:      req.Body,
		ActionURL: req.ActionURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

// MarkRead handles POST /v1/notifications/:id/read.
//
// @Summary      Mark a notification read
// @Tags         notifications
// @Param        id   path  string  true  "Notification ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(c.Request().Context(), sess, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Clear handles DELETE /v1/notifications.
//
// @Summary      Clear notifications
// @Tags         notifications
// @Success      204
// @Failure      503  {object}  errorResponse
// @Router       /v1/notifications [delete]
func (h *NotificationHandler) Clear(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.Clear(c.Request().Context(), sess); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UnreadCount handles GET /v1/notifications/unread-count.
//
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  unreadCountResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	unread, err := h.service.UnreadCount(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unreadCountResponse{Unread: unread})
}
