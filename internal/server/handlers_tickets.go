package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sentiwatch/watchdog/internal/domain"
	apperrors "github.com/sentiwatch/watchdog/internal/errors"
	"github.com/sentiwatch/watchdog/internal/postgres"
)

// ticketRequest is the ingestion payload. Content, channel and source
// are required; the rest is optional ticket metadata.
type ticketRequest struct {
	ExternalID   string `json:"external_id"`
	Channel      string `json:"channel"`
	Source       string `json:"source"`
	CustomerID   string `json:"customer_id"`
	CustomerTier string `json:"customer_tier"`
	Priority     string `json:"priority"`
	Subject      string `json:"subject"`
	Content      string `json:"content"`
}

func (r ticketRequest) validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return apperrors.ValidationError("content is required")
	}
	if strings.TrimSpace(r.Channel) == "" {
		return apperrors.ValidationError("channel is required")
	}
	if strings.TrimSpace(r.Source) == "" {
		return apperrors.ValidationError("source is required")
	}
	if r.Priority != "" && !domain.ValidPriority(domain.Priority(r.Priority)) {
		return apperrors.ValidationError("unknown priority").WithContext("priority", r.Priority)
	}
	return nil
}

func (s *Server) handleSubmitTicket(c echo.Context) error {
	var req ticketRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	priority := domain.Priority(req.Priority)
	if req.Priority == "" {
		priority = domain.PriorityNormal
	}

	ticket := domain.Ticket{
		ID:           uuid.New(),
		ExternalID:   req.ExternalID,
		Channel:      req.Channel,
		Source:       req.Source,
		CustomerID:   req.CustomerID,
		CustomerTier: domain.CustomerTier(req.CustomerTier),
		Priority:     priority,
		Subject:      req.Subject,
		Content:      req.Content,
		ReceivedAt:   s.clock.Now(),
	}

	result, err := s.pipeline.Process(c.Request().Context(), ticket)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetTicket(c echo.Context) error {
	if s.results == nil {
		return apperrors.InternalError("result store not configured", nil)
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid ticket ID").WithContext("id", c.Param("id"))
	}

	result, err := s.results.GetByTicketID(c.Request().Context(), ticketID)
	if errors.Is(err, postgres.ErrResultNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "ticket not found")
	}
	if err != nil {
		return apperrors.InternalError("failed to load result", err).
			WithContext("ticket_id", ticketID.String())
	}

	return c.JSON(http.StatusOK, result)
}
