// Package httpapi exposes the chat pipeline over HTTP.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sandevgo/pitchside/internal/config"
	"github.com/sandevgo/pitchside/internal/core"
	"github.com/sandevgo/pitchside/internal/service/chat"
	"github.com/sandevgo/pitchside/internal/service/persona"
	"github.com/sandevgo/pitchside/pkg/log"
)

// ChatService is what the transport needs from the chat pipeline.
type ChatService interface {
	Turn(ctx context.Context, sessionID, personaID, query string) (*chat.TurnResult, error)
}

type Server struct {
	app      *fiber.App
	cfg      *config.HTTPConfig
	orch     ChatService
	personas *persona.Registry
	baseCtx  context.Context
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	PersonaID string `json:"persona"`
	Query     string `json:"query"`
}

type personaView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Voice string `json:"voice,omitempty"`
}

func NewServer(cfg *config.HTTPConfig, orch ChatService, personas *persona.Registry) *Server {
	app := fiber.New(fiber.Config{
		AppName:               core.AppName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
	})

	s := &Server{
		app:      app,
		cfg:      cfg,
		orch:     orch,
		personas: personas,
		baseCtx:  context.Background(),
	}

	// Carry the process context with its logger into handlers.
	app.Use(func(c *fiber.Ctx) error {
		c.SetUserContext(s.baseCtx)
		return c.Next()
	})

	v1 := app.Group("/v1")
	v1.Post("/chat", s.handleChat)
	v1.Get("/personas", s.handlePersonas)

	return s
}

func (s *Server) Start(ctx context.Context) error {
	s.baseCtx = ctx
	log.FromCtx(ctx).Info().Str("addr", s.cfg.ListenAddr).Msg("starting http api")
	return s.app.Listen(s.cfg.ListenAddr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}

	res, err := s.orch.Turn(c.UserContext(), req.SessionID, req.PersonaID, req.Query)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			return fiber.NewError(fiber.StatusBadRequest, verr.Reason)
		}
		log.FromCtx(c.UserContext()).Error().Err(err).Str("session", req.SessionID).Msg("turn failed")
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}

	return c.JSON(res)
}

func (s *Server) handlePersonas(c *fiber.Ctx) error {
	all := s.personas.List()
	out := make([]personaView, 0, len(all))
	for _, p := range all {
		out = append(out, personaView{ID: p.ID, Name: p.Name, Voice: p.Voice})
	}
	return c.JSON(out)
}
