// Package cli is a local readline REPL over the chat pipeline.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"

	"github.com/sandevgo/pitchside/internal/config"
	"github.com/sandevgo/pitchside/internal/core"
	"github.com/sandevgo/pitchside/internal/service/chat"
	"github.com/sandevgo/pitchside/internal/service/persona"
	"github.com/sandevgo/pitchside/pkg/log"
)

const defaultSessionID = "cli-local"

var (
	responseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
)

type ReadLine struct {
	cfg       *config.AppConfig
	orch      *chat.Orchestrator
	personas  *persona.Registry
	rl        *readline.Instance
	personaID string
}

func NewReadLine(orch *chat.Orchestrator, personas *persona.Registry, cfg *config.AppConfig) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:       cfg,
		orch:      orch,
		personas:  personas,
		rl:        rl,
		personaID: cfg.DefaultPersona,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	logger.Info().Str("persona", r.personaID).Msg("CLI chat started. Type 'exit' to quit, '/persona <id>' to switch voice.")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/persona") {
			r.switchPersona(strings.TrimSpace(strings.TrimPrefix(line, "/persona")))
			continue
		}

		res, err := r.orch.Turn(ctx, defaultSessionID, r.personaID, line)
		if err != nil {
			var verr *core.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintln(r.rl.Stdout(), warnStyle.Render(verr.Reason))
				continue
			}
			logger.Error().Err(err).Msg("turn failed")
			fmt.Fprintln(r.rl.Stdout(), errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			continue
		}

		fmt.Fprintln(r.rl.Stdout(), responseStyle.Render(res.Response))
		for _, src := range res.Sources {
			fmt.Fprintln(r.rl.Stdout(), sourceStyle.Render(fmt.Sprintf("  [source] %s (%.2f)", src.Title, src.Score)))
		}
		if res.StateAfter != core.StateNormal {
			fmt.Fprintln(r.rl.Stdout(), warnStyle.Render(fmt.Sprintf("  [session state: %s]", res.StateAfter)))
		}
	}
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

func (r *ReadLine) switchPersona(id string) {
	if id == "" {
		fmt.Fprintf(r.rl.Stdout(), "Current persona: %s. Available:\n", r.personaID)
		for _, p := range r.personas.List() {
			fmt.Fprintf(r.rl.Stdout(), "  %s - %s\n", p.ID, p.Name)
		}
		return
	}
	if _, err := r.personas.Get(id); err != nil {
		fmt.Fprintln(r.rl.Stdout(), warnStyle.Render(fmt.Sprintf("Unknown persona %q.", id)))
		return
	}
	r.personaID = id
	fmt.Fprintf(r.rl.Stdout(), "Persona switched to %s.\n", id)
}
