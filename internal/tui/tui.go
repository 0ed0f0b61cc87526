package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"mindmap-cli/internal/config"
	"mindmap-cli/internal/store"
)

func Run(s store.Store, cfg config.Config) error {
	ctx := context.Background()
	if err := s.Ensure(); err != nil {
		return err
	}
	local, err := s.OpenLocal(ctx)
	if err != nil {
		return err
	}
	defer local.Close()

	m, err := newAppModel(ctx, local, cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	if cerr := m.saver.Close(ctx); err == nil {
		err = cerr
	}
	return err
}
