package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the workspace's bounded snapshot history",
	}
	cmd.AddCommand(newHistoryListCmd(app))
	cmd.AddCommand(newHistorySaveCmd(app))
	cmd.AddCommand(newHistoryRestoreCmd(app))
	cmd.AddCommand(newHistoryDeleteCmd(app))
	return cmd
}

type historyRow struct {
	Index     int       `json:"index" yaml:"index"`
	ID        string    `json:"id" yaml:"id"`
	Label     string    `json:"label" yaml:"label"`
	Nodes     int       `json:"nodes" yaml:"nodes"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

func newHistoryListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved history slots, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Ensure(); err != nil {
				return writeErr(cmd, err)
			}
			l, err := s.OpenLocal(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()

			history, err := l.History(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			rows := make([]historyRow, 0, len(history))
			for i, snap := range history {
				rows = append(rows, historyRow{
					Index:     i,
					ID:        snap.ID,
					Label:     snap.Label,
					Nodes:     len(snap.Nodes),
					Timestamp: snap.Timestamp,
				})
			}
			return writeOut(cmd, app, map[string]any{"data": rows})
		},
	}
}

func newHistorySaveCmd(app *App) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Push the latest snapshot into a labeled history slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, snap, err := loadLatest(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()

			if label == "" {
				label = "manual save"
			}
			entry := *snap
			entry.Label = label
			entry.Timestamp = time.Now().UTC()
			if err := l.PushHistory(cmd.Context(), entry); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"label": label, "nodes": len(entry.Nodes)},
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "Slot label (default: \"manual save\")")
	return cmd
}

func newHistoryRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <index>",
		Short: "Restore a history slot as the latest snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Ensure(); err != nil {
				return writeErr(cmd, err)
			}
			l, err := s.OpenLocal(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()

			snap, err := l.RestoreFromHistory(cmd.Context(), index)
			if err != nil {
				return writeErr(cmd, err)
			}
			if snap == nil {
				history, herr := l.History(cmd.Context())
				if herr != nil {
					return writeErr(cmd, herr)
				}
				return writeErr(cmd, errBadSlot(index, len(history)))
			}
			restored := *snap
			restored.Timestamp = time.Now().UTC()
			if err := l.SaveLatest(cmd.Context(), restored); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"index": index, "label": snap.Label, "nodes": len(snap.Nodes)},
			})
		},
	}
}

func newHistoryDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete a history slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := resolveStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Ensure(); err != nil {
				return writeErr(cmd, err)
			}
			l, err := s.OpenLocal(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.Close()

			if err := l.DeleteHistorySlot(cmd.Context(), index); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"deleted": index},
			})
		},
	}
}
