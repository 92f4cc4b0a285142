package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/babanuki/assets"
	"github.com/robalobadob/babanuki/internal/db"
	"github.com/robalobadob/babanuki/internal/export"
	"github.com/robalobadob/babanuki/internal/httpserver"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the shared remote store endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.Open(ctx.cfg.ServerDBPath)
			if err != nil {
				return fmt.Errorf("open %s: %w", ctx.cfg.ServerDBPath, err)
			}
			defer conn.Close()
			if err := db.Migrate(conn, assets.Migrations()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			srv := httpserver.New(db.NewSnapshotStore(conn), ctx.cfg.ClientOrigin)
			log.Info().Str("port", ctx.cfg.Port).Str("db", ctx.cfg.ServerDBPath).Msg("starting store endpoint")
			return srv.Start(":" + ctx.cfg.Port)
		},
	}
}

func newSeatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seats",
		Short: "Show seat assignments from the local snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openLocal(ctx.cfg)
			if err != nil {
				return err
			}
			defer sess.Close()
			fmt.Fprintln(cmd.OutOrStdout(), renderSeats(sess.tracker.Snapshot()))
			return nil
		},
	}
}

func newPullCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Replace the local snapshot with the remote one",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openLocal(ctx.cfg)
			if err != nil {
				return err
			}
			defer sess.Close()
			c, cancel := commandTimeout(cmd.Context(), 2*ctx.cfg.HTTPTimeout)
			defer cancel()
			if err := sess.sync.Pull(c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "data synced")
			return nil
		},
	}
}

func newPushCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload the local snapshot to the remote store",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openLocal(ctx.cfg)
			if err != nil {
				return err
			}
			defer sess.Close()
			c, cancel := commandTimeout(cmd.Context(), 2*ctx.cfg.HTTPTimeout)
			defer cancel()
			if err := sess.sync.Push(c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "data saved")
			return nil
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the local snapshot as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openLocal(ctx.cfg)
			if err != nil {
				return err
			}
			defer sess.Close()
			if dir == "" {
				dir = ctx.cfg.ExportDir
			}
			path, err := export.WriteFile(dir, sess.tracker.Snapshot(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Output directory (default EXPORT_DIR)")
	return cmd
}

// commandTimeout bounds one-shot network commands when cobra has no context.
func commandTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, d)
}
