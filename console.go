package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/robalobadob/babanuki/internal/export"
	"github.com/robalobadob/babanuki/internal/game"
	"github.com/robalobadob/babanuki/internal/remote"
	"github.com/robalobadob/babanuki/internal/store"
	"github.com/robalobadob/babanuki/internal/tracker"
)

const consoleHelp = `Type or pipe decoded tokens (table*, player*), or a command:
  :mode scan|ranking        switch mode
  :candidates               members of the selected ranking seat
  :rank [seat] p1 p2 ...    confirm a finish order (first place first)
  :rm <seat> <player>       remove a player from a seat
  :rmseat <seat>            remove a seat
  :undo                     undo up to 3 operations
  :push | :pull             save to / load from the remote store
  :seats                    show assignments
  :export                   write a CSV export
  :quit`

func newConsoleCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive scanner session with periodic sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openLocal(ctx.cfg)
			if err != nil {
				return err
			}
			defer sess.Close()

			runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			go sess.sync.Run(runCtx)

			c := newConsole(sess.tracker, sess.sync, cmd.OutOrStdout(), ctx.cfg.ExportDir)
			c.printf("%s\n", consoleHelp)
			c.loop(runCtx, cmd.InOrStdin())
			c.wait()
			return nil
		},
	}
}

// console turns input lines into tracker events.
type console struct {
	tr        *tracker.Tracker
	syncer    *remote.Coordinator
	exportDir string
	now       func() time.Time

	outMu sync.Mutex
	out   io.Writer
	bg    sync.WaitGroup
}

func newConsole(tr *tracker.Tracker, sc *remote.Coordinator, out io.Writer, exportDir string) *console {
	return &console{tr: tr, syncer: sc, out: out, exportDir: exportDir, now: time.Now}
}

func (c *console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// wait blocks until background pushes finish.
func (c *console) wait() { c.bg.Wait() }

func (c *console) loop(ctx context.Context, in io.Reader) {
	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			msg, quit := c.exec(ctx, line)
			if msg != "" {
				c.printf("%s\n", msg)
			}
			if quit {
				return
			}
		}
	}
}

// exec runs one input line and returns the message to show.
func (c *console) exec(ctx context.Context, line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	if !strings.HasPrefix(line, ":") {
		msg, err := c.tr.HandleScan(line)
		return report(msg, err), false
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return consoleHelp, false
	}
	args := fields[1:]
	switch fields[0] {
	case "help", "h":
		return consoleHelp, false
	case "quit", "q", "exit":
		return "", true
	case "mode":
		if len(args) != 1 || (args[0] != string(tracker.ModeScan) && args[0] != string(tracker.ModeRanking)) {
			return "usage: :mode scan|ranking", false
		}
		return c.tr.SetMode(tracker.Mode(args[0])), false
	case "candidates":
		players, err := c.tr.RankingCandidates()
		if err != nil {
			return report("", fmt.Errorf("no ranking seat selected: %w", err)), false
		}
		return strings.Join(players, " "), false
	case "rank":
		seatID := ""
		if len(args) > 0 && game.Classify(args[0]) == game.KindSeat {
			seatID, args = args[0], args[1:]
		}
		return report(c.tr.ConfirmRanking(seatID, args)), false
	case "rm":
		if len(args) != 2 {
			return "usage: :rm <seat> <player>", false
		}
		return report(c.tr.RemovePlayer(args[0], args[1])), false
	case "rmseat":
		if len(args) != 1 {
			return "usage: :rmseat <seat>", false
		}
		return report(c.tr.RemoveSeat(args[0])), false
	case "undo":
		return c.tr.Undo(), false
	case "push":
		c.push(ctx)
		return "saving...", false
	case "pull":
		if err := c.syncer.Pull(ctx); err != nil {
			return report("", err), false
		}
		return "data synced", false
	case "seats":
		return renderSeats(c.tr.Snapshot()), false
	case "export":
		path, err := export.WriteFile(c.exportDir, c.tr.Snapshot(), c.now())
		if err != nil {
			return report("", err), false
		}
		return "exported " + path, false
	default:
		return fmt.Sprintf("unknown command %q (:help)", fields[0]), false
	}
}

// push saves in the background so scanning can continue meanwhile.
func (c *console) push(ctx context.Context) {
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		if err := c.syncer.Push(ctx); err != nil {
			c.printf("%s\n", report("", err))
			return
		}
		c.printf("data saved\n")
	}()
}

// report turns an operation result into the line shown to the user.
func report(msg string, err error) string {
	switch {
	case err == nil:
		return msg
	case errors.Is(err, store.ErrNoActiveSeat):
		return "! scan a seat first"
	case errors.Is(err, store.ErrDuplicatePlayer):
		return "! already registered"
	case errors.Is(err, store.ErrSeatFull):
		return fmt.Sprintf("! a seat holds up to %d players", game.MaxSeatSize)
	case errors.Is(err, store.ErrInvalidReorder):
		return "! finish order must list every seat member exactly once"
	case errors.Is(err, remote.ErrPushInFlight):
		return "! a save is already in progress"
	case errors.Is(err, remote.ErrSyncFailure):
		return "! sync failed: " + err.Error()
	default:
		return "! " + err.Error()
	}
}
