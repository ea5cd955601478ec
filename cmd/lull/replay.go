package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/lull/internal/action"
	"github.com/pders01/lull/internal/debuglog"
	"github.com/pders01/lull/internal/tui"
)

var replayWait time.Duration

// replayEvent is one scripted input at an offset from the start.
type replayEvent struct {
	at    time.Duration
	input string
}

var replayCmd = &cobra.Command{
	Use:   "replay [file]",
	Short: "Feed scripted input to the controller and print every status change",
	Long: `replay reads lines of the form "<offset> <input>" from file, or stdin when
file is omitted or "-". The offset is a duration ("500ms", "1.5s") or plain
milliseconds, measured from the start. A line with only an offset submits empty
input. Blank lines and lines starting with # are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		defer debuglog.Close()

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		events, err := parseReplay(in)
		if err != nil {
			return err
		}

		s, err := openSession(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		wait := replayWait
		if wait <= 0 {
			wait = cfg.Action.Debounce + cfg.Random.Delay + cfg.Action.ResetDelay + 500*time.Millisecond
		}
		return runReplay(cmd.Context(), s.ctrl, events, wait, cmd.OutOrStdout())
	},
}

func init() {
	replayCmd.Flags().DurationVar(&replayWait, "wait", 0, "How long to keep watching after the last input (default: long enough to settle)")
}

func parseReplay(r io.Reader) ([]replayEvent, error) {
	var events []replayEvent
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		offset, input, _ := strings.Cut(line, " ")
		at, err := parseOffset(offset)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if len(events) > 0 && at < events[len(events)-1].at {
			return nil, fmt.Errorf("line %d: offset %s is before the previous one", lineNo, at)
		}
		events = append(events, replayEvent{at: at, input: input})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading replay: %w", err)
	}
	return events, nil
}

func parseOffset(s string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative offset %q", s)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative offset %q", s)
	}
	return d, nil
}

// runReplay submits events on schedule and prints status changes until wait
// has passed after the last one.
func runReplay(ctx context.Context, ctrl *action.Controller, events []replayEvent, wait time.Duration, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := ctrl.Subscribe(ctx)
	start := time.Now()

	var mu sync.Mutex
	printf := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "%7.3fs  "+format+"\n", append([]any{time.Since(start).Seconds()}, args...)...)
	}

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for ev := range updates {
			st := ev.Payload
			if st.Mode == action.ModeDone {
				printf("%s", tui.MsgSettled(st.Input, st))
				continue
			}
			printf("%s", tui.Label(st))
		}
	}()

	err := func() error {
		for _, ev := range events {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Until(start.Add(ev.at))):
			}
			printf("> %q", ev.input)
			ctrl.Submit(ev.input)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		return nil
	}()

	cancel()
	<-printed
	return err
}
