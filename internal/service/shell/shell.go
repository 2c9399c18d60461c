package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/eventbus"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/scheduler"
	"github.com/oshokin/alarm-clock/internal/service/client"
)

// DefaultPrompt is printed before every command.
const DefaultPrompt = "> "

// closeTimeout bounds the clock shutdown on exit.
const closeTimeout = 5 * time.Second

const banner = "Alarm Clock started. Type commands to interact with it.\n"

const help = `Action : command : Example

1. Display current time : time
2. Add an alarm : set HH:MM [day] : set 11:24 thursday
3. Delete an alarm by index : delete index : delete 1
4. Snooze latest alarm : snooze
5. List all alarms : list
6. Show this help : help
7. Exit : exit

`

// Options configures the shell.
type Options struct {
	// In is read line by line; stdin when nil.
	In io.Reader
	// Out receives prompts and responses; stdout when nil.
	Out io.Writer
	// Location is the wall clock of the alarms; time.Local when nil.
	Location *time.Location
	// Now overrides the clock used for "time" and weekday defaults.
	Now func() time.Time
	// Prompt replaces DefaultPrompt when not empty.
	Prompt string
	// Verbose lets info logs through; otherwise only warnings and errors are logged.
	Verbose bool
}

// shell serializes output between the command loop and the ringing printer.
type shell struct {
	clock  *clock.Clock
	prompt string

	mu  sync.Mutex
	out io.Writer
}

// Run starts an in-process clock and serves commands until "exit", end of
// input or ctx cancellation.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "shell")
	if !opts.Verbose {
		ctx = logger.ToContext(ctx, logger.FromContext(ctx).WithOptions(logger.WithLevel(zapcore.WarnLevel)))
	}

	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}

	if out == nil {
		out = os.Stdout
	}

	var (
		schedulerOptions []scheduler.Option
		clockOptions     []clock.Option
	)

	if opts.Location != nil {
		schedulerOptions = append(schedulerOptions, scheduler.WithLocation(opts.Location))
		clockOptions = append(clockOptions, clock.WithLocation(opts.Location))
	}

	if opts.Now != nil {
		clockOptions = append(clockOptions, clock.WithNow(opts.Now))
	}

	sh := &shell{
		clock:  clock.New(scheduler.New(ctx, schedulerOptions...), clockOptions...),
		prompt: opts.Prompt,
		out:    out,
	}

	if sh.prompt == "" {
		sh.prompt = DefaultPrompt
	}

	ringings := sh.clock.Subscribe(0)
	sh.clock.Start(ctx)

	printerDone := make(chan struct{})
	go sh.printRingings(ringings, printerDone)

	done := make(chan struct{})
	lines := readLines(ctx, in, done)

	sh.write(banner + help)
	sh.loop(ctx, lines)
	close(done)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	err := sh.clock.Close(closeCtx)

	<-printerDone
	sh.write("Exiting the Alarm Clock application.\n")

	if err != nil {
		return fmt.Errorf("stop clock: %w", err)
	}

	return nil
}

func (sh *shell) loop(ctx context.Context, lines <-chan string) {
	for {
		sh.write(sh.prompt)

		select {
		case <-ctx.Done():
			sh.write("\n")

			return
		case line, ok := <-lines:
			if !ok {
				sh.write("\n")

				return
			}

			if !sh.handle(ctx, line) {
				return
			}
		}
	}
}

// handle runs one command line and reports whether the shell should go on.
func (sh *shell) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "time":
		sh.render(func(w io.Writer) { client.RenderTime(w, sh.clock.Now()) })
	case "set":
		sh.set(ctx, args)
	case "delete":
		sh.delete(ctx, args)
	case "snooze":
		entry, err := sh.clock.SnoozeLatest(ctx)
		sh.renderResult(err, func(w io.Writer) { client.RenderSnoozed(w, entry) })
	case "list":
		entries := sh.clock.List(ctx)
		sh.render(func(w io.Writer) { client.RenderList(w, entries) })
	case "help":
		sh.write(help)
	case "exit", "quit":
		sh.write("Clock terminated...\n")

		return false
	default:
		sh.write(fmt.Sprintf("Unknown command: %s. Type 'help' for the list of commands.\n", fields[0]))
	}

	return true
}

func (sh *shell) set(ctx context.Context, args []string) {
	if len(args) < 1 || len(args) > 2 {
		sh.write("Usage: set HH:MM [day]\n")

		return
	}

	at, err := alarm.ParseTimeOfDay(args[0])
	if err != nil {
		sh.write("Invalid time format. Please use HH:MM format.\n")

		return
	}

	var entry clock.Entry

	if len(args) == 1 {
		entry, err = sh.clock.AddAlarmToday(ctx, at)
	} else {
		day, parseErr := alarm.ParseWeekday(args[1])
		if parseErr != nil {
			sh.write("Invalid day. Please enter a valid day of the week.\n")

			return
		}

		entry, err = sh.clock.AddAlarm(ctx, at, day)
	}

	sh.renderResult(err, func(w io.Writer) { client.RenderAdded(w, entry) })
}

func (sh *shell) delete(ctx context.Context, args []string) {
	if len(args) != 1 {
		sh.write("Usage: delete index\n")

		return
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		sh.write("Invalid index. Please enter a valid number.\n")

		return
	}

	entry, err := sh.clock.DeleteByIndex(ctx, index)
	sh.renderResult(err, func(w io.Writer) { client.RenderDeleted(w, entry) })
}

// printRingings prints every firing followed by a fresh prompt.
func (sh *shell) printRingings(sub *eventbus.Subscription[clock.Ringing], done chan<- struct{}) {
	defer close(done)

	for r := range sub.C() {
		sh.render(func(w io.Writer) {
			client.RenderRinging(w, r)
			_, _ = io.WriteString(w, sh.prompt)
		})
	}
}

func (sh *shell) renderResult(err error, ok func(io.Writer)) {
	if err != nil {
		sh.render(func(w io.Writer) { client.RenderError(w, err) })

		return
	}

	sh.render(ok)
}

func (sh *shell) render(fn func(io.Writer)) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	fn(sh.out)
}

func (sh *shell) write(s string) {
	sh.render(func(w io.Writer) { _, _ = io.WriteString(w, s) })
}

// readLines feeds input lines to the returned channel until end of input or
// until done is closed. The channel is closed when reading stops.
func readLines(ctx context.Context, in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}

		if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
			logger.WarnKV(ctx, "Reading input failed", "error", err)
		}
	}()

	return lines
}
