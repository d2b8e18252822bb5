package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line while a pipeline stage runs. It only draws
// when its writer is a terminal, so piped output and tests stay clean.
type spinner struct {
	w       io.Writer
	animate bool
	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc

	mu    sync.Mutex
	msg   string
	drawn int // width of the last frame, for clearing

	once    sync.Once
	stopped chan struct{}
}

// newSpinner creates a spinner on stderr bound to ctx.
func newSpinner(ctx context.Context, msg string) *spinner {
	return newSpinnerTo(ctx, os.Stderr, msg)
}

func newSpinnerTo(ctx context.Context, w io.Writer, msg string) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &spinner{
		w:       w,
		animate: isTerminal(w),
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		msg:     msg,
		stopped: make(chan struct{}),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Start draws frames until Stop is called or the context ends.
func (s *spinner) Start() *spinner {
	go func() {
		defer close(s.stopped)
		if !s.animate {
			<-s.ctx.Done()
			return
		}
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
	return s
}

// SetMessage replaces the text shown next to the frame.
func (s *spinner) SetMessage(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := frame + " " + s.msg
	pad := max(s.drawn-len(line), 0)
	fmt.Fprintf(s.w, "\r%s %s%s", styleIconSpinner.Render(frame), StyleDim.Render(s.msg), strings.Repeat(" ", pad))
	s.drawn = len(line)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn+1))
		s.drawn = 0
	}
}

// Stop ends the animation and waits for the line to be cleared. It is safe
// to call more than once.
func (s *spinner) Stop() {
	s.once.Do(s.cancel)
	<-s.stopped
}

// Fail stops the spinner and prints msg as an error.
func (s *spinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}

// Interrupted reports whether the parent context has ended.
func (s *spinner) Interrupted() bool {
	return s.parent.Err() != nil
}
