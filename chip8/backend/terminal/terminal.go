// Package terminal implements the Backend interface using tcell, rendering
// the 64x32 display with half-block glyphs so two pixel rows share one
// terminal cell.
package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/terminal/render"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	gameWidth  = video.FramebufferWidth
	gameHeight = video.FramebufferHeight / 2 // two pixel rows per cell

	minTermWidth  = 66
	minTermHeight = 22

	// keyTimeout is how long a key counts as held after its last repeat
	// event; terminals report no key-up, so releases are inferred.
	keyTimeout = 100 * time.Millisecond
)

// Backend implements the Backend interface using tcell.
type Backend struct {
	screen    tcell.Screen
	running   bool
	config    backend.BackendConfig
	logBuffer *render.LogBuffer

	eventQueue []backend.InputEvent

	keyStates  map[action.Action]time.Time // last time each key was seen
	activeKeys map[action.Action]bool      // keys active in previous tick

	quitCh chan struct{}
}

// New creates a new terminal backend.
func New() *Backend {
	return &Backend{}
}

// Init initializes the terminal screen and installs the in-TUI log handler.
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.eventQueue = make([]backend.InputEvent, 0)
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)
	t.quitCh = make(chan struct{}, 1)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}

	t.screen = screen
	t.running = true

	// The screen belongs to tcell now; route logs into the TUI.
	t.logBuffer = render.NewLogBuffer(100)
	handler := render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)
	slog.SetDefault(slog.New(handler))
	slog.Info("Terminal backend initialized")

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	go t.handleSignals()

	return nil
}

// Update polls terminal events, synthesizes key releases and renders the
// frame.
func (t *Backend) Update(frame *video.FrameBuffer, redraw bool) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	now := time.Now()

	select {
	case <-t.quitCh:
		t.running = false
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	default:
	}

	for t.screen.HasPendingEvent() {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	// Track which keypad keys are currently active and infer releases.
	currentlyActive := make(map[action.Action]bool)
	for act, lastSeen := range t.keyStates {
		if now.Sub(lastSeen) < keyTimeout {
			currentlyActive[act] = true
			if !t.activeKeys[act] {
				events = append(events, backend.InputEvent{Action: act, Type: event.Press})
			} else {
				events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
			}
		} else {
			delete(t.keyStates, act)
		}
	}
	for act := range t.activeKeys {
		if !currentlyActive[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive

	events = append(events, t.eventQueue...)
	t.eventQueue = t.eventQueue[:0]

	if !t.running {
		return events, nil
	}

	t.render(frame)
	t.screen.Show()

	return events, nil
}

// Cleanup restores the terminal.
func (t *Backend) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

func (t *Backend) handleSignals() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	<-signals
	t.quitCh <- struct{}{}
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	var keyName string
	switch ev.Key() {
	case tcell.KeyRune:
		r := ev.Rune()
		if r == ' ' {
			keyName = "Space"
		} else {
			keyName = string(r)
		}
	case tcell.KeyEscape:
		keyName = "Escape"
	case tcell.KeyF5:
		keyName = "F5"
	case tcell.KeyF12:
		keyName = "F12"
	case tcell.KeyCtrlC:
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
		return
	default:
		return
	}

	act, ok := input.GetDefaultMapping(keyName)
	if !ok {
		return
	}

	if _, isKeypad := action.KeypadIndex(act); isKeypad {
		t.keyStates[act] = now
		return
	}

	if act == action.EmulatorQuit {
		t.running = false
	}
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	if termWidth < minTermWidth || termHeight < minTermHeight {
		t.screen.Clear()
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		drawText(t.screen, 0, termHeight/2, msg, style)
		return
	}

	t.screen.Clear()

	t.drawTitle(termWidth)
	t.drawGame(frame)
	t.drawStatus(gameHeight + 1)
	t.drawLogs(gameHeight+2, termWidth, termHeight)
	t.drawHelp(termWidth, termHeight)
}

func (t *Backend) drawTitle(termWidth int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	title := fmt.Sprintf(" %s ", t.config.Title)
	drawText(t.screen, 1, 0, title, style)
}

func (t *Backend) drawGame(frame *video.FrameBuffer) {
	onStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)

	for y := 0; y < gameHeight; y++ {
		for x := 0; x < gameWidth; x++ {
			top := frame.GetPixel(uint(x), uint(y*2))
			bottom := frame.GetPixel(uint(x), uint(y*2+1))

			var ch rune
			switch {
			case top && bottom:
				ch = '█'
			case top:
				ch = '▀'
			case bottom:
				ch = '▄'
			default:
				ch = ' '
			}

			t.screen.SetContent(x, y+1, ch, nil, onStyle)
		}
	}
}

func (t *Backend) drawStatus(y int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)

	state := "running"
	if t.config.StateName != nil {
		state = t.config.StateName()
	}
	tone := " "
	if t.config.Tone != nil && t.config.Tone() {
		tone = "♪"
	}

	drawText(t.screen, 0, y, fmt.Sprintf(" %-9s  tone: %s", state, tone), style)
}

func (t *Backend) drawLogs(startY, termWidth, termHeight int) {
	available := termHeight - startY - 1
	if available <= 0 {
		return
	}

	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	errStyle := tcell.StyleDefault.Foreground(tcell.ColorRed)

	logs := t.logBuffer.GetRecent(available)
	for i, entry := range logs {
		style := infoStyle
		switch entry.Level {
		case slog.LevelWarn:
			style = warnStyle
		case slog.LevelError:
			style = errStyle
		}

		text := render.FormatLogEntry(entry)
		if len(text) > termWidth {
			text = text[:termWidth]
		}
		drawText(t.screen, 0, startY+i, text, style)
	}
}

func (t *Backend) drawHelp(termWidth, termHeight int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	help := " Keys: 1234/qwer/asdf/zxcv  SPACE=pause F5=reset F12=snapshot ESC=quit "
	if len(help) > termWidth {
		help = help[:termWidth]
	}
	drawText(t.screen, 0, termHeight-1, help, style)
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, ch := range text {
		screen.SetContent(x+i, y, ch, nil, style)
	}
}
