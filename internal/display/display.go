// Package display owns the nested X server lifecycle and command
// execution against it. Applications under test run inside a Xephyr
// display with its own DISPLAY value; all input injection and capture is
// scoped to that display.
package display

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"xcontrol.dev/xcontrol/internal/logging"
)

// commandWaitTimeout bounds blocking command execution.
const commandWaitTimeout = 5 * time.Second

// Paths locates the external binaries the controller shells out to.
type Paths struct {
	Xephyr  string
	Xdotool string
	WM      string // window manager started inside the nested display
	VGLRun  string // wrapper for launched applications
}

// DefaultPaths resolves every binary through $PATH.
func DefaultPaths() Paths {
	return Paths{Xephyr: "Xephyr", Xdotool: "xdotool", WM: "spectrwm", VGLRun: "vglrun"}
}

// Display controls one nested X server.
type Display struct {
	ID     string
	Width  int
	Height int
	Title  string

	// Strict escalates failed external commands from debug to error
	// logs. Failures still do not surface as errors to callers; these
	// tools are routinely used fire-and-forget.
	Strict bool

	paths       Paths
	mainDisplay string
	env         []string
	logger      *logging.Logger
}

// New creates a controller for the nested display with the given
// identifier (":1" style) and screen size.
func New(id string, width, height int, paths Paths, logger *logging.Logger) (*Display, error) {
	if !strings.HasPrefix(id, ":") {
		return nil, fmt.Errorf("display id must start with ':', got %q", id)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("display size must be positive, got %dx%d", width, height)
	}
	if logger == nil {
		logger = logging.New("display")
	}

	main := os.Getenv("DISPLAY")
	if main == "" {
		main = ":0"
	}

	return &Display{
		ID:          id,
		Width:       width,
		Height:      height,
		Title:       fmt.Sprintf("Xephyr-Window-%s", id),
		paths:       paths,
		mainDisplay: main,
		env:         mergeEnv(os.Environ(), map[string]string{"DISPLAY": id}),
		logger:      logger,
	}, nil
}

// mergeEnv overlays vars onto a base environment, replacing existing keys.
func mergeEnv(base []string, vars map[string]string) []string {
	out := make([]string, 0, len(base)+len(vars))
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		if _, replaced := vars[name]; replaced {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range vars {
		out = append(out, k+"="+v)
	}
	return out
}

// Launch restarts the nested X server and starts the application inside
// it. Extra environment variables are overlaid on the display
// environment; a DISPLAY entry in extraEnv is ignored so the application
// cannot escape the nested display. With waitFor set, Launch blocks until
// the command exits, which suits commands that merely spawn the real
// application.
func (d *Display) Launch(startCmd []string, extraEnv map[string]string, waitFor bool) error {
	if len(startCmd) == 0 {
		return fmt.Errorf("launch command is empty")
	}

	d.stopXephyr()
	if err := d.startXephyr(); err != nil {
		return err
	}

	env := d.env
	if len(extraEnv) > 0 {
		overlay := make(map[string]string, len(extraEnv))
		for k, v := range extraEnv {
			if k == "DISPLAY" {
				continue
			}
			overlay[k] = v
		}
		env = mergeEnv(env, overlay)
	}

	args := append([]string{"+wm", "-d", d.mainDisplay}, startCmd...)
	cmd := exec.Command(d.paths.VGLRun, args...)
	cmd.Env = env
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch application: %w", err)
	}

	if waitFor {
		return cmd.Wait()
	}
	return nil
}

// Close terminates the nested X server and everything running inside it.
func (d *Display) Close() {
	d.stopXephyr()
}

// ActivateWindow focuses the Xephyr window so injected input lands in it.
func (d *Display) ActivateWindow() {
	d.Run(true, d.paths.Xdotool, "search", "--name", d.Title, "windowactivate")
}

// Run executes an external command in the nested display's environment.
// With waitFor set it blocks up to five seconds and returns captured
// stdout; otherwise it starts the command and returns immediately with
// empty output. Non-zero exits and wait timeouts are logged and swallowed
// rather than raised.
func (d *Display) Run(waitFor bool, name string, args ...string) string {
	d.logger.DebugWithContext("run command", map[string]interface{}{
		"cmd": name + " " + strings.Join(args, " "),
	})

	if !waitFor {
		cmd := exec.Command(name, args...)
		cmd.Env = d.env
		if err := cmd.Start(); err != nil {
			d.logFailure(name, err, "")
		}
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandWaitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = d.env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		d.logFailure(name, ctx.Err(), "")
		return ""
	}
	if err != nil {
		detail := stderr.String()
		if detail == "" {
			detail = stdout.String()
		}
		d.logFailure(name, err, detail)
	}
	return stdout.String()
}

func (d *Display) logFailure(name string, err error, detail string) {
	context := map[string]interface{}{"cmd": name, "detail": detail}
	if d.Strict {
		d.logger.Error(fmt.Sprintf("command %s failed: %v", name, err), err)
		return
	}
	d.logger.DebugWithContext(fmt.Sprintf("command failed: %v; continuing", err), context)
}

func (d *Display) startXephyr() error {
	cmd := exec.Command(d.paths.Xephyr, d.xephyrArgs()...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start Xephyr: %w", err)
	}

	// Xephyr needs a moment before accepting clients.
	time.Sleep(time.Second)
	d.Run(false, d.paths.WM)
	return nil
}

func (d *Display) xephyrArgs() []string {
	return []string{
		"-ac", "-br", "-noreset", "-softCursor", "-zaphod", "-no-host-grab",
		"-title", d.Title,
		"-screen", fmt.Sprintf("%dx%d", d.Width, d.Height),
		d.ID,
	}
}

func (d *Display) stopXephyr() {
	d.Run(true, "pkill", "-f", fmt.Sprintf("^Xephyr.*%s$", d.ID))
}
