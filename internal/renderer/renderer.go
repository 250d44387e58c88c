package renderer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// Error describes a renderer subprocess failure with enough detail to
// debug the external tool: exit code or terminating signal plus the
// captured output streams.
type Error struct {
	ExitCode int
	Signal   string
	Stdout   string
	Stderr   string
}

func (e *Error) Error() string {
	if e.Signal != "" {
		return fmt.Sprintf("renderer killed by signal %s: %s", e.Signal, e.Stderr)
	}
	return fmt.Sprintf("renderer exited with code %d: %s", e.ExitCode, e.Stderr)
}

// Renderer drives the rrvideo executable that replays a recording in a
// headless browser and transcodes it to mp4.
type Renderer struct {
	binPath     string
	browserPath string
}

func New(binPath, browserPath string) *Renderer {
	if binPath == "" {
		binPath = "rrvideo"
	}
	if browserPath == "" {
		browserPath = "google-chrome-stable"
	}
	return &Renderer{binPath: binPath, browserPath: browserPath}
}

// Render invokes the renderer on a persisted recording and blocks until
// the video at outputPath is complete. The output artifact must not be
// read before Render returns nil. Transcoding can take a long while, so
// callers bound it through ctx.
func (r *Renderer) Render(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, r.binPath, "--input", inputPath, "--output", outputPath)
	// Headless chromium refuses to start sandboxed inside containers.
	cmd.Env = append(os.Environ(),
		"PUPPETEER_ARGS=--no-sandbox --disable-setuid-sandbox --disable-dev-shm-usage",
		"CHROME_ARGS=--no-sandbox --disable-setuid-sandbox",
		"PUPPETEER_EXECUTABLE_PATH="+r.browserPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rerr := &Error{
			ExitCode: -1,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			rerr.ExitCode = exitErr.ExitCode()
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				rerr.Signal = ws.Signal().String()
			}
		} else {
			rerr.Stderr = err.Error()
		}
		return rerr
	}
	return nil
}
