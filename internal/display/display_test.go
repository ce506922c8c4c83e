package display

import (
	"strings"
	"testing"
	"time"

	"xcontrol.dev/xcontrol/internal/logging"
)

func testDisplay(t *testing.T) *Display {
	t.Helper()
	d, err := New(":7", 1024, 768, DefaultPaths(), logging.New("display-test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		w, h    int
		wantErr bool
	}{
		{name: "Valid", id: ":1", w: 800, h: 600, wantErr: false},
		{name: "Missing colon", id: "1", w: 800, h: 600, wantErr: true},
		{name: "Zero width", id: ":1", w: 0, h: 600, wantErr: true},
		{name: "Negative height", id: ":1", w: 800, h: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.id, tt.w, tt.h, DefaultPaths(), nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%q, %d, %d) error = %v, wantErr %v", tt.id, tt.w, tt.h, err, tt.wantErr)
			}
		})
	}
}

func TestWindowTitle(t *testing.T) {
	d := testDisplay(t)
	if d.Title != "Xephyr-Window-:7" {
		t.Errorf("Title = %q", d.Title)
	}
}

func TestMergeEnvReplacesAndAppends(t *testing.T) {
	base := []string{"DISPLAY=:0", "HOME=/home/u", "PATH=/bin"}
	merged := mergeEnv(base, map[string]string{"DISPLAY": ":7", "LC_ALL": "C"})

	joined := strings.Join(merged, "\n")
	if strings.Contains(joined, "DISPLAY=:0") {
		t.Error("old DISPLAY value survived the merge")
	}
	if !strings.Contains(joined, "DISPLAY=:7") {
		t.Error("new DISPLAY value missing")
	}
	if !strings.Contains(joined, "HOME=/home/u") || !strings.Contains(joined, "LC_ALL=C") {
		t.Errorf("merged env incomplete: %v", merged)
	}
}

func TestXephyrArgs(t *testing.T) {
	d := testDisplay(t)
	args := strings.Join(d.xephyrArgs(), " ")

	for _, want := range []string{"-ac", "-noreset", "-title Xephyr-Window-:7", "-screen 1024x768", ":7"} {
		if !strings.Contains(args, want) {
			t.Errorf("xephyr args missing %q: %s", want, args)
		}
	}
	if !strings.HasSuffix(args, ":7") {
		t.Errorf("display id must be the final argument: %s", args)
	}
}

func TestScreenshotFilename(t *testing.T) {
	stamp := time.Date(2026, 8, 30, 14, 9, 3, 123456000, time.UTC)
	got := screenshotFilename(stamp)
	if got != "screenshot_14-09-03-123456.png" {
		t.Errorf("filename = %q", got)
	}
}

func TestBGRFromZPixmap(t *testing.T) {
	// One BGRX pixel: blue=1 green=2 red=3, padding ignored.
	img, err := bgrFromZPixmap([]byte{1, 2, 3, 0}, 1, 1)
	if err != nil {
		t.Fatalf("bgrFromZPixmap: %v", err)
	}
	if img.Pix[0] != 1 || img.Pix[1] != 2 || img.Pix[2] != 3 {
		t.Errorf("pixel = %v, want BGR [1 2 3]", img.Pix[:3])
	}
}

func TestBGRFromZPixmapShortData(t *testing.T) {
	if _, err := bgrFromZPixmap([]byte{1, 2}, 2, 2); err == nil {
		t.Error("expected error for truncated pixmap data")
	}
}

func TestRunNonexistentCommandReturnsEmpty(t *testing.T) {
	d := testDisplay(t)
	out := d.Run(true, "xcontrol-no-such-binary")
	if out != "" {
		t.Errorf("output = %q, want empty for failed command", out)
	}
}

func TestRunCapturesStdout(t *testing.T) {
	d := testDisplay(t)
	out := d.Run(true, "echo", "hello")
	if strings.TrimSpace(out) != "hello" {
		t.Errorf("output = %q, want hello", out)
	}
}
