package routine

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xcontrol.dev/xcontrol/internal/database"
	"xcontrol.dev/xcontrol/internal/geometry"
	"xcontrol.dev/xcontrol/internal/imaging"
	"xcontrol.dev/xcontrol/internal/ocr"
	"xcontrol.dev/xcontrol/internal/screen"
	"xcontrol.dev/xcontrol/pkg/templates"
)

type fakeController struct {
	calls       []string
	clickErr    error
	waitErr     error
	confidences []float64
	images      []*imaging.Image
}

func (f *fakeController) Launch(startCmd []string, env map[string]string, waitFor bool) error {
	f.calls = append(f.calls, "launch "+strings.Join(startCmd, " "))
	return nil
}

func (f *fakeController) MouseMove(point geometry.Point) error {
	f.calls = append(f.calls, "move "+point.String())
	return nil
}

func (f *fakeController) MouseClick(point geometry.Point, button screen.Click) error {
	f.calls = append(f.calls, "click "+point.String())
	return f.clickErr
}

func (f *fakeController) MouseDrag(start, end geometry.Point, button screen.Click) error {
	f.calls = append(f.calls, "drag "+start.String()+" "+end.String())
	return nil
}

func (f *fakeController) Key(key string) {
	f.calls = append(f.calls, "key "+key)
}

func (f *fakeController) Type(text string, clear bool) {
	f.calls = append(f.calls, "type "+text)
}

func (f *fakeController) Screenshot(frame *geometry.Frame, saveDir string) (*imaging.Image, error) {
	f.calls = append(f.calls, "screenshot")
	return imaging.NewBGR(1, 1), nil
}

func (f *fakeController) WaitForTemplate(template *imaging.Image, name string, frame *geometry.Frame, confidence float64) (geometry.Point, error) {
	f.calls = append(f.calls, "wait_for_template "+name)
	f.confidences = append(f.confidences, confidence)
	f.images = append(f.images, template)
	if f.waitErr != nil {
		return geometry.Point{}, f.waitErr
	}
	point, _ := geometry.NewPoint(5, 6)
	return point, nil
}

func (f *fakeController) WaitForTemplateGone(template *imaging.Image, name string, frame *geometry.Frame, confidence float64) error {
	f.calls = append(f.calls, "wait_for_template_gone "+name)
	f.confidences = append(f.confidences, confidence)
	f.images = append(f.images, template)
	return nil
}

func (f *fakeController) ExtractText(frame *geometry.Frame, spec ocr.Spec, opts *ocr.ExtractOptions) (string, error) {
	f.calls = append(f.calls, "extract_text")
	return "1234", nil
}

func (f *fakeController) RunCommand(cmd string, waitFor bool) string {
	f.calls = append(f.calls, "run_command "+cmd)
	return "output"
}

type recordedStep struct {
	index  int
	name   string
	status string
	detail string
}

type fakeHistory struct {
	started   int
	completed int
	failed    int
	failMsg   string
	steps     []recordedStep
}

func (h *fakeHistory) StartSession(displayID, routineName string) (string, error) {
	h.started++
	return "session-1", nil
}

func (h *fakeHistory) CompleteSession(sessionID string) error {
	h.completed++
	return nil
}

func (h *fakeHistory) FailSession(sessionID, errorMessage string) error {
	h.failed++
	h.failMsg = errorMessage
	return nil
}

func (h *fakeHistory) RecordStep(sessionID string, stepIndex int, stepType, status, detail string, startedAt time.Time, duration time.Duration) (int64, error) {
	h.steps = append(h.steps, recordedStep{stepIndex, stepType, status, detail})
	return int64(len(h.steps)), nil
}

func builderFor(t *testing.T, defs ...StepDefinition) *Builder {
	return builderWith(t, nil, defs...)
}

func builderWith(t *testing.T, registry *templates.Registry, defs ...StepDefinition) *Builder {
	t.Helper()
	b := NewBuilder().WithTemplates(registry)
	for _, def := range defs {
		if err := def.Validate(b); err != nil {
			t.Fatalf("Validate: %v", err)
		}
	}
	for _, def := range defs {
		b = def.Build(b)
	}
	return b
}

func writeTemplatePNG(t *testing.T, name string) string {
	t.Helper()
	img := imaging.NewBGR(4, 4)
	for i := range img.Pix {
		img.Pix[i] = 180
	}
	path := filepath.Join(t.TempDir(), name)
	if err := img.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	return path
}

func TestBuilderExecuteOrder(t *testing.T) {
	b := builderFor(t,
		&Move{X: 1, Y: 2},
		&Key{Key: "Return"},
		&RunCommand{Command: "xrandr"},
	)

	ctrl := &fakeController{}
	if err := b.Execute(ctrl); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{"move Point(1, 2)", "key Return", "run_command xrandr"}
	if len(ctrl.calls) != len(want) {
		t.Fatalf("calls = %v", ctrl.calls)
	}
	for i, call := range want {
		if ctrl.calls[i] != call {
			t.Errorf("call %d = %q, want %q", i, ctrl.calls[i], call)
		}
	}
}

func TestBuilderExecuteStopsOnError(t *testing.T) {
	b := builderFor(t,
		&ClickStep{X: 3, Y: 4},
		&Key{Key: "Return"},
	)

	ctrl := &fakeController{clickErr: errors.New("no pointer")}
	err := b.Execute(ctrl)
	if err == nil || !strings.Contains(err.Error(), "step 1 (click)") {
		t.Fatalf("error = %v", err)
	}
	if len(ctrl.calls) != 1 {
		t.Errorf("calls after failure = %v", ctrl.calls)
	}
}

func TestExecutorRecordsSession(t *testing.T) {
	path := writeTemplatePNG(t, "ok.png")
	b := builderFor(t,
		&WaitForImage{Template: path},
		&ExtractText{Spec: map[string]interface{}{
			"psm":        "NUMBER",
			"lowerBound": []interface{}{240, 240, 240},
			"upperBound": []interface{}{255, 255, 255},
		}},
	)

	history := &fakeHistory{}
	ctrl := &fakeController{}
	executor := NewExecutor().WithHistory(history)

	if err := executor.Execute(ctrl, ":1", "login_flow", b); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if history.started != 1 || history.completed != 1 || history.failed != 0 {
		t.Errorf("history = %+v", history)
	}
	if len(history.steps) != 2 {
		t.Fatalf("recorded steps = %+v", history.steps)
	}
	if history.steps[0].name != "wait_for_image" || history.steps[0].status != database.StatusCompleted {
		t.Errorf("step 0 = %+v", history.steps[0])
	}
	if history.steps[0].detail != "Point(5, 6)" {
		t.Errorf("step 0 detail = %q", history.steps[0].detail)
	}
	if history.steps[1].detail != "1234" {
		t.Errorf("step 1 detail = %q", history.steps[1].detail)
	}
}

func TestExecutorRecordsFailure(t *testing.T) {
	path := writeTemplatePNG(t, "gone.png")
	b := builderFor(t,
		&WaitForImage{Template: path},
		&Key{Key: "Return"},
	)

	history := &fakeHistory{}
	ctrl := &fakeController{waitErr: errors.New("image gone.png not found")}
	executor := NewExecutor().WithHistory(history)

	err := executor.Execute(ctrl, ":1", "login_flow", b)
	if err == nil || !strings.Contains(err.Error(), "step 1 (wait_for_image)") {
		t.Fatalf("error = %v", err)
	}

	if history.failed != 1 || history.completed != 0 {
		t.Errorf("history = %+v", history)
	}
	if !strings.Contains(history.failMsg, "gone.png") {
		t.Errorf("failMsg = %q", history.failMsg)
	}
	if len(history.steps) != 1 || history.steps[0].status != database.StatusFailed {
		t.Errorf("recorded steps = %+v", history.steps)
	}
}

func TestExecutorWithoutHistory(t *testing.T) {
	b := builderFor(t, &Key{Key: "Return"})
	if err := NewExecutor().Execute(&fakeController{}, ":1", "bare", b); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestSearchUsesRegisteredThreshold(t *testing.T) {
	path := writeTemplatePNG(t, "accept.png")
	registry := templates.NewRegistry("").WithoutImageCache()
	if err := registry.Register(templates.Template{Name: "accept", Path: path, Threshold: 0.95}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	b := builderWith(t, registry,
		&WaitForImage{Template: "accept"},
		&WaitForImageGone{Template: "accept"},
	)

	ctrl := &fakeController{}
	if err := b.Execute(ctrl); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(ctrl.confidences) != 2 {
		t.Fatalf("confidences = %v", ctrl.confidences)
	}
	for i, confidence := range ctrl.confidences {
		if confidence != 0.95 {
			t.Errorf("search %d confidence = %v, want the registered 0.95", i, confidence)
		}
	}
	for i, img := range ctrl.images {
		if img == nil {
			t.Errorf("search %d received no decoded template", i)
		}
	}
}

func TestSearchPathFallbackUsesDefaultConfidence(t *testing.T) {
	path := writeTemplatePNG(t, "raw.png")
	b := builderFor(t, &WaitForImage{Template: path})

	ctrl := &fakeController{}
	if err := b.Execute(ctrl); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(ctrl.confidences) != 1 || ctrl.confidences[0] != 0 {
		t.Errorf("confidences = %v, want a single zero (keep configured default)", ctrl.confidences)
	}
	if len(ctrl.images) != 1 || ctrl.images[0] == nil {
		t.Error("expected the template decoded from disk")
	}
}

func TestSearchServesCachedTemplateImage(t *testing.T) {
	path := writeTemplatePNG(t, "cached.png")
	registry := templates.NewRegistry("")
	if err := registry.Register(templates.Template{Name: "cached", Path: path, Threshold: 0.8}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	b := builderWith(t, registry, &WaitForImage{Template: "cached"})

	ctrl := &fakeController{}
	if err := b.Execute(ctrl); err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if err := b.Execute(ctrl); err != nil {
		t.Fatalf("second Execute: %v", err)
	}

	stats := registry.ImageCache().Stats()
	if stats.Misses != 1 || stats.Hits != 1 {
		t.Errorf("cache stats = %+v, want one load then one hit", stats)
	}
	if len(ctrl.images) != 2 || ctrl.images[0] == nil || ctrl.images[0] != ctrl.images[1] {
		t.Error("expected both searches to receive the same cached image")
	}
}

func TestSearchUnknownTemplatePathFails(t *testing.T) {
	b := builderFor(t, &WaitForImage{Template: filepath.Join(t.TempDir(), "ghost.png")})

	err := b.Execute(&fakeController{})
	if err == nil {
		t.Fatal("expected error for unreadable template")
	}
	var notFound *screen.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("error = %v, want NotFoundError", err)
	}
}
