package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xcontrol.dev/xcontrol/internal/imaging"
)

func writeTemplatePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := imaging.NewBGR(4, 4)
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	path := filepath.Join(dir, name)
	if err := img.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	writeTemplatePNG(t, dir, "ok_button.png")

	yamlPath := filepath.Join(dir, "templates.yaml")
	content := `templates:
  - name: ok_button
    path: ok_button.png
    threshold: 0.85
    frame:
      x: 10
      y: 20
      width: 100
      height: 50
  - name: close_button
    path: close_button.png
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	reg := NewRegistry(dir)
	if err := reg.LoadFromFile(yamlPath); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if reg.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", reg.Count())
	}

	tpl, ok := reg.Get("ok_button")
	if !ok {
		t.Fatal("ok_button not found")
	}
	if tpl.Threshold != 0.85 {
		t.Errorf("Threshold = %v, want 0.85", tpl.Threshold)
	}
	if tpl.Path != filepath.Join(dir, "ok_button.png") {
		t.Errorf("Path = %q", tpl.Path)
	}
	if tpl.Frame == nil || tpl.Frame.Corner.X != 10 || tpl.Frame.Corner.Y != 20 ||
		tpl.Frame.Width != 100 || tpl.Frame.Height != 50 {
		t.Errorf("Frame = %+v", tpl.Frame)
	}

	tpl, ok = reg.Get("close_button")
	if !ok {
		t.Fatal("close_button not found")
	}
	if tpl.Threshold != DefaultThreshold {
		t.Errorf("default Threshold = %v, want %v", tpl.Threshold, DefaultThreshold)
	}
	if tpl.Frame != nil {
		t.Errorf("Frame = %+v, want nil", tpl.Frame)
	}
}

func TestLoadFromFileRejectsIncomplete(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `templates:
  - path: a.png
`,
			wantErr: "name cannot be empty",
		},
		{
			name: "missing path",
			content: `templates:
  - name: a
`,
			wantErr: "path cannot be empty",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tc.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			err := NewRegistry(dir).LoadFromFile(path)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestGetOrDefault(t *testing.T) {
	reg := NewRegistry("assets").WithoutImageCache()

	tpl := reg.GetOrDefault("missing", 0.9)
	if tpl.Path != filepath.Join("assets", "missing.png") {
		t.Errorf("Path = %q", tpl.Path)
	}
	if tpl.Threshold != 0.9 {
		t.Errorf("Threshold = %v, want 0.9", tpl.Threshold)
	}

	if err := reg.Register(Template{Name: "known", Path: "known.png", Threshold: 0.5}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	tpl = reg.GetOrDefault("known", 0.9)
	if tpl.Threshold != 0.5 {
		t.Errorf("Threshold = %v, want the registered 0.5", tpl.Threshold)
	}
}

func TestRegisterFeedsImageCache(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplatePNG(t, dir, "button.png")

	reg := NewRegistry(dir)
	if err := reg.Register(Template{Name: "button", Path: path, Threshold: 0.9}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	img, tpl, err := reg.ImageCache().Get("button")
	if err != nil {
		t.Fatalf("cache Get: %v", err)
	}
	if img == nil || tpl.Threshold != 0.9 {
		t.Errorf("cache returned img=%v threshold=%v", img != nil, tpl.Threshold)
	}
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	reg := NewRegistry("").WithoutImageCache()
	if err := reg.Register(Template{Path: "a.png"}); err == nil {
		t.Error("expected error for unnamed template")
	}
}

func TestRemove(t *testing.T) {
	reg := NewRegistry("").WithoutImageCache()
	if err := reg.Register(Template{Name: "a", Path: "a.png"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if !reg.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if reg.Has("a") {
		t.Error("template still present after Remove")
	}
	if reg.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}
}

func TestImageCacheLoadsOnDemand(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplatePNG(t, dir, "target.png")

	cache := NewImageCache()
	if err := cache.Register(Template{Name: "target", Path: path, Threshold: 0.7}, false); err != nil {
		t.Fatalf("Register: %v", err)
	}

	img, tpl, err := cache.Get("target")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if img.Width != 4 || img.Height != 4 || img.Channels != 3 {
		t.Errorf("image = %dx%dx%d, want 4x4x3", img.Width, img.Height, img.Channels)
	}
	if tpl.Threshold != 0.7 {
		t.Errorf("Threshold = %v, want 0.7", tpl.Threshold)
	}

	if _, _, err := cache.Get("target"); err != nil {
		t.Fatalf("second Get: %v", err)
	}

	stats := cache.Stats()
	if stats.Misses != 1 || stats.Hits != 1 {
		t.Errorf("stats = %+v, want 1 miss then 1 hit", stats)
	}

	cache.Unload("target")
	if cache.Stats().Unloads != 1 {
		t.Errorf("Unloads = %d, want 1", cache.Stats().Unloads)
	}
}

func TestImageCachePreloadFailure(t *testing.T) {
	cache := NewImageCache()
	err := cache.Register(Template{Name: "ghost", Path: "/nonexistent/ghost.png"}, true)
	if err == nil {
		t.Fatal("expected preload error for missing file")
	}
	if cache.Stats().PreloadFail != 1 {
		t.Errorf("PreloadFail = %d, want 1", cache.Stats().PreloadFail)
	}
}

func TestGetUnknownTemplate(t *testing.T) {
	if _, _, err := NewImageCache().Get("nope"); err == nil {
		t.Error("expected error for unknown template")
	}
}
