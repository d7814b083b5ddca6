package report

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"lblreport/internal/analytics"
	"lblreport/internal/shared/testutil"
	"lblreport/pkg/contracts/domain"
)

var (
	reportDate  = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	generatedAt = time.Date(2024, 6, 2, 11, 0, 0, 0, time.UTC)
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func classifiedEvent(cat domain.Category, name, playID string, dist float64) domain.ClassifiedEvent {
	return domain.ClassifiedEvent{
		StatcastEvent: domain.StatcastEvent{
			GameDate:     reportDate,
			GamePK:       745001,
			Batter:       596142,
			BatterName:   name,
			Event:        "home_run",
			Description:  "hit_into_play",
			LaunchSpeed:  f64(104.26),
			LaunchAngle:  f64(29.04),
			HitDistance:  f64(dist),
			HitLocation:  intp(7),
			InningTopBot: domain.HalfInningTop,
			PlayID:       playID,
		},
		Category:  cat,
		Field:     "LF",
		WobaValue: 2.05,
	}
}

func sampleInput() Input {
	return Input{
		Date:        reportDate,
		GeneratedAt: generatedAt,
		Classification: domain.Classification{
			ActionItems:  []domain.ClassifiedEvent{classifiedEvent(domain.CategoryActionItem, "Aaron Judge", "abc-123", 401)},
			FrontRowJoes: []domain.ClassifiedEvent{classifiedEvent(domain.CategoryFrontRowJoe, "Gary Sánchez", "", 344)},
		},
		Definitions: analytics.DefaultRules().Definitions(),
		Weights:     &domain.WobaWeights{Season: 2024},
	}
}

func uncompressed(t *testing.T) (*Renderer, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	r := NewRenderer(logger)
	r.compress = false
	return r, handler
}

func render(t *testing.T, r *Renderer, in Input) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, in))
	return buf.Bytes()
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer(slog.New(slog.NewTextHandler(io.Discard, nil)))

	first := render(t, r, sampleInput())
	second := render(t, r, sampleInput())

	assert.True(t, bytes.HasPrefix(first, []byte("%PDF-")))
	assert.Equal(t, first, second)
}

func TestRenderContent(t *testing.T) {
	r, _ := uncompressed(t)
	out := string(render(t, r, sampleInput()))

	assert.Contains(t, out, "(Daily Longball Labs Report) Tj")
	assert.Contains(t, out, "(From 2024-06-01) Tj")
	assert.Contains(t, out, "(Definitions) Tj")
	assert.Contains(t, out, "(Action Items \\(non-clients\\)) Tj")
	assert.Contains(t, out, "(FRJs \\(clients\\)) Tj")
	assert.Contains(t, out, "(104.3) Tj")
	assert.Contains(t, out, "(29.0) Tj")
	assert.Contains(t, out, "sporty-videos?playId=abc-123")
	assert.Contains(t, out, "(Link) Tj")
	assert.NotContains(t, out, EmptyNotice)
}

func TestRenderEmptyState(t *testing.T) {
	r, _ := uncompressed(t)
	in := sampleInput()
	in.Classification = domain.Classification{
		ActionItems:  []domain.ClassifiedEvent{},
		FrontRowJoes: []domain.ClassifiedEvent{},
	}

	out := string(render(t, r, in))
	assert.Equal(t, 2, strings.Count(out, "("+EmptyNotice+") Tj"))
	assert.NotContains(t, out, "(Batter ID) Tj")
}

func TestRenderRepeatsHeaderOnPageBreak(t *testing.T) {
	r, _ := uncompressed(t)
	in := sampleInput()
	in.Classification.ActionItems = nil
	for i := 0; i < 60; i++ {
		in.Classification.ActionItems = append(in.Classification.ActionItems,
			classifiedEvent(domain.CategoryActionItem, fmt.Sprintf("Batter %02d", i), fmt.Sprintf("p-%02d", i), 400-float64(i)))
	}

	out := string(render(t, r, in))
	assert.Equal(t, 3, strings.Count(out, "(Batter ID) Tj"))
	assert.Contains(t, out, "Page 3 of 3")
}

func TestRenderTruncatesLongNames(t *testing.T) {
	r, _ := uncompressed(t)
	in := sampleInput()
	in.Classification.ActionItems[0].BatterName = strings.Repeat("Longname ", 10)

	out := string(render(t, r, in))
	assert.Contains(t, out, "...) Tj")
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 128, 0, 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadLogo(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "logo.png")
	writePNG(t, pngPath, 600, 300)

	logo, err := LoadLogo(pngPath)
	require.NoError(t, err)
	assert.Equal(t, 2.0, logo.Aspect)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(logo.PNG))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 300, cfg.Width)
	assert.Equal(t, 150, cfg.Height)

	bmpPath := filepath.Join(dir, "logo.bmp")
	f, err := os.Create(bmpPath)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, image.NewRGBA(image.Rect(0, 0, 40, 80))))
	require.NoError(t, f.Close())

	logo, err = LoadLogo(bmpPath)
	require.NoError(t, err)
	assert.Equal(t, 0.5, logo.Aspect)

	_, err = LoadLogo(filepath.Join(dir, "missing.png"))
	assert.True(t, os.IsNotExist(err))

	junk := filepath.Join(dir, "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0644))
	_, err = LoadLogo(junk)
	assert.Error(t, err)
}

func TestRenderWithLogo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	writePNG(t, path, 64, 64)
	logo, err := LoadLogo(path)
	require.NoError(t, err)

	r, handler := uncompressed(t)
	in := sampleInput()
	in.Logo = logo

	out := string(render(t, r, in))
	assert.Contains(t, out, "/Subtype /Image")
	testutil.AssertNoErrors(t, handler)
}

func TestRenderWithBrokenLogoDegrades(t *testing.T) {
	r, handler := uncompressed(t)
	in := sampleInput()
	in.Logo = &Logo{PNG: []byte("garbage"), Aspect: 1}

	out := string(render(t, r, in))
	assert.NotContains(t, out, "/Subtype /Image")
	assert.Contains(t, out, "(Daily Longball Labs Report) Tj")
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Logo could not be embedded")
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path := filepath.Join(dir, domain.ReportFileName)
	r := NewRenderer(slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(path, []byte("yesterday"), 0644))

	rep, err := r.WriteFile(path, sampleInput())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := sha256.Sum256(data)

	assert.Equal(t, path, rep.Path)
	assert.Equal(t, reportDate, rep.Date)
	assert.Equal(t, int64(len(data)), rep.SizeBytes)
	assert.Equal(t, hex.EncodeToString(sum[:]), rep.SHA256)
	assert.Equal(t, 2, rep.Events)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	again, err := r.WriteFile(path, sampleInput())
	require.NoError(t, err)
	assert.Equal(t, rep.SHA256, again.SHA256)
}
