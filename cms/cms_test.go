package cms

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var _ = fmt.Print

const testConfig = `
name: test
roles:
  scene_linear: lin-srgb
colorspaces:
  - name: lin-srgb
    transfer: linear
    primaries: srgb
  - name: srgb
    transfer: srgb
    primaries: srgb
  - name: srgb-alias
    transfer: srgb
    primaries: srgb
  - name: gamma22
    transfer: gamma
    gamma: 2.2
    primaries: srgb
  - name: acescg
    transfer: linear
    primaries: acescg
displays:
  - name: Main
    default_view: Standard
    views:
      - name: Standard
        colorspace: srgb
      - name: Raw
        colorspace: lin-srgb
default_display: Main
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ocio")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	return path
}

func testCfg(t *testing.T) *Config {
	t.Helper()
	cfg := CreateFromFile(writeTestConfig(t))
	require.NotNil(t, cfg, "config: %v", LastError())
	return cfg
}

func TestCreateFromFile(t *testing.T) {
	cfg := testCfg(t)
	defer cfg.Destroy()
	require.NoError(t, LastError())
	require.Equal(t, 5, cfg.NumColorSpaces())

	t.Run("empty path", func(t *testing.T) {
		require.Nil(t, CreateFromFile(""))
		require.ErrorIs(t, LastError(), ErrInvalidArgument)
	})
	t.Run("missing file", func(t *testing.T) {
		require.Nil(t, CreateFromFile(filepath.Join(t.TempDir(), "absent.ocio")))
		require.ErrorIs(t, LastError(), ErrLoad)
	})
	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.ocio")
		require.NoError(t, os.WriteFile(path, []byte("colorspaces: {not: a list}"), 0o600))
		require.Nil(t, CreateFromFile(path))
		require.ErrorIs(t, LastError(), ErrLoad)
	})
}

func TestCreateFromEnv(t *testing.T) {
	t.Run("unset", func(t *testing.T) {
		t.Setenv(EnvVar, "")
		require.Nil(t, CreateFromEnv())
		require.ErrorIs(t, LastError(), ErrConfigMissing)
	})
	t.Run("set", func(t *testing.T) {
		t.Setenv(EnvVar, writeTestConfig(t))
		cfg := CreateFromEnv()
		require.NotNil(t, cfg)
		require.NoError(t, LastError())
		cfg.Destroy()
	})
	t.Run("set to missing file", func(t *testing.T) {
		t.Setenv(EnvVar, filepath.Join(t.TempDir(), "absent.ocio"))
		require.Nil(t, CreateFromEnv())
		require.ErrorIs(t, LastError(), ErrLoad)
	})
}

func TestCreateBuiltin(t *testing.T) {
	cfg := CreateBuiltin("ocio://default")
	require.NotNil(t, cfg, "builtin: %v", LastError())
	require.NoError(t, LastError())
	require.Greater(t, cfg.NumColorSpaces(), 0)
	cfg.Destroy()

	require.Nil(t, CreateBuiltin(""))
	require.ErrorIs(t, LastError(), ErrInvalidArgument)

	require.Nil(t, CreateBuiltin("ocio://no-such"))
	require.ErrorIs(t, LastError(), ErrLoad)
}

func TestCreateClearsStaleError(t *testing.T) {
	require.Nil(t, CreateFromFile(""))
	require.Error(t, LastError())

	cfg := testCfg(t)
	defer cfg.Destroy()
	require.NoError(t, LastError(), "a successful create must clear the slot")
}

func TestQueriesNeverTouchErrorState(t *testing.T) {
	require.Nil(t, CreateFromFile(""))
	stale := LastError()
	require.Error(t, stale)

	var nilCfg *Config
	require.Equal(t, -1, nilCfg.NumColorSpaces())
	require.Equal(t, "", nilCfg.ColorSpaceName(0))
	require.Equal(t, "", nilCfg.Role("default"))
	require.Equal(t, -1, nilCfg.NumDisplays())
	require.Equal(t, "", nilCfg.Display(0))
	require.Equal(t, "", nilCfg.DefaultDisplay())
	require.Equal(t, -1, nilCfg.NumViews("Main"))
	require.Equal(t, "", nilCfg.View("Main", 0))
	require.Equal(t, "", nilCfg.DefaultView("Main"))

	require.Same(t, stale, LastError(), "queries must not clear or replace the recorded failure")
}

func TestConfigQueries(t *testing.T) {
	cfg := testCfg(t)
	defer cfg.Destroy()

	require.Equal(t, "lin-srgb", cfg.ColorSpaceName(0))
	require.Equal(t, "", cfg.ColorSpaceName(99))
	require.Equal(t, "lin-srgb", cfg.Role("scene_linear"))
	require.Equal(t, "", cfg.Role("undeclared"))
	require.Equal(t, 1, cfg.NumDisplays())
	require.Equal(t, "Main", cfg.Display(0))
	require.Equal(t, "Main", cfg.DefaultDisplay())
	require.Equal(t, 2, cfg.NumViews("Main"))
	require.Equal(t, -1, cfg.NumViews("Other"))
	require.Equal(t, "Raw", cfg.View("Main", 1))
	require.Equal(t, "Standard", cfg.DefaultView("Main"))
}

func TestNewTransform(t *testing.T) {
	cfg := testCfg(t)
	defer cfg.Destroy()

	tr := NewTransform(cfg, "srgb", "lin-srgb")
	require.NotNil(t, tr, "transform: %v", LastError())
	require.Equal(t, "srgb", tr.SrcName())
	require.Equal(t, "lin-srgb", tr.DstName())
	tr.Destroy()

	t.Run("roles resolve", func(t *testing.T) {
		tr := NewTransform(cfg, "scene_linear", "srgb")
		require.NotNil(t, tr)
		require.Equal(t, "lin-srgb", tr.SrcName())
		tr.Destroy()
	})
	t.Run("nil config", func(t *testing.T) {
		require.Nil(t, NewTransform(nil, "srgb", "lin-srgb"))
		require.ErrorIs(t, LastError(), ErrInvalidArgument)
	})
	t.Run("empty names", func(t *testing.T) {
		require.Nil(t, NewTransform(cfg, "", "lin-srgb"))
		require.ErrorIs(t, LastError(), ErrInvalidArgument)
	})
	t.Run("unknown source", func(t *testing.T) {
		require.Nil(t, NewTransform(cfg, "nope", "lin-srgb"))
		require.ErrorIs(t, LastError(), ErrResolution)
	})
	t.Run("unknown destination", func(t *testing.T) {
		require.Nil(t, NewTransform(cfg, "srgb", "nope"))
		require.ErrorIs(t, LastError(), ErrResolution)
	})
}

func TestNewDisplayTransform(t *testing.T) {
	cfg := testCfg(t)
	defer cfg.Destroy()

	tr := NewDisplayTransform(cfg, "lin-srgb", "Main", "Standard")
	require.NotNil(t, tr, "display transform: %v", LastError())
	require.Equal(t, "srgb", tr.DstName())
	tr.Destroy()

	require.Nil(t, NewDisplayTransform(cfg, "lin-srgb", "Main", "Filmic"))
	require.ErrorIs(t, LastError(), ErrResolution)
	require.Nil(t, NewDisplayTransform(cfg, "lin-srgb", "Other", "Standard"))
	require.ErrorIs(t, LastError(), ErrResolution)
	require.Nil(t, NewDisplayTransform(cfg, "lin-srgb", "", "Standard"))
	require.ErrorIs(t, LastError(), ErrInvalidArgument)
}

func TestTransformSurvivesConfigDestroy(t *testing.T) {
	cfg := testCfg(t)
	tr := NewTransform(cfg, "srgb", "lin-srgb")
	require.NotNil(t, tr)
	cfg.Destroy()

	ev := NewEvaluator(tr)
	require.NotNil(t, ev, "evaluator after config destroy: %v", LastError())
	require.False(t, ev.IsNoOp())
	ev.Destroy()
	tr.Destroy()
}

func TestEvaluatorNoOp(t *testing.T) {
	cfg := testCfg(t)
	defer cfg.Destroy()

	t.Run("same space", func(t *testing.T) {
		ev := NewEvaluator(NewTransform(cfg, "srgb", "srgb"))
		require.NotNil(t, ev)
		require.True(t, ev.IsNoOp())
	})
	t.Run("same curve and gamut under different names", func(t *testing.T) {
		ev := NewEvaluator(NewTransform(cfg, "srgb", "srgb-alias"))
		require.NotNil(t, ev)
		require.True(t, ev.IsNoOp())
	})
	t.Run("different curves", func(t *testing.T) {
		ev := NewEvaluator(NewTransform(cfg, "srgb", "gamma22"))
		require.NotNil(t, ev)
		require.False(t, ev.IsNoOp())
	})
	t.Run("different gamuts", func(t *testing.T) {
		ev := NewEvaluator(NewTransform(cfg, "lin-srgb", "acescg"))
		require.NotNil(t, ev)
		require.False(t, ev.IsNoOp())
	})
	t.Run("nil evaluator", func(t *testing.T) {
		var ev *Evaluator
		require.True(t, ev.IsNoOp())
	})
	t.Run("nil transform", func(t *testing.T) {
		require.Nil(t, NewEvaluator(nil))
		require.ErrorIs(t, LastError(), ErrInvalidArgument)
	})
	t.Run("destroyed transform", func(t *testing.T) {
		tr := NewTransform(cfg, "srgb", "lin-srgb")
		require.NotNil(t, tr)
		tr.Destroy()
		require.Nil(t, NewEvaluator(tr))
		require.ErrorIs(t, LastError(), ErrInvalidArgument)
	})
}

func makeRamp(pixels int) []float32 {
	buf := make([]float32, pixels*4)
	for i := 0; i < pixels; i++ {
		v := float32(i) / float32(pixels)
		buf[4*i] = v
		buf[4*i+1] = 1 - v
		buf[4*i+2] = v * 0.5
		buf[4*i+3] = float32(i%3) * 0.5
	}
	return buf
}

func TestApplyRGBA(t *testing.T) {
	cfg := testCfg(t)
	defer cfg.Destroy()

	t.Run("no-op leaves buffer byte-identical", func(t *testing.T) {
		ev := NewEvaluator(NewTransform(cfg, "srgb", "srgb"))
		require.NotNil(t, ev)
		buf := makeRamp(8)
		want := append([]float32(nil), buf...)
		ev.ApplyRGBA(buf, 4, 2)
		require.Empty(t, cmp.Diff(want, buf))
	})

	t.Run("decode matches the transfer curve", func(t *testing.T) {
		ev := NewEvaluator(NewTransform(cfg, "srgb", "lin-srgb"))
		require.NotNil(t, ev)
		buf := []float32{0.5, 0.5, 0.5, 0.25}
		ev.ApplyRGBA(buf, 1, 1)
		require.InDelta(t, 0.214041, buf[0], 1e-4)
		require.InDelta(t, 0.214041, buf[1], 1e-4)
		require.InDelta(t, 0.214041, buf[2], 1e-4)
		require.Equal(t, float32(0.25), buf[3], "alpha must pass through")
	})

	t.Run("deterministic across evaluators", func(t *testing.T) {
		a := NewEvaluator(NewTransform(cfg, "gamma22", "srgb"))
		b := NewEvaluator(NewTransform(cfg, "gamma22", "srgb"))
		require.NotNil(t, a)
		require.NotNil(t, b)
		bufA := makeRamp(16)
		bufB := makeRamp(16)
		a.ApplyRGBA(bufA, 4, 4)
		b.ApplyRGBA(bufB, 4, 4)
		require.Empty(t, cmp.Diff(bufA, bufB))
	})

	t.Run("empty inputs are silent no-ops", func(t *testing.T) {
		ev := NewEvaluator(NewTransform(cfg, "srgb", "lin-srgb"))
		require.NotNil(t, ev)
		require.NoError(t, LastError())

		buf := makeRamp(4)
		want := append([]float32(nil), buf...)
		ev.ApplyRGBA(nil, 4, 1)
		ev.ApplyRGBA(buf, 0, 4)
		ev.ApplyRGBA(buf, 4, -1)
		ev.ApplyRGBA(buf[:3], 1, 1)
		require.Empty(t, cmp.Diff(want, buf))
		require.NoError(t, LastError())

		var nilEv *Evaluator
		nilEv.ApplyRGBA(buf, 4, 1)
		require.Empty(t, cmp.Diff(want, buf))
	})

	t.Run("stale errors stay visible across apply", func(t *testing.T) {
		ev := NewEvaluator(NewTransform(cfg, "srgb", "lin-srgb"))
		require.NotNil(t, ev)

		require.Nil(t, CreateFromFile(""))
		stale := LastError()
		require.Error(t, stale)

		buf := makeRamp(4)
		ev.ApplyRGBA(buf, 4, 1)
		require.Same(t, stale, LastError(), "apply must not clear the slot")
	})
}

func TestApplyRGBPixel(t *testing.T) {
	cfg := testCfg(t)
	defer cfg.Destroy()
	ev := NewEvaluator(NewTransform(cfg, "lin-srgb", "srgb"))
	require.NotNil(t, ev)

	pix := []float32{0.214041, 0.214041, 0.214041}
	ev.ApplyRGBPixel(pix)
	require.InDelta(t, 0.5, pix[0], 1e-4)

	short := []float32{0.5, 0.5}
	ev.ApplyRGBPixel(short)
	require.Equal(t, []float32{0.5, 0.5}, short)

	var nilEv *Evaluator
	nilEv.ApplyRGBPixel(pix)
}

func TestBakeLUT3D(t *testing.T) {
	cfg := testCfg(t)
	defer cfg.Destroy()

	t.Run("degenerate size", func(t *testing.T) {
		ev := NewEvaluator(NewTransform(cfg, "srgb", "srgb"))
		require.Equal(t, [][4]float32{{0, 0, 0, 1}}, ev.BakeLUT3D(1))
		require.Equal(t, [][4]float32{{0, 0, 0, 1}}, ev.BakeLUT3D(0))
	})

	t.Run("identity grid with red fastest", func(t *testing.T) {
		ev := NewEvaluator(NewTransform(cfg, "srgb", "srgb"))
		lut := ev.BakeLUT3D(2)
		require.Len(t, lut, 8)
		require.Equal(t, [4]float32{0, 0, 0, 1}, lut[0])
		require.Equal(t, [4]float32{1, 0, 0, 1}, lut[1])
		require.Equal(t, [4]float32{0, 1, 0, 1}, lut[2])
		require.Equal(t, [4]float32{0, 0, 1, 1}, lut[4])
		require.Equal(t, [4]float32{1, 1, 1, 1}, lut[7])
	})

	t.Run("entries go through the pipeline", func(t *testing.T) {
		ev := NewEvaluator(NewTransform(cfg, "srgb", "lin-srgb"))
		lut := ev.BakeLUT3D(3)
		require.Len(t, lut, 27)
		// Grid midpoint 0.5 decodes to linear mid-gray.
		require.InDelta(t, 0.214041, lut[13][0], 1e-4)
		require.Equal(t, float32(1), lut[13][3])
	})
}
