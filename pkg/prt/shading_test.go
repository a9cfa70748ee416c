package prt

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/prt-relight/pkg/sh"
)

func mustPreset(t *testing.T, i int) sh.Coefficients {
	t.Helper()
	p, err := sh.DefaultLibrary().Get(i)
	if err != nil {
		t.Fatalf("Get(%d): %v", i, err)
	}
	return p.Coefficients
}

func vecApprox(a, b mgl64.Vec3, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func TestRadiance(t *testing.T) {
	var light sh.Coefficients
	light[0] = mgl64.Vec3{1, 2, 3}
	light[4] = mgl64.Vec3{10, 0, -10}

	tr := Transfer{0.5, 0, 0, 0, 2, 0, 0, 0, 0}
	got := Radiance(tr, light)
	want := mgl64.Vec3{20.5, 1, -18.5}
	if got != want {
		t.Errorf("Radiance: got %v, want %v", got, want)
	}
}

func TestShadeIdentityMatchesUnrotated(t *testing.T) {
	light := mustPreset(t, 3)
	tr := Transfer{0.8, -0.1, 0.3, 0.05, 0.2, -0.4, 0.1, 0.07, -0.02}
	albedo := mgl64.Vec3{0.7, 0.5, 0.2}

	for _, mode := range []Mode{ModeColor, ModeLight} {
		rotated, err := Shade(tr, albedo, light, sh.RotationMatrix(0, 0, 0), mode)
		if err != nil {
			t.Fatal(err)
		}
		plain, err := ShadeUnrotated(tr, albedo, light, mode)
		if err != nil {
			t.Fatal(err)
		}
		if rotated != plain {
			t.Errorf("mode %s: identity rotation %v != unrotated %v", mode, rotated, plain)
		}
	}
}

func TestShadeFullTurnMatchesUnrotated(t *testing.T) {
	light := mustPreset(t, 0)
	tr := Transfer{0.8, -0.1, 0.3, 0.05, 0.2, -0.4, 0.1, 0.07, -0.02}

	got, _ := Shade(tr, mgl64.Vec3{1, 1, 1}, light, sh.RotationMatrix(2*math.Pi, 0, 0), ModeLight)
	want, _ := ShadeUnrotated(tr, mgl64.Vec3{1, 1, 1}, light, ModeLight)
	if !vecApprox(got, want, 1e-9) {
		t.Errorf("2π rotation: got %v, want %v", got, want)
	}
}

func TestShadeLightModeIgnoresAlbedo(t *testing.T) {
	light := mustPreset(t, 1)
	rot := sh.RotationMatrix(0.3, 1.2, -0.4)
	tr := Transfer{0.6, 0.2, -0.1, 0.3, 0, 0.1, -0.2, 0.05, 0.4}

	a, _ := Shade(tr, mgl64.Vec3{1, 0, 0}, light, rot, ModeLight)
	b, _ := Shade(tr, mgl64.Vec3{0.1, 0.9, 0.3}, light, rot, ModeLight)
	if a != b {
		t.Errorf("light mode depends on albedo: %v vs %v", a, b)
	}
}

func TestShadeColorIsLightTimesAlbedo(t *testing.T) {
	light := mustPreset(t, 2)
	rot := sh.RotationMatrix(1.0, 0.5, 2.0)
	tr := Transfer{0.6, 0.2, -0.1, 0.3, 0, 0.1, -0.2, 0.05, 0.4}
	albedo := mgl64.Vec3{0.25, 0.6, 0.9}

	lit, _ := Shade(tr, albedo, light, rot, ModeLight)
	col, _ := Shade(tr, albedo, light, rot, ModeColor)
	want := mgl64.Vec3{lit[0] * albedo[0], lit[1] * albedo[1], lit[2] * albedo[2]}
	if col != want {
		t.Errorf("color mode: got %v, want %v", col, want)
	}
}

func TestShadeUnknownMode(t *testing.T) {
	_, err := Shade(Transfer{}, mgl64.Vec3{}, mustPreset(t, 0), mgl64.Ident3(), Mode(7))
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"color", ModeColor, false},
		{"Colour", ModeColor, false},
		{"", ModeColor, false},
		{" light ", ModeLight, false},
		{"albedo", ModeColor, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q): err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q): got %s, want %s", tt.in, got, tt.want)
		}
	}
	if ModeLight.String() != "light" || ModeColor.String() != "color" {
		t.Error("unexpected mode names")
	}
}

func TestEngineNotPrepared(t *testing.T) {
	a, _ := NewAsset(quadArgs())
	_, err := NewEngine().ShadeAsset(a, nil)
	if !errors.Is(err, ErrNotPrepared) {
		t.Errorf("expected ErrNotPrepared, got %v", err)
	}
}

func TestEngineRejectsBadInput(t *testing.T) {
	e := NewEngine()
	if err := e.Prepare(mustPreset(t, 0), mgl64.Ident3(), Mode(-1)); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("Prepare with bad mode: expected ErrMalformedInput, got %v", err)
	}
	if err := e.Prepare(mustPreset(t, 0), mgl64.Ident3(), ModeColor); err != nil {
		t.Fatal(err)
	}

	if _, err := e.ShadeAsset(nil, nil); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("nil asset: expected ErrMalformedInput, got %v", err)
	}

	a, _ := NewAsset(quadArgs())
	broken := *a
	broken.PRT2 = broken.PRT2[:6]
	if _, err := e.ShadeAsset(&broken, nil); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("mismatched arrays: expected ErrMalformedInput, got %v", err)
	}
}

func TestEngineMatchesShade(t *testing.T) {
	a, err := NewAsset(quadArgs())
	if err != nil {
		t.Fatal(err)
	}
	light := mustPreset(t, 4)
	rot := sh.RotationMatrix(0.2, 0.4, 0.6)

	e := NewEngine()
	for _, mode := range []Mode{ModeLight, ModeColor} {
		if err := e.Prepare(light, rot, mode); err != nil {
			t.Fatal(err)
		}
		out, err := e.ShadeAsset(a, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 12 {
			t.Fatalf("expected 12 floats, got %d", len(out))
		}
		for v := 0; v < a.VertexCount(); v++ {
			want, _ := Shade(a.Transfer(v), a.Albedo(v), light, rot, mode)
			for k := 0; k < 3; k++ {
				if math.Abs(float64(out[v*3+k])-want[k]) > 1e-5 {
					t.Errorf("mode %s vertex %d channel %d: got %f, want %f", mode, v, k, out[v*3+k], want[k])
				}
			}
		}
	}
}

func TestEngineColorIsLightTimesAlbedoExactly(t *testing.T) {
	a, _ := NewAsset(quadArgs())
	light := mustPreset(t, 1)
	rot := sh.RotationMatrix(1.3, 2.2, 0.1)

	e := NewEngine()
	_ = e.Prepare(light, rot, ModeLight)
	lit, _ := e.ShadeAsset(a, nil)
	_ = e.Prepare(light, rot, ModeColor)
	col, _ := e.ShadeAsset(a, nil)

	for i := range col {
		if col[i] != lit[i]*a.Colors[i] {
			t.Errorf("component %d: color %v != light %v * albedo %v", i, col[i], lit[i], a.Colors[i])
		}
	}
}

func TestEngineLightModeIgnoresAlbedo(t *testing.T) {
	a, _ := NewAsset(quadArgs())
	recoloured := *a
	recoloured.Colors = []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1, 1, 1}

	e := NewEngine()
	_ = e.Prepare(mustPreset(t, 2), sh.RotationMatrix(0.5, 0.5, 0.5), ModeLight)
	x, _ := e.ShadeAsset(a, nil)
	y, _ := e.ShadeAsset(&recoloured, nil)
	for i := range x {
		if x[i] != y[i] {
			t.Errorf("component %d differs: %v vs %v", i, x[i], y[i])
		}
	}
}

func TestEngineNoResidualLight(t *testing.T) {
	a, _ := NewAsset(quadArgs())
	rot := sh.RotationMatrix(0.9, 0.1, 0.4)

	fresh := NewEngine()
	_ = fresh.Prepare(mustPreset(t, 3), rot, ModeColor)
	want, _ := fresh.ShadeAsset(a, nil)

	reused := NewEngine()
	_ = reused.Prepare(mustPreset(t, 0), rot, ModeColor)
	buf, _ := reused.ShadeAsset(a, nil)
	_ = reused.Prepare(mustPreset(t, 3), rot, ModeColor)
	got, _ := reused.ShadeAsset(a, buf)

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("component %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEngineReusesBuffer(t *testing.T) {
	a, _ := NewAsset(quadArgs())
	e := NewEngine()
	_ = e.Prepare(mustPreset(t, 0), mgl64.Ident3(), ModeLight)

	buf := make([]float32, 0, 64)
	out, _ := e.ShadeAsset(a, buf)
	if &out[0] != &buf[:1][0] {
		t.Error("expected ShadeAsset to reuse a large enough buffer")
	}
}

// A DC-only transfer with white albedo must reproduce the DC light term
// under any rotation.
func TestDCOnlyTransferIsRotationInvariant(t *testing.T) {
	const n = 5
	positions := make([]float32, 0, n*3)
	colors := make([]float32, 0, n*3)
	prt1 := make([]float32, 0, n*3)
	prt2 := make([]float32, n*3)
	prt3 := make([]float32, n*3)
	for i := 0; i < n; i++ {
		positions = append(positions, float32(i), float32(i*i), -float32(i))
		colors = append(colors, 1, 1, 1)
		prt1 = append(prt1, 1, 0, 0)
	}
	a, err := NewAsset("dc", positions, []uint32{0, 1, 2, 2, 3, 4}, colors, prt1, prt2, prt3)
	if err != nil {
		t.Fatal(err)
	}

	light := mustPreset(t, 4)
	light[0] = mgl64.Vec3{0.5, 0.5, 0.5}
	lib := sh.NewLibrary(sh.Preset{Name: "grey", Coefficients: light})
	p, err := lib.Get(0)
	if err != nil {
		t.Fatal(err)
	}

	e := NewEngine()
	angles := [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 2.5, 0}, {0.3, 4.1, 5.9}, {-7, 12, 0.01}}
	for _, ang := range angles {
		if err := e.Prepare(p.Coefficients, sh.RotationMatrix(ang[0], ang[1], ang[2]), ModeColor); err != nil {
			t.Fatal(err)
		}
		out, err := e.ShadeAsset(a, nil)
		if err != nil {
			t.Fatal(err)
		}
		for i, v := range out {
			if v != 0.5 {
				t.Errorf("angles %v component %d: got %v, want 0.5", ang, i, v)
			}
		}
	}
}
