package prt

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// quad returns a valid two-triangle asset with 4 vertices.
func quad() (positions []float32, indices []uint32, colors, prt1, prt2, prt3 []float32) {
	positions = []float32{
		-1, -1, 0,
		1, -1, 0,
		1, 1, 0,
		-1, 1, 0,
	}
	indices = []uint32{0, 1, 2, 0, 2, 3}
	colors = []float32{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		0.5, 0.5, 0.5,
	}
	prt1 = []float32{
		1, 0, 0,
		0.5, 0.1, 0,
		0.2, 0, 0.3,
		0.9, -0.2, 0.1,
	}
	prt2 = []float32{
		0, 0, 0,
		0, 0.4, 0,
		0.1, 0.1, 0.1,
		-0.3, 0, 0.2,
	}
	prt3 = []float32{
		0, 0, 0,
		0, 0, 0.2,
		0.05, 0, -0.05,
		0.1, 0.2, 0.3,
	}
	return
}

func TestNewAsset(t *testing.T) {
	a, err := NewAsset(quadArgs())
	if err != nil {
		t.Fatalf("NewAsset: %v", err)
	}
	if a.VertexCount() != 4 {
		t.Errorf("expected 4 vertices, got %d", a.VertexCount())
	}
	if a.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", a.TriangleCount())
	}

	tr := a.Transfer(3)
	want := Transfer{0.9, -0.2, 0.1, -0.3, 0, 0.2, 0.1, 0.2, 0.3}
	for i := range want {
		if tr[i] != float64(float32(want[i])) {
			t.Errorf("transfer[%d]: got %f, want %f", i, tr[i], want[i])
		}
	}

	if a.Albedo(1) != (mgl64.Vec3{0, 1, 0}) {
		t.Errorf("albedo: got %v", a.Albedo(1))
	}
}

func TestNewAssetCopiesInputs(t *testing.T) {
	id, p, i, c, p1, p2, p3 := quadArgs()
	a, err := NewAsset(id, p, i, c, p1, p2, p3)
	if err != nil {
		t.Fatalf("NewAsset: %v", err)
	}

	p[0], i[0], c[0], p1[0], p2[0], p3[0] = 99, 3, 99, 99, 99, 99

	if a.Positions[0] == 99 || a.Indices[0] == 3 || a.Colors[0] == 99 {
		t.Errorf("geometry shares caller memory: %v %v %v", a.Positions[:3], a.Indices[:3], a.Colors[:3])
	}
	if a.PRT1[0] == 99 || a.PRT2[0] == 99 || a.PRT3[0] == 99 {
		t.Errorf("transfer shares caller memory: %v %v %v", a.PRT1[:3], a.PRT2[:3], a.PRT3[:3])
	}
	if err := a.Validate(); err != nil {
		t.Errorf("asset no longer valid: %v", err)
	}
}

// quadArgs adapts quad to NewAsset's positional parameters.
func quadArgs() (string, []float32, []uint32, []float32, []float32, []float32, []float32) {
	p, i, c, p1, p2, p3 := quad()
	return "quad", p, i, c, p1, p2, p3
}

func TestNewAssetInvalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *[]float32, i *[]uint32, c, p1, p2, p3 *[]float32)
		wantMsg string
	}{
		{
			name:    "short colors",
			mutate:  func(p *[]float32, i *[]uint32, c, p1, p2, p3 *[]float32) { *c = (*c)[:9] },
			wantMsg: "colors length 9",
		},
		{
			name:    "long prt2",
			mutate:  func(p *[]float32, i *[]uint32, c, p1, p2, p3 *[]float32) { *p2 = append(*p2, 1, 2, 3) },
			wantMsg: "prt2 length 15",
		},
		{
			name:    "ragged positions",
			mutate:  func(p *[]float32, i *[]uint32, c, p1, p2, p3 *[]float32) { *p = append(*p, 1) },
			wantMsg: "not a multiple of 3",
		},
		{
			name:    "index out of range",
			mutate:  func(p *[]float32, i *[]uint32, c, p1, p2, p3 *[]float32) { (*i)[4] = 4 },
			wantMsg: "exceeds vertex count",
		},
		{
			name:    "partial triangle",
			mutate:  func(p *[]float32, i *[]uint32, c, p1, p2, p3 *[]float32) { *i = (*i)[:5] },
			wantMsg: "index count 5",
		},
		{
			name: "empty",
			mutate: func(p *[]float32, i *[]uint32, c, p1, p2, p3 *[]float32) {
				*p, *c, *p1, *p2, *p3 = nil, nil, nil, nil, nil
				*i = nil
			},
			wantMsg: "no vertices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, i, c, p1, p2, p3 := quad()
			tt.mutate(&p, &i, &c, &p1, &p2, &p3)

			_, err := NewAsset("bad", p, i, c, p1, p2, p3)
			if !errors.Is(err, ErrMalformedInput) {
				t.Fatalf("expected ErrMalformedInput, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestNewAssetReportsAllViolations(t *testing.T) {
	p, i, c, p1, p2, p3 := quad()
	c = c[:3]
	p3 = p3[:6]

	_, err := NewAsset("bad", p, i, c, p1, p2, p3)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "colors") || !strings.Contains(msg, "prt3") {
		t.Errorf("both violations should be reported, got %q", msg)
	}
}

func TestTransferFromPacked(t *testing.T) {
	tr := TransferFromPacked([3]float32{1, 2, 3}, [3]float32{4, 5, 6}, [3]float32{7, 8, 9})
	for i := range tr {
		if tr[i] != float64(i+1) {
			t.Errorf("transfer[%d]: got %f, want %d", i, tr[i], i+1)
		}
	}
}

func TestTransferFromSlicesMalformed(t *testing.T) {
	_, err := TransferFromSlices([]float64{1, 2, 3}, []float64{4, 5}, []float64{6, 7, 8})
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput, got %v", err)
	}

	tr, err := TransferFromSlices([]float64{1, 2, 3}, []float64{4, 5, 6}, []float64{7, 8, 9})
	if err != nil {
		t.Fatalf("TransferFromSlices: %v", err)
	}
	if tr[8] != 9 {
		t.Errorf("transfer[8]: got %f, want 9", tr[8])
	}
}

func TestBounds(t *testing.T) {
	a, err := NewAsset(quadArgs())
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := a.Bounds()
	if lo != (mgl64.Vec3{-1, -1, 0}) || hi != (mgl64.Vec3{1, 1, 0}) {
		t.Errorf("bounds: got %v..%v", lo, hi)
	}
}
