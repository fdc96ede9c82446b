package renderer

import (
	"testing"
)

func TestShadowMapClearsToFar(t *testing.T) {
	pass := NewShadowMapPass(8)
	for i := range pass.Texture.Pix {
		pass.Texture.Pix[i] = 0.3
	}
	pass.Render(&Scene{}, testSun())
	for i, d := range pass.Texture.Pix {
		if d != 1 {
			t.Fatalf("texel %d not cleared to far: %v", i, d)
		}
	}
}

func TestShadowMapKeepsNearestDepth(t *testing.T) {
	ground := NewPlane("ground", 40, 4, nil)
	occluder := NewBox("occluder", 4, 0.5, 4)
	occluder.SetPosition(0, 4, 0)
	scene := &Scene{Models: []*Model{ground, occluder}}

	pass := NewShadowMapPass(16)
	pass.Render(scene, testSun())

	// Under the box the nearest surface is its top at y=4.25, one tenth
	// of a box depth below the y=5 light origin plus half.
	if got := pass.Texture.Fetch(7, 7); abs32(got-0.075) > 2e-3 {
		t.Errorf("texel under the box: depth %v, want 0.075", got)
	}
	// Away from the box only the ground at y=0 is seen.
	if got := pass.Texture.Fetch(0, 0); abs32(got-0.5) > 2e-3 {
		t.Errorf("open ground texel: depth %v, want 0.5", got)
	}
}

func TestShadowSamplerFlipsRows(t *testing.T) {
	ground := NewPlane("ground", 40, 4, nil)
	occluder := NewBox("occluder", 4, 0.5, 4)
	occluder.SetPosition(5, 4, 0)
	scene := &Scene{Models: []*Model{ground, occluder}}

	pass := NewShadowMapPass(16)
	pass.Render(scene, testSun())

	// The box sits at positive light y, which the texture stores in its
	// upper rows. The sampler view walks rows bottom-up.
	boxRow, groundRow := 3, 12
	if got := pass.Texture.Fetch(8, boxRow); abs32(got-0.075) > 2e-3 {
		t.Fatalf("expected the box in texture row %d: depth %v", boxRow, got)
	}
	if got := pass.Texture.Fetch(8, groundRow); abs32(got-0.5) > 2e-3 {
		t.Fatalf("expected open ground in texture row %d: depth %v", groundRow, got)
	}
	sampler := pass.Sampler()
	if got := sampler(8, 15-boxRow); abs32(got-0.075) > 2e-3 {
		t.Errorf("sampler row %d should see the box: depth %v", 15-boxRow, got)
	}
	if got := sampler(8, 15-groundRow); abs32(got-0.5) > 2e-3 {
		t.Errorf("sampler row %d should see ground: depth %v", 15-groundRow, got)
	}
}

func TestShadowMapIgnoresGeometryOutsideBox(t *testing.T) {
	distant := NewBox("distant", 2, 2, 2)
	distant.SetPosition(100, 0, 0)
	scene := &Scene{Models: []*Model{distant}}

	pass := NewShadowMapPass(8)
	pass.Render(scene, testSun())
	for i, d := range pass.Texture.Pix {
		if d != 1 {
			t.Fatalf("texel %d shadowed by geometry outside the light box: %v", i, d)
		}
	}
}
