package opengltest

import "testing"

func TestLayoutStd140(t *testing.T) {
	blocks, err := parseBlocks(`
// comment with uniform fake { float x; };
layout(std140) uniform cloudData {
    float coverage;
    int mainStepCount;
    int lightStepCount;
    vec3 cloudColor;
    vec3 boundingBox[2];
    float cloudScale;
    vec3 cloudOffset;
};
uniform sampler2D sceneColor;
`)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	b := blocks[0]
	want := map[string]int{
		"coverage": 0, "mainStepCount": 4, "lightStepCount": 8, "cloudColor": 16,
		"boundingBox": 32, "cloudScale": 64, "cloudOffset": 80,
	}
	for name, off := range want {
		m, ok := b.member(name)
		if !ok {
			t.Errorf("%s missing", name)
			continue
		}
		if m.Offset != off {
			t.Errorf("%s: expected offset %d, got %d", name, off, m.Offset)
		}
	}
	if m, _ := b.member("boundingBox[0]"); m.ArrayStride != 16 || m.Count != 2 {
		t.Errorf("boundingBox: expected stride 16 count 2, got %+v", m)
	}
	if b.Size != 96 {
		t.Errorf("expected size 96, got %d", b.Size)
	}
}

func TestBlockDeclaredByBothStages(t *testing.T) {
	src := `layout(std140) uniform matrixData { mat4 modelMat; mat4 viewMat; };`
	blocks, err := parseBlocks(src, src)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].Size != 128 {
		t.Errorf("expected one 128-byte block, got %+v", blocks)
	}

	if _, err := parseBlocks(src, `uniform matrixData { mat4 modelMat; };`); err == nil {
		t.Error("expected conflicting declarations to fail")
	}
}

func TestParseSubroutines(t *testing.T) {
	got := parseSubroutines(`
subroutine vec4 mode(vec2 uv);
subroutine uniform mode renderMode;
subroutine(mode) vec4 first(vec2 uv) { return vec4(0); }
subroutine( mode ) vec4 second(vec2 uv) { return vec4(1); }
`)
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("got %v", got)
	}
}
