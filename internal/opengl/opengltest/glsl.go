package opengltest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	blockDecl    = regexp.MustCompile(`(?s)uniform\s+(\w+)\s*\{([^}]*)\}\s*;`)
	memberDecl   = regexp.MustCompile(`^(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?$`)
	samplerDecl  = regexp.MustCompile(`uniform\s+sampler\w+\s+(\w+)\s*;`)
	subroutineFn = regexp.MustCompile(`subroutine\s*\(\s*\w+\s*\)\s*\w+\s+(\w+)\s*\(`)
)

// Member is one reflected uniform block member.
type Member struct {
	Name         string
	Type         string
	Count        int
	Offset       int
	ArrayStride  int
	MatrixStride int
}

// Block is a uniform block laid out with std140 rules.
type Block struct {
	Name    string
	Size    int
	Members []Member
}

func (b *Block) member(name string) (Member, bool) {
	for _, m := range b.Members {
		if m.Name == name || m.Name+"[0]" == name {
			return m, true
		}
	}
	return Member{}, false
}

func stripComments(src string) string {
	return lineComment.ReplaceAllString(blockComment.ReplaceAllString(src, ""), "")
}

// parseBlocks extracts uniform blocks from each source, in declaration order.
// A block declared by more than one stage must have the same layout in each.
func parseBlocks(sources ...string) ([]*Block, error) {
	var blocks []*Block
	byName := map[string]*Block{}
	for _, src := range sources {
		for _, m := range blockDecl.FindAllStringSubmatch(stripComments(src), -1) {
			b, err := layoutStd140(m[1], m[2])
			if err != nil {
				return nil, err
			}
			if prev, ok := byName[b.Name]; ok {
				if prev.Size != b.Size || len(prev.Members) != len(b.Members) {
					return nil, fmt.Errorf("block %s declared twice with different layouts", b.Name)
				}
				continue
			}
			byName[b.Name] = b
			blocks = append(blocks, b)
		}
	}
	return blocks, nil
}

func parseSamplers(sources ...string) []string {
	var names []string
	for _, src := range sources {
		for _, m := range samplerDecl.FindAllStringSubmatch(stripComments(src), -1) {
			names = append(names, m[1])
		}
	}
	return names
}

func parseSubroutines(src string) []string {
	var names []string
	for _, m := range subroutineFn.FindAllStringSubmatch(stripComments(src), -1) {
		names = append(names, m[1])
	}
	return names
}

// std140 base alignment and size of each supported type.
var std140Types = map[string]struct{ align, size, columns int }{
	"float": {4, 4, 0},
	"int":   {4, 4, 0},
	"uint":  {4, 4, 0},
	"bool":  {4, 4, 0},
	"vec2":  {8, 8, 0},
	"vec3":  {16, 12, 0},
	"vec4":  {16, 16, 0},
	"mat3":  {16, 48, 3},
	"mat4":  {16, 64, 4},
}

func roundUp(n, to int) int {
	return (n + to - 1) / to * to
}

func layoutStd140(name, body string) (*Block, error) {
	b := &Block{Name: name}
	offset := 0
	for _, decl := range strings.Split(body, ";") {
		decl = strings.Join(strings.Fields(decl), " ")
		if decl == "" {
			continue
		}
		m := memberDecl.FindStringSubmatch(decl)
		if m == nil {
			return nil, fmt.Errorf("block %s: cannot parse member %q", name, decl)
		}
		t, ok := std140Types[m[1]]
		if !ok {
			return nil, fmt.Errorf("block %s: unsupported type %q", name, m[1])
		}
		mem := Member{Name: m[2], Type: m[1], Count: 1}
		if t.columns > 0 {
			mem.MatrixStride = 16
		}
		align, size := t.align, t.size
		if m[3] != "" {
			n, _ := strconv.Atoi(m[3])
			mem.Count = n
			mem.ArrayStride = roundUp(t.size, 16)
			align, size = 16, mem.ArrayStride*n
		}
		offset = roundUp(offset, align)
		mem.Offset = offset
		offset += size
		b.Members = append(b.Members, mem)
	}
	b.Size = roundUp(offset, 16)
	return b, nil
}
