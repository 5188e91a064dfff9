// Package shaders holds the GLSL sources of the scene and cloud programs.
package shaders

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

const (
	SceneVert = "sceneVert.vs"
	SceneFrag = "sceneFrag.fs"
	CloudVert = "cloudVert.vs"
	CloudFrag = "cloudFrag.fs"
)

//go:embed *.vs *.fs
var files embed.FS

// Source returns the named shader. When dir is non-empty the file is read from
// disk there instead of the embedded copy, so shaders can be edited without a
// rebuild.
func Source(dir, name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if dir != "" {
		data, err = os.ReadFile(filepath.Join(dir, name))
	} else {
		data, err = files.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read shader %s: %w", name, err)
	}
	return string(data), nil
}

// Set is the four sources the renderer needs.
type Set struct {
	SceneVert, SceneFrag string
	CloudVert, CloudFrag string
}

// Load reads all four shaders from dir, or the embedded copies when dir is empty.
func Load(dir string) (Set, error) {
	var s Set
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{SceneVert, &s.SceneVert},
		{SceneFrag, &s.SceneFrag},
		{CloudVert, &s.CloudVert},
		{CloudFrag, &s.CloudFrag},
	} {
		src, err := Source(dir, f.name)
		if err != nil {
			return Set{}, err
		}
		*f.dst = src
	}
	return s, nil
}
