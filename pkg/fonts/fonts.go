// Package fonts provides the fixed set of caption font families and caches
// the sized faces drawn with them.
package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmsans10bold"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
)

// DefaultFamily is used for unknown family names
const DefaultFamily = "Anton"

// Built-in families. Captions are always drawn bold, so each family maps
// to its bold cut. Anton is not redistributable here; Go Bold stands in.
var builtin = map[string][]byte{
	"Anton":             gobold.TTF,
	"Go Mono":           gomonobold.TTF,
	"Latin Modern":      lmroman10bold.TTF,
	"Latin Modern Sans": lmsans10bold.TTF,
}

type faceKey struct {
	family string
	size   float64
}

// Registry resolves family names to parsed fonts and sized faces.
// The registry is safe for concurrent use; the faces it returns are not.
type Registry struct {
	mu       sync.Mutex
	sources  map[string][]byte
	parsed   map[string]*opentype.Font
	faces    map[faceKey]font.Face
	fallback string
}

// NewRegistry creates a registry holding the built-in families
func NewRegistry() *Registry {
	r := &Registry{
		sources:  make(map[string][]byte, len(builtin)),
		parsed:   make(map[string]*opentype.Font),
		faces:    make(map[faceKey]font.Face),
		fallback: DefaultFamily,
	}
	for name, data := range builtin {
		r.sources[name] = data
	}
	return r
}

// SetFallback changes the family used for unknown names
func (r *Registry) SetFallback(family string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.lookup(family)
	if !ok {
		return fmt.Errorf("unknown font family: %q", family)
	}
	r.fallback = name
	return nil
}

// Register adds or replaces a family from TrueType or OpenType data
func (r *Registry) Register(family string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font %q: %w", family, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.lookup(family); ok {
		family = existing
		r.dropFaces(family)
	}
	r.sources[family] = data
	r.parsed[family] = f
	return nil
}

// LoadDir registers every .ttf and .otf file in dir, using the file name
// without its extension as the family name. It returns the number loaded.
func (r *Registry) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read font directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return loaded, fmt.Errorf("failed to read font file: %w", err)
		}
		family := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if err := r.Register(family, data); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

// Families returns the registered family names, sorted
func (r *Registry) Families() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the family that will actually be used for name
func (r *Registry) Resolve(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if family, ok := r.lookup(name); ok {
		return family
	}
	return r.fallback
}

// Face returns a face for family at size pixels (72 DPI, so points equal
// pixels). Unknown families use the fallback family.
func (r *Registry) Face(family string, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size: %v", size)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.lookup(family)
	if !ok {
		name = r.fallback
	}

	key := faceKey{name, size}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}

	f, err := r.font(name)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	r.faces[key] = face
	return face, nil
}

// Close releases every cached face
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, face := range r.faces {
		_ = face.Close()
		delete(r.faces, key)
	}
	return nil
}

// lookup matches name case-insensitively. Callers hold r.mu.
func (r *Registry) lookup(name string) (string, bool) {
	if _, ok := r.sources[name]; ok {
		return name, true
	}
	for family := range r.sources {
		if strings.EqualFold(family, strings.TrimSpace(name)) {
			return family, true
		}
	}
	return "", false
}

func (r *Registry) font(name string) (*opentype.Font, error) {
	if f, ok := r.parsed[name]; ok {
		return f, nil
	}
	f, err := opentype.Parse(r.sources[name])
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %q: %w", name, err)
	}
	r.parsed[name] = f
	return f, nil
}

func (r *Registry) dropFaces(family string) {
	for key, face := range r.faces {
		if key.family == family {
			_ = face.Close()
			delete(r.faces, key)
		}
	}
}
