package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"textpipe/internal/common/fsutil"
	"textpipe/pkg/types"
)

// knownFamilies are matched as substrings of the lowercased filename.
var knownFamilies = []string{"llama", "mistral", "phi", "qwen", "gemma", "falcon"}

// GGUFScanner builds a model registry from *.gguf files in a directory.
type GGUFScanner struct{}

func NewGGUFScanner() *GGUFScanner { return &GGUFScanner{} }

// Scan lists *.gguf files under dir. ID is the full filename (including
// extension); Path is the absolute file path. Quant and Family are best-effort
// guesses from the filename and stay empty when nothing matches. Entries come
// back in filename order.
func (s *GGUFScanner) Scan(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		models = append(models, types.Model{
			ID:     name,
			Name:   strings.TrimSuffix(name, filepath.Ext(name)),
			Path:   filepath.Join(abs, name),
			Quant:  deriveQuant(name),
			Family: deriveFamily(name),
		})
	}
	return models, nil
}

// LoadDir scans a directory with a default scanner.
func LoadDir(dir string) ([]types.Model, error) {
	return NewGGUFScanner().Scan(dir)
}

// deriveQuant picks the quantization token out of names like
// "TinyLlama.Q4_K_M.gguf" or "mistral-7b-q5_0.gguf".
func deriveQuant(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	for _, tok := range strings.FieldsFunc(base, func(r rune) bool { return r == '.' || r == '-' }) {
		if len(tok) >= 2 && (tok[0] == 'q' || tok[0] == 'Q') && tok[1] >= '0' && tok[1] <= '9' {
			return strings.ToUpper(tok)
		}
	}
	return ""
}

func deriveFamily(name string) string {
	lower := strings.ToLower(name)
	for _, fam := range knownFamilies {
		if strings.Contains(lower, fam) {
			return fam
		}
	}
	return ""
}
