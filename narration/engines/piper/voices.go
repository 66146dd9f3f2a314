package piper

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgnsrekt/explainer/narration"
)

// model is a voice backed by an .onnx file.
type model struct {
	Voice narration.Voice
	Path  string
}

// scanModels collects the default model and every .onnx file in dir.
// Duplicate voice names keep the first path seen.
func scanModels(defaultModel, dir string) ([]model, error) {
	var found []model
	seen := make(map[string]bool)
	add := func(path string) {
		v := voiceFromModel(path)
		if seen[v.Name] {
			return
		}
		seen[v.Name] = true
		found = append(found, model{Voice: v, Path: path})
	}

	if defaultModel != "" {
		if _, err := os.Stat(defaultModel); err == nil {
			add(defaultModel)
		}
	}
	if dir == "" {
		return found, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return found, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".onnx") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	for _, p := range paths {
		add(p)
	}
	return found, nil
}

// voiceFromModel derives a voice from a model file name. Piper names models
// like en_US-lessac-medium.onnx, where the first segment is the locale.
func voiceFromModel(path string) narration.Voice {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	locale, _, _ := strings.Cut(name, "-")
	lang := ""
	if lng, region, ok := strings.Cut(locale, "_"); ok && len(lng) >= 2 && len(region) == 2 {
		lang = strings.ToLower(lng) + "-" + strings.ToUpper(region)
	} else if len(locale) == 2 {
		lang = strings.ToLower(locale)
	}
	return narration.Voice{Name: name, Lang: lang}
}
