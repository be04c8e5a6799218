// Package prompts manages the embedded prompt templates the pipeline renders
// for provider calls. The .tmpl files in templates/ are the source of truth;
// keys are hierarchical ("analysis.extract_entities").
package prompts

import (
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Prompt keys.
const (
	KeyExtractEntities  = "analysis.extract_entities"
	KeyTranslateChapter = "translation.translate_chapter"
)

// keyToFile maps prompt keys to embedded template files.
var keyToFile = map[string]string{
	KeyExtractEntities:  "extract_entities.tmpl",
	KeyTranslateChapter: "translate_chapter.tmpl",
}

// EmbeddedPrompt is a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key       string   // hierarchical key: analysis.extract_entities
	Text      string   // the prompt text (Go template)
	Variables []string // extracted template variables
	Hash      string   // SHA256 of the text for change detection
}

var (
	loadOnce sync.Once
	loaded   map[string]EmbeddedPrompt
	loadErr  error
)

func load() {
	loaded = make(map[string]EmbeddedPrompt, len(keyToFile))
	for key, file := range keyToFile {
		data, err := templateFS.ReadFile(path.Join("templates", file))
		if err != nil {
			loadErr = fmt.Errorf("embedded prompt %s: %w", key, err)
			return
		}
		text := string(data)
		loaded[key] = EmbeddedPrompt{
			Key:       key,
			Text:      text,
			Variables: ExtractVariables(text),
			Hash:      HashText(text),
		}
	}
}

// Get returns the embedded prompt for a key.
func Get(key string) (EmbeddedPrompt, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return EmbeddedPrompt{}, loadErr
	}
	p, ok := loaded[key]
	if !ok {
		return EmbeddedPrompt{}, fmt.Errorf("prompt not found: %s", key)
	}
	return p, nil
}

// All returns every embedded prompt.
func All() ([]EmbeddedPrompt, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, loadErr
	}
	out := make([]EmbeddedPrompt, 0, len(loaded))
	for _, p := range loaded {
		out = append(out, p)
	}
	return out, nil
}

// Render resolves a prompt by key and executes it with the given data.
func Render(key string, data any) (string, error) {
	p, err := Get(key)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(key).Parse(p.Text)
	if err != nil {
		return "", fmt.Errorf("parse prompt %s: %w", key, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", key, err)
	}
	return b.String(), nil
}
