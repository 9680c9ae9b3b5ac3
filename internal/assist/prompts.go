package assist

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed prompts.json
var promptFile []byte

var (
	promptsOnce sync.Once
	promptSet   map[string]string
	promptErr   error
)

// prompt returns the named template from the embedded prompt file.
func prompt(key string) (string, error) {
	promptsOnce.Do(func() {
		if err := json.Unmarshal(promptFile, &promptSet); err != nil {
			promptErr = fmt.Errorf("failed to parse prompt file: %w", err)
		}
	})
	if promptErr != nil {
		return "", promptErr
	}

	p, ok := promptSet[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found", key)
	}
	return p, nil
}

// format replaces placeholders in the form {{.Key}} with values from data.
func format(template string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
