package agentdef

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Render writes a Definition back out as a persona document. Round-trips
// through Parse for all metadata fields.
func Render(def Definition) ([]byte, error) {
	fields := make(map[string]any)
	if def.Name != "" {
		fields["name"] = def.Name
	}
	if def.Description != "" {
		fields["description"] = def.Description
	}
	if def.Mode != "" {
		fields["mode"] = def.Mode
	}
	if def.Model != "" {
		fields["model"] = def.Model
	}
	if def.Temperature != nil {
		fields["temperature"] = *def.Temperature
	}
	if len(def.Permissions) > 0 {
		perms := make(map[string]string, len(def.Permissions))
		for capability, p := range def.Permissions {
			perms[capability] = string(p)
		}
		fields["permissions"] = perms
	}
	if len(def.Tools) > 0 {
		fields["tools"] = def.Tools
	}
	for key, value := range def.Extra {
		if knownKeys[key] {
			continue
		}
		fields[key] = value
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fields); err != nil {
		return nil, fmt.Errorf("encode front-matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n")
	if def.Body != "" {
		buf.WriteString("\n")
		buf.WriteString(def.Body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}
