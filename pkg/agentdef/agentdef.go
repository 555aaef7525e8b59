// Package agentdef parses agent persona documents: a YAML front-matter
// block followed by free-form instruction text for a language model.
package agentdef

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	rostererrors "github.com/rosterkit/roster/pkg/errors"
)

// Permission is the tri-state access decision for a capability.
type Permission string

const (
	PermissionAllow Permission = "allow"
	PermissionDeny  Permission = "deny"
	PermissionAsk   Permission = "ask"
)

// Definition is one parsed persona document. The Body is opaque: it is
// handed to the host verbatim and never interpreted here.
type Definition struct {
	Name        string
	Description string
	Mode        string
	Model       string
	Temperature *float64
	Permissions map[string]Permission
	Tools       map[string]bool
	Extra       map[string]any
	Body        string
	Path        string
}

// HasTemperature reports whether the document declared a sampling temperature.
func (d Definition) HasTemperature() bool {
	return d.Temperature != nil
}

// Permission returns the declared decision for a capability, or the given
// default when the document is silent about it.
func (d Definition) Permission(capability string, fallback Permission) Permission {
	if p, ok := d.Permissions[capability]; ok {
		return p
	}
	return fallback
}

type frontmatter struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Mode        string         `yaml:"mode"`
	Model       string         `yaml:"model"`
	Temperature *float64       `yaml:"temperature"`
	Permissions map[string]any `yaml:"permissions"`
	Tools       map[string]bool `yaml:"tools"`
}

// knownKeys are the front-matter keys bound to Definition fields. Everything
// else is preserved in Extra without validation.
var knownKeys = map[string]bool{
	"name":        true,
	"description": true,
	"mode":        true,
	"model":       true,
	"temperature": true,
	"permissions": true,
	"tools":       true,
}

// Parse splits raw document text into front-matter and body and decodes the
// front-matter. It returns a MALFORMED_DOCUMENT error when the leading
// delimiter is missing, the block is unterminated, or the block does not
// decode to a YAML mapping.
func Parse(raw []byte) (Definition, error) {
	fm, body, err := splitFrontmatter(string(raw))
	if err != nil {
		return Definition{}, err
	}

	var parsed frontmatter
	if err := yaml.Unmarshal([]byte(fm), &parsed); err != nil {
		return Definition{}, rostererrors.Malformed("", "front-matter did not parse", err)
	}

	var all map[string]any
	if err := yaml.Unmarshal([]byte(fm), &all); err != nil {
		return Definition{}, rostererrors.Malformed("", "front-matter is not a mapping", err)
	}

	def := Definition{
		Name:        strings.TrimSpace(parsed.Name),
		Description: strings.TrimSpace(parsed.Description),
		Mode:        strings.TrimSpace(parsed.Mode),
		Model:       strings.TrimSpace(parsed.Model),
		Temperature: parsed.Temperature,
		Permissions: normalizePermissions(parsed.Permissions),
		Tools:       parsed.Tools,
		Body:        strings.TrimSpace(body),
	}
	for key, value := range all {
		if knownKeys[key] {
			continue
		}
		if def.Extra == nil {
			def.Extra = make(map[string]any)
		}
		def.Extra[key] = value
	}
	return def, nil
}

// ParseFile parses a persona document from disk. When the front-matter does
// not declare a name, the file stem is used.
func ParseFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, err
	}
	def, err := Parse(data)
	if err != nil {
		if re, ok := err.(*rostererrors.RosterError); ok {
			re.WithContext("path", path)
		}
		return Definition{}, err
	}
	def.Path = path
	if def.Name == "" {
		def.Name = NameFromPath(path)
	}
	return def, nil
}

// NameFromPath derives an agent name from the document location.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// splitFrontmatter separates the YAML block from the body. Delimiters only
// count on their own line, so a value or body containing "---" passes through
// untouched.
func splitFrontmatter(content string) (string, string, error) {
	trimmed := strings.TrimSpace(content)
	first, rest, hasMore := strings.Cut(trimmed, "\n")
	if strings.TrimSpace(first) != "---" {
		return "", "", rostererrors.Malformed("", "missing front-matter delimiter", nil)
	}
	if !hasMore {
		return "", "", rostererrors.Malformed("", "unterminated front-matter block", nil)
	}
	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			fm := strings.Join(lines[:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return strings.TrimSpace(fm), strings.TrimSpace(body), nil
		}
	}
	return "", "", rostererrors.Malformed("", "unterminated front-matter block", nil)
}

// normalizePermissions maps YAML values onto the tri-state. Booleans are the
// documented equivalents (true=allow, false=deny). Anything else is carried
// through verbatim so the validator can report it without blocking the load.
func normalizePermissions(raw map[string]any) map[string]Permission {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]Permission, len(raw))
	for capability, value := range raw {
		out[capability] = normalizePermission(value)
	}
	return out
}

func normalizePermission(value any) Permission {
	switch v := value.(type) {
	case bool:
		if v {
			return PermissionAllow
		}
		return PermissionDeny
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "allow":
			return PermissionAllow
		case "deny":
			return PermissionDeny
		case "ask":
			return PermissionAsk
		default:
			return Permission(strings.TrimSpace(v))
		}
	default:
		return Permission(fmt.Sprintf("%v", value))
	}
}
