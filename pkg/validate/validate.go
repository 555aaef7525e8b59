// Package validate performs advisory semantic checks on parsed agent
// definitions. Findings never block a load; the registry records them and
// keeps the definition retrievable.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rosterkit/roster/pkg/agentdef"
)

const maxDescriptionLen = 1024

var namePattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// DefaultModes is the recognized mode set when the host does not override it.
var DefaultModes = []string{"primary", "subagent", "all"}

// Issue is a single advisory finding against one definition.
type Issue struct {
	Agent   string `json:"agent"`
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Value != "" {
		return fmt.Sprintf("%s: %s %q: %s", i.Agent, i.Field, i.Value, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Agent, i.Field, i.Message)
}

// Options configures the recognized enumerations.
type Options struct {
	// Modes is the closed set of host-recognized invocation modes.
	Modes []string
}

// Definition checks one parsed definition and returns all findings.
func Definition(def agentdef.Definition, opts Options) []Issue {
	modes := opts.Modes
	if len(modes) == 0 {
		modes = DefaultModes
	}

	var issues []Issue
	add := func(field, value, message string) {
		issues = append(issues, Issue{Agent: def.Name, Field: field, Value: value, Message: message})
	}

	if strings.TrimSpace(def.Name) == "" {
		add("name", "", "name is required")
	} else if !namePattern.MatchString(def.Name) {
		add("name", def.Name, "name must be lowercase kebab-case")
	}

	if strings.TrimSpace(def.Description) == "" {
		add("description", "", "description is required")
	} else if utf8.RuneCountInString(def.Description) > maxDescriptionLen {
		add("description", "", fmt.Sprintf("description exceeds %d characters", maxDescriptionLen))
	}

	if def.Mode != "" && !contains(modes, def.Mode) {
		add("mode", def.Mode, fmt.Sprintf("mode must be one of %s", strings.Join(modes, ", ")))
	}

	if def.HasTemperature() {
		if t := *def.Temperature; t < 0 || t > 1 {
			add("temperature", fmt.Sprintf("%g", t), "temperature must be within [0, 1]")
		}
	}

	for capability, p := range def.Permissions {
		switch p {
		case agentdef.PermissionAllow, agentdef.PermissionDeny, agentdef.PermissionAsk:
		default:
			add("permissions."+capability, string(p), "permission must be allow, deny, or ask")
		}
	}

	return issues
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
