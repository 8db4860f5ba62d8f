package prompt

import (
	"fmt"
	"strings"
)

// MissingVariableError reports a placeholder that has no entry in the
// variable mapping passed to Render.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("prompt: no value for template variable %q", e.Name)
}

// MalformedTemplateError reports a "${" token that is never closed.
type MalformedTemplateError struct {
	Offset int
}

func (e *MalformedTemplateError) Error() string {
	return fmt.Sprintf("prompt: unterminated placeholder at offset %d", e.Offset)
}

// Render substitutes ${name} placeholders in template with values from vars.
// Every placeholder must have a mapping entry; a "${" without a closing "}"
// is malformed. A string containing no placeholders renders to itself, so
// rendering is idempotent on fully rendered output. Bare "$" without a
// following "{" passes through untouched.
func Render(template string, vars map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		start := strings.Index(template[i:], "${")
		if start < 0 {
			b.WriteString(template[i:])
			break
		}
		start += i
		b.WriteString(template[i:start])

		end := strings.IndexByte(template[start+2:], '}')
		if end < 0 {
			return "", &MalformedTemplateError{Offset: start}
		}
		name := template[start+2 : start+2+end]
		if name == "" {
			return "", &MalformedTemplateError{Offset: start}
		}
		value, ok := vars[name]
		if !ok {
			return "", &MissingVariableError{Name: name}
		}
		b.WriteString(value)
		i = start + 2 + end + 1
	}

	return b.String(), nil
}
