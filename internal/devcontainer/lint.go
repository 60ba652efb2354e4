package devcontainer

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Severity classifies a lint finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single lint finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Field, i.Message)
}

// Extension identifiers are publisher.extension-name, e.g. "golang.go".
var extensionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*\.[a-zA-Z0-9][a-zA-Z0-9-]*$`)

// Lint checks a parsed config for schema problems. Required keys must be
// present and non-empty, extension identifiers must match the
// publisher.extension-name format, and forwarded ports must be in range.
func Lint(cfg *Config) []Issue {
	var issues []Issue

	addError := func(field, format string, args ...any) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Field:    field,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if strings.TrimSpace(cfg.Name) == "" {
		addError("name", "required key is missing or empty")
	}

	// A compose-based config names the compose file, the service to
	// attach to, and the mounted workspace folder.
	if len(cfg.DockerComposeFile) == 0 || allEmpty(cfg.DockerComposeFile) {
		addError("dockerComposeFile", "required key is missing or empty")
	}
	if strings.TrimSpace(cfg.Service) == "" {
		addError("service", "required key is missing or empty")
	}
	if strings.TrimSpace(cfg.WorkspaceFolder) == "" {
		addError("workspaceFolder", "required key is missing or empty")
	}

	for i, ext := range cfg.Customizations.VSCode.Extensions {
		if !extensionIDPattern.MatchString(ext) {
			addError(fmt.Sprintf("customizations.vscode.extensions[%d]", i),
				"%q is not a publisher.extension-name identifier", ext)
		}
	}

	for i, port := range cfg.ForwardPorts {
		if !validForwardPort(port) {
			addError(fmt.Sprintf("forwardPorts[%d]", i),
				"%q is not a valid port number", port.Raw)
		}
	}

	return issues
}

// validForwardPort accepts a plain port number or a "host:port" string,
// checking that the port part is in 1..65535.
func validForwardPort(p Port) bool {
	number := p.Number
	if host, portPart, ok := strings.Cut(p.Raw, ":"); ok {
		if strings.TrimSpace(host) == "" {
			return false
		}
		n, err := strconv.Atoi(portPart)
		if err != nil {
			return false
		}
		number = n
	}
	return number >= 1 && number <= 65535
}

// LintFile parses and lints a devcontainer.json file. A file that cannot
// be read or parsed yields a single error-severity issue, mirroring how
// host tooling reports malformed configs.
func LintFile(path string) ([]Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return []Issue{{
			Severity: SeverityError,
			Field:    "(document)",
			Message:  err.Error(),
		}}, nil
	}

	return Lint(cfg), nil
}

func allEmpty(list StringList) bool {
	for _, s := range list {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
