// Package devcontainer parses and lints devcontainer.json files.
// Refer to https://containers.dev/implementors/json_reference/ for the
// schema this mirrors.
package devcontainer

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// StringList is a devcontainer value that may be a single string or an
// array of strings on the wire.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or array of strings")
	}
	*s = StringList(many)
	return nil
}

// Port is a forwarded port that may be a number or a "host:port" string on
// the wire.
type Port struct {
	Raw    string
	Number int
}

func (p *Port) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		p.Number = n
		p.Raw = strconv.Itoa(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected port number or string")
	}
	p.Raw = s
	if n, err := strconv.Atoi(s); err == nil {
		p.Number = n
	}
	return nil
}

// VSCodeCustomizations holds the editor settings and extension list.
type VSCodeCustomizations struct {
	Settings   map[string]any `json:"settings"`
	Extensions []string       `json:"extensions"`
}

// Customizations holds tool-specific configuration blocks.
type Customizations struct {
	VSCode VSCodeCustomizations `json:"vscode"`
}

// Config is a devcontainer.json document.
type Config struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Build struct {
		Dockerfile string         `json:"dockerfile"`
		Context    string         `json:"context"`
		Args       map[string]any `json:"args"`
		Target     string         `json:"target"`
		CacheFrom  StringList     `json:"cacheFrom"`
	} `json:"build"`

	DockerComposeFile StringList `json:"dockerComposeFile"`
	Service           string     `json:"service"`
	RunServices       []string   `json:"runServices"`

	WorkspaceFolder string `json:"workspaceFolder"`
	WorkspaceMount  string `json:"workspaceMount"`

	Customizations Customizations `json:"customizations"`

	ForwardPorts  []Port         `json:"forwardPorts"`
	ContainerEnv  map[string]any `json:"containerEnv"`
	RemoteEnv     map[string]any `json:"remoteEnv"`
	RemoteUser    string         `json:"remoteUser"`
	ContainerUser string         `json:"containerUser"`

	Features map[string]any `json:"features"`
	Mounts   []any          `json:"mounts"`
	RunArgs  []string       `json:"runArgs"`

	InitializeCommand    StringList `json:"initializeCommand"`
	OnCreateCommand      StringList `json:"onCreateCommand"`
	UpdateContentCommand StringList `json:"updateContentCommand"`
	PostCreateCommand    StringList `json:"postCreateCommand"`
	PostStartCommand     StringList `json:"postStartCommand"`
	PostAttachCommand    StringList `json:"postAttachCommand"`

	ShutdownAction  string `json:"shutdownAction"`
	OverrideCommand bool   `json:"overrideCommand"`
}

// Parse decodes a devcontainer.json document. The file format permits
// line and block comments, which are stripped before decoding.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(StripComments(data), &cfg); err != nil {
		return nil, fmt.Errorf("invalid devcontainer JSON: %w", err)
	}
	return &cfg, nil
}

// ParseFile reads and decodes a devcontainer.json file.
func ParseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// StripComments removes // line comments and /* */ block comments from a
// JSONC document, leaving string contents untouched. Comment bytes are
// replaced with spaces (newlines preserved) so JSON error offsets still
// line up with the original file.
func StripComments(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)

	const (
		code = iota
		inString
		lineComment
		blockComment
	)

	state := code
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case code:
			switch {
			case c == '"':
				state = inString
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = lineComment
				out[i] = ' '
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				state = blockComment
				out[i] = ' '
			}
		case inString:
			if c == '\\' {
				i++ // skip escaped byte
			} else if c == '"' {
				state = code
			}
		case lineComment:
			if c == '\n' {
				state = code
			} else {
				out[i] = ' '
			}
		case blockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i] = ' '
				out[i+1] = ' '
				i++
				state = code
			} else if c != '\n' {
				out[i] = ' '
			}
		}
	}

	return out
}
