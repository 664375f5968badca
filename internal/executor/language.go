package executor

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"
	"github.com/pelletier/go-toml/v2"
)

// Language describes how one supported language is written to disk, compiled
// and run. Commands are stored as single strings and tokenized shell-style,
// so a registry file can express them the way a shell invocation looks.
type Language struct {
	ID             string `toml:"id"`
	SourceFilename string `toml:"source_filename"`
	// CompileCmd is empty for interpreted languages.
	CompileCmd string `toml:"compile_cmd,omitempty"`
	RunCmd     string `toml:"run_cmd"`
	// Env entries are appended to the inherited host environment,
	// e.g. PYTHONUNBUFFERED=1 so partial output survives a hard kill.
	Env []string `toml:"env,omitempty"`
	// DefaultTimeLimitSeconds applies when the request carries no limit.
	// Compiled/VM languages get a longer default to absorb startup cost.
	DefaultTimeLimitSeconds float64 `toml:"default_time_limit_seconds"`
}

// NeedsCompile reports whether the language has an ahead-of-time compile step.
func (l Language) NeedsCompile() bool {
	return l.CompileCmd != ""
}

// DefaultTimeout converts the language's default limit to a time.Duration.
func (l Language) DefaultTimeout() time.Duration {
	return time.Duration(l.DefaultTimeLimitSeconds * float64(time.Second))
}

// Registry maps a lowercase language id to its definition.
type Registry map[string]Language

// BuiltinLanguages returns the two languages the platform grades submissions in.
func BuiltinLanguages() Registry {
	return Registry{
		"python": {
			ID:                      "python",
			SourceFilename:          "main.py",
			RunCmd:                  "python3 main.py",
			Env:                     []string{"PYTHONUNBUFFERED=1"},
			DefaultTimeLimitSeconds: 2.0,
		},
		"java": {
			ID:                      "java",
			SourceFilename:          "Main.java",
			CompileCmd:              "javac Main.java",
			RunCmd:                  "java Main",
			DefaultTimeLimitSeconds: 3.0,
		},
	}
}

// Lookup resolves a language id case-insensitively.
func (r Registry) Lookup(id string) (Language, bool) {
	lang, ok := r[strings.ToLower(strings.TrimSpace(id))]
	return lang, ok
}

// languagesFile is the shape of an optional TOML registry file that can
// override or extend the builtin languages at startup.
type languagesFile struct {
	Languages []Language `toml:"languages"`
}

// MergeFile overlays language definitions from a TOML file onto the registry.
// Entries with a known id replace the builtin definition; new ids are added.
func (r Registry) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading languages file: %w", err)
	}

	var parsed languagesFile
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parsing languages file: %w", err)
	}

	for _, lang := range parsed.Languages {
		if lang.ID == "" || lang.SourceFilename == "" || lang.RunCmd == "" {
			return fmt.Errorf("language entry %q is missing id, source_filename or run_cmd", lang.ID)
		}
		if lang.DefaultTimeLimitSeconds <= 0 {
			return fmt.Errorf("language %q has no positive default_time_limit_seconds", lang.ID)
		}
		r[strings.ToLower(lang.ID)] = lang
	}
	return nil
}

// SplitCommand tokenizes a command string the way a shell would,
// honoring quoting, so arguments may contain spaces.
func SplitCommand(command string) ([]string, error) {
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("tokenizing command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("command %q is empty", command)
	}
	return argv, nil
}
