package executor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinLanguages(t *testing.T) {
	langs := BuiltinLanguages()

	t.Run("python is interpreted with a 2s default", func(t *testing.T) {
		python, ok := langs.Lookup("python")
		require.True(t, ok)
		assert.False(t, python.NeedsCompile())
		assert.Equal(t, "main.py", python.SourceFilename)
		assert.Equal(t, 2*time.Second, python.DefaultTimeout())
		assert.Contains(t, python.Env, "PYTHONUNBUFFERED=1")
	})

	t.Run("java compiles with a 3s default", func(t *testing.T) {
		java, ok := langs.Lookup("java")
		require.True(t, ok)
		assert.True(t, java.NeedsCompile())
		assert.Equal(t, "Main.java", java.SourceFilename)
		assert.Equal(t, "javac Main.java", java.CompileCmd)
		assert.Equal(t, 3*time.Second, java.DefaultTimeout())
	})

	t.Run("lookup is case-insensitive and trims whitespace", func(t *testing.T) {
		_, ok := langs.Lookup("  Python ")
		assert.True(t, ok)
		_, ok = langs.Lookup("JAVA")
		assert.True(t, ok)
	})

	t.Run("unknown language is not found", func(t *testing.T) {
		_, ok := langs.Lookup("cobol")
		assert.False(t, ok)
	})
}

func TestSplitCommand(t *testing.T) {
	t.Run("plain command", func(t *testing.T) {
		argv, err := SplitCommand("python3 main.py")
		require.NoError(t, err)
		assert.Equal(t, []string{"python3", "main.py"}, argv)
	})

	t.Run("quoted argument keeps its spaces", func(t *testing.T) {
		argv, err := SplitCommand(`java -Dname="hello world" Main`)
		require.NoError(t, err)
		assert.Equal(t, []string{"java", "-Dname=hello world", "Main"}, argv)
	})

	t.Run("unbalanced quote is rejected", func(t *testing.T) {
		_, err := SplitCommand(`python3 'main.py`)
		assert.Error(t, err)
	})

	t.Run("empty command is rejected", func(t *testing.T) {
		_, err := SplitCommand("   ")
		assert.Error(t, err)
	})
}

func TestRegistryMergeFile(t *testing.T) {
	writeFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "languages.toml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("overrides builtin and adds new language", func(t *testing.T) {
		path := writeFile(t, `
[[languages]]
id = "python"
source_filename = "main.py"
run_cmd = "python3.12 main.py"
env = ["PYTHONUNBUFFERED=1"]
default_time_limit_seconds = 4.0

[[languages]]
id = "c"
source_filename = "main.c"
compile_cmd = "gcc -O2 -o main main.c"
run_cmd = "./main"
default_time_limit_seconds = 1.0
`)

		langs := BuiltinLanguages()
		require.NoError(t, langs.MergeFile(path))

		python, ok := langs.Lookup("python")
		require.True(t, ok)
		assert.Equal(t, "python3.12 main.py", python.RunCmd)
		assert.Equal(t, 4*time.Second, python.DefaultTimeout())

		c, ok := langs.Lookup("c")
		require.True(t, ok)
		assert.True(t, c.NeedsCompile())

		// java untouched
		_, ok = langs.Lookup("java")
		assert.True(t, ok)
	})

	t.Run("entry without run_cmd is rejected", func(t *testing.T) {
		path := writeFile(t, `
[[languages]]
id = "broken"
source_filename = "main.broken"
default_time_limit_seconds = 1.0
`)

		langs := BuiltinLanguages()
		assert.Error(t, langs.MergeFile(path))
	})

	t.Run("entry without a positive time limit is rejected", func(t *testing.T) {
		path := writeFile(t, `
[[languages]]
id = "nolimit"
source_filename = "main.x"
run_cmd = "x main.x"
`)

		langs := BuiltinLanguages()
		assert.Error(t, langs.MergeFile(path))
	})

	t.Run("missing file is an error", func(t *testing.T) {
		langs := BuiltinLanguages()
		assert.Error(t, langs.MergeFile(filepath.Join(t.TempDir(), "nope.toml")))
	})
}
