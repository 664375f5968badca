package local

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/xid"
)

// workspace is an exclusively-owned ephemeral directory holding one
// execution's source file. It exists from request start to request end and
// is never shared between concurrent executions.
type workspace struct {
	path string
}

// EnsureRoot creates the directory workspaces live under. Idempotent; called
// once at service startup.
func EnsureRoot(root string) error {
	return os.MkdirAll(root, 0o755)
}

// newWorkspace creates a uniquely named directory under root. xid ids carry a
// timestamp prefix plus random payload, so concurrent executions never collide.
func newWorkspace(root string) (*workspace, error) {
	path := filepath.Join(root, "exec-"+xid.New().String())
	if err := os.Mkdir(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace %s: %w", path, err)
	}
	return &workspace{path: path}, nil
}

func (w *workspace) writeFile(name, content string) error {
	if err := os.WriteFile(filepath.Join(w.path, name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// remove deletes the workspace tree. Best-effort: callers log failures and
// never let them block the response.
func (w *workspace) remove() error {
	return os.RemoveAll(w.path)
}
