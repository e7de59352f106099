package naming

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"mediapass/config"
)

// ErrCollision is returned when an output path would overwrite an input
// or another output of the same batch.
var ErrCollision = errors.New("output path collision")

// OutputPath builds the output file path for in.
//
//	flat:     <dir>/<prefix><stem><suffix>.<ext>
//	mirrored: <dir>/<path under root>/<prefix><stem><suffix>.<ext>
//	default:  <input dir>/<prefix><stem><suffix>.<ext>
func OutputPath(out config.OutputConfig, in Input) string {
	dir := filepath.Dir(in.Path)
	if out.Directory != "" {
		dir = filepath.Join(out.Directory, in.RelDir())
	}

	base := filepath.Base(in.Path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if out.Extension != "" {
		ext = "." + strings.TrimPrefix(out.Extension, ".")
	}

	return filepath.Join(dir, out.Prefix+stem+out.Suffix+ext)
}

// CheckCollisions verifies that no output equals any input of the batch
// and that no two inputs share an output. outputs[i] belongs to inputs[i].
// Paths are compared cleaned, absolute and NFC-normalized so differently
// composed Unicode names cannot slip past.
func CheckCollisions(inputs []Input, outputs []string) error {
	if len(inputs) != len(outputs) {
		return fmt.Errorf("collision check: %d inputs but %d outputs", len(inputs), len(outputs))
	}

	sources := make(map[string]string, len(inputs))
	for _, in := range inputs {
		key, err := pathKey(in.Path)
		if err != nil {
			return err
		}
		sources[key] = in.Path
	}

	claimed := make(map[string]string, len(outputs))
	for i, out := range outputs {
		key, err := pathKey(out)
		if err != nil {
			return err
		}
		if src, ok := sources[key]; ok {
			return fmt.Errorf("%w: output %s would overwrite input %s", ErrCollision, out, src)
		}
		if owner, ok := claimed[key]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrCollision, owner, inputs[i].Path, out)
		}
		claimed[key] = inputs[i].Path
	}
	return nil
}

func pathKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return norm.NFC.String(filepath.Clean(abs)), nil
}

// EnsureDir makes sure dir exists. Missing directories are created when
// create is set; in simulate mode nothing is touched.
func EnsureDir(dir string, create, simulate bool) error {
	if simulate || dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf("output directory %s is not a directory", dir)
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("output directory %s: %w", dir, err)
	case !create:
		return fmt.Errorf("output directory %s does not exist", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
