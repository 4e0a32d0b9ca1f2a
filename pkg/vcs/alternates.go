package vcs

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// AlternatesPath is the location of the alternates file within a repository metadata directory
func AlternatesPath(gitDir string) string {
	return filepath.Join(gitDir, "objects", "info", "alternates")
}

// AddAlternate registers objectsDir as an object alternate of the repository metadata
// directory gitDir, so objects already present in objectsDir are not duplicated.
//
// The alternates file is appended to, unless objectsDir is already listed.
func AddAlternate(fs afero.Fs, gitDir, objectsDir string) error {
	path := AlternatesPath(gitDir)
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ErrAlternate.Wrap(err)
	}

	existing, err := afero.ReadFile(fs, path)
	if err != nil && !os.IsNotExist(err) {
		return ErrAlternate.Wrap(err)
	}
	for _, line := range Alternates(existing) {
		if filepath.Clean(line) == filepath.Clean(objectsDir) {
			return nil
		}
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && !bytes.HasSuffix(existing, []byte("\n")) {
		buf.WriteByte('\n')
	}
	buf.WriteString(objectsDir)
	buf.WriteByte('\n')

	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return ErrAlternate.Wrap(err)
	}
	return nil
}

// Alternates parses the content of an alternates file
func Alternates(content []byte) []string {
	var out []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
