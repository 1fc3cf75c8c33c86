// SPDX-License-Identifier: MPL-2.0

package aggregator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yamlbook/yamlbook/internal/book"
)

// defaultArtifactPerm is used when no artifact exists yet.
const defaultArtifactPerm fs.FileMode = 0o644

// Serialize encodes b as JSON and replaces the file at outputPath with it.
// The parent directory must already exist. The payload is written to a
// temporary file next to outputPath and renamed into place, so a failed
// write leaves any previous artifact untouched.
func (a *Aggregator) Serialize(b *book.Book, outputPath string) error {
	data, err := json.Marshal(b)
	if err != nil {
		return ioError("encode", outputPath, err)
	}
	if err := writeFileAtomic(outputPath, data); err != nil {
		return ioError("write", outputPath, err)
	}
	a.logger.Debug("wrote book", "path", outputPath, "groups", b.Len(), "bytes", len(data))
	return nil
}

// ReadBook loads a previously serialized artifact.
func ReadBook(path string) (*book.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError("read", path, err)
	}
	b := book.New()
	if err := json.Unmarshal(data, b); err != nil {
		return nil, parseError(path, err)
	}
	return b, nil
}

// RemoveArtifact deletes the artifact at path. A missing artifact is not an
// error; the returned bool reports whether a file was removed.
func RemoveArtifact(path string) (bool, error) {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, ioError("remove", path, err)
	}
	return true, nil
}

func writeFileAtomic(dest string, data []byte) (err error) {
	perm := defaultArtifactPerm
	if info, statErr := os.Stat(dest); statErr == nil {
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", dest)
		}
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		return err
	}
	syncDir(dir)
	return nil
}

// syncDir flushes directory metadata so the rename survives a crash. It is
// best effort; some platforms cannot sync directories.
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = f.Sync()
	_ = f.Close()
}
