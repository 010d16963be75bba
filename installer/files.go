package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StepEnsureDir creates a Step that ensures a directory exists.
// Skips if the directory already exists.
func StepEnsureDir(path string) Step {
	return Step{
		Name: fmt.Sprintf("Create %s", filepath.Base(path)),
		Kind: ActionEnsureDir,
		Action: func() StepResult {
			if DirExists(path) {
				return Skipped("already exists")
			}
			if err := os.MkdirAll(path, 0755); err != nil {
				return Failed(fmt.Errorf("create directory: %w", err))
			}
			return Success("")
		},
	}
}

// StepDeleteFile creates a Step that deletes a file.
// Skips if the file doesn't exist.
func StepDeleteFile(path string) Step {
	return Step{
		Name: fmt.Sprintf("Delete %s", filepath.Base(path)),
		Kind: ActionDeleteFile,
		Action: func() StepResult {
			if _, err := os.Stat(path); os.IsNotExist(err) {
				return Skipped("not found")
			}
			if err := os.Remove(path); err != nil {
				return Failed(err)
			}
			return Success("")
		},
	}
}

// StepCopyFile creates a Step that copies a file from src to dst.
// Creates parent directories if needed.
func StepCopyFile(src, dst string) Step {
	return Step{
		Name: fmt.Sprintf("Copy %s", filepath.Base(dst)),
		Kind: ActionCopyFile,
		Action: func() StepResult {
			if err := CopyFile(src, dst); err != nil {
				return Failed(err)
			}
			return Success("")
		},
	}
}

// CopyFile copies src to dst, creating parent directories as needed.
// The content is written to a temporary file next to dst and renamed into
// place, so dst is either the old file or a complete copy.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("copy content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("copy content: %w", err)
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("replace destination: %w", err)
	}
	return nil
}

// FileExists returns true if the file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DirExists returns true if the directory exists.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
