package sweeper

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"github.com/natefinch/atomic"
)

// moveFile renames src to dst, replacing dst if it exists. Regular files are
// copied and then removed when src and dst sit on different filesystems.
func moveFile(src, dst string, info fs.FileInfo) error {
	err := atomic.ReplaceFile(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) || !info.Mode().IsRegular() {
		return err
	}
	return copyAcross(src, dst, info)
}

// copyAcross writes src to dst atomically, keeps its mode and modification
// time, then removes src. If src cannot be removed it stays in place and the
// error is returned.
func copyAcross(src, dst string, info fs.FileInfo) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}

	err = atomic.WriteFile(dst, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("copy across filesystems: %w", err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return err
	}

	return os.Remove(src)
}
