package sweeper

import "fmt"

// FolderScanError means a watched folder could not be enumerated. It aborts
// the sweep it occurred in; the scheduler keeps running.
type FolderScanError struct {
	Folder string
	Err    error
}

func (e *FolderScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Folder, e.Err)
}

func (e *FolderScanError) Unwrap() error { return e.Err }

// FileOperationError is an entry-local failure. It is logged and recorded
// in the Report, never returned from Sweep.
type FileOperationError struct {
	Op     string // "stat", "delete" or "move"
	Path   string
	Target string
	Err    error
}

func (e *FileOperationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %s -> %s: %v", e.Op, e.Path, e.Target, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileOperationError) Unwrap() error { return e.Err }
