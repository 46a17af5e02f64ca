package jobrun

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// DeleteJob removes a job row; if deleteFiles is true it additionally
// removes files under the job's OutputPath (validated to resolve under
// storageRoot) and any GoesFrame rows with source_job_id = id (§4.4).
func (r *Runner) DeleteJob(ctx context.Context, id string, deleteFiles bool, storageRoot string) error {
	job, err := r.Store.GetJob(ctx, id)
	if err != nil {
		return err
	}

	if deleteFiles && job.OutputPath != "" {
		if err := removeUnderRoot(storageRoot, job.OutputPath); err != nil {
			return Class.Wrap(err)
		}
		if err := r.Store.DeleteFramesByJobID(ctx, id); err != nil {
			return err
		}
	}

	return r.Store.DeleteJob(ctx, id)
}

// removeUnderRoot resolves path and root to absolute form and refuses to
// remove anything outside root, guarding against a crafted OutputPath
// escaping the storage directory (§4.4).
func removeUnderRoot(root, path string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Class.New("refusing to delete path %q outside storage root %q", path, root)
	}
	return os.RemoveAll(absPath)
}
