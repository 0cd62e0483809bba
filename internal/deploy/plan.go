package deploy

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Action classifies what the mirror will do with a single path.
type Action string

const (
	ActionUpload Action = "upload" // file absent on remote
	ActionUpdate Action = "update" // file differs (size or newer local mtime)
	ActionDelete Action = "delete" // remote-only path, removed in mirror mode
	ActionSkip   Action = "skip"   // unchanged
)

// Entry is one planned operation.
type Entry struct {
	RelPath string // slash-separated, relative to both roots
	Action  Action
	Size    int64
}

// Plan is the full set of operations for one mirror run, computed before any
// mutation touches the remote.
type Plan struct {
	Transfers  []Entry  // uploads and updates, lexicographic order
	Deletes    []Entry  // remote-only files, lexicographic order
	DeleteDirs []string // remote-only directories, deepest first
	Dirs       []string // local directories to ensure on remote, shallowest first
	Skipped    int
	TotalBytes int64 // bytes to transfer
}

// Empty reports whether the plan contains no mutations.
func (p *Plan) Empty() bool {
	return len(p.Transfers) == 0 && len(p.Deletes) == 0 && len(p.DeleteDirs) == 0
}

// mtimeSlack absorbs filesystems (and SFTP servers) with coarse timestamp
// granularity so an unchanged file is not re-uploaded forever.
const mtimeSlack = 2 * time.Second

// BuildPlan compares the local tree against the remote tree and returns the
// operations needed to make remote mirror local.
//
// withDelete enables removal of remote-only paths; when false the plan only
// ever adds or replaces files.
func BuildPlan(localDir string, remote Remote, remoteDir string, withDelete bool) (*Plan, error) {
	localFiles := make(map[string]os.FileInfo)
	localDirs := make(map[string]struct{})

	err := filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == localDir {
			return nil
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			localDirs[rel] = struct{}{}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		localFiles[rel] = info
		return nil
	})
	if err != nil {
		return nil, err
	}

	remoteFiles, remoteDirs, err := walkRemote(remote, remoteDir)
	if err != nil {
		return nil, err
	}

	plan := &Plan{}

	for rel, info := range localFiles {
		rinfo, exists := remoteFiles[rel]
		switch {
		case !exists:
			plan.Transfers = append(plan.Transfers, Entry{RelPath: rel, Action: ActionUpload, Size: info.Size()})
			plan.TotalBytes += info.Size()
		case changed(info, rinfo):
			plan.Transfers = append(plan.Transfers, Entry{RelPath: rel, Action: ActionUpdate, Size: info.Size()})
			plan.TotalBytes += info.Size()
		default:
			plan.Skipped++
		}
	}

	if withDelete {
		for rel := range remoteFiles {
			if _, exists := localFiles[rel]; !exists {
				plan.Deletes = append(plan.Deletes, Entry{RelPath: rel, Action: ActionDelete})
			}
		}
		for rel := range remoteDirs {
			if _, exists := localDirs[rel]; !exists {
				plan.DeleteDirs = append(plan.DeleteDirs, rel)
			}
		}
	}

	for rel := range localDirs {
		if _, exists := remoteDirs[rel]; !exists {
			plan.Dirs = append(plan.Dirs, rel)
		}
	}

	// Deterministic ordering: transfers and deletes lexicographic, dirs to
	// create shallowest first, dirs to delete deepest first.
	sort.Slice(plan.Transfers, func(i, j int) bool { return plan.Transfers[i].RelPath < plan.Transfers[j].RelPath })
	sort.Slice(plan.Deletes, func(i, j int) bool { return plan.Deletes[i].RelPath < plan.Deletes[j].RelPath })
	sort.Slice(plan.Dirs, func(i, j int) bool { return depth(plan.Dirs[i]) < depth(plan.Dirs[j]) || (depth(plan.Dirs[i]) == depth(plan.Dirs[j]) && plan.Dirs[i] < plan.Dirs[j]) })
	sort.Slice(plan.DeleteDirs, func(i, j int) bool {
		return depth(plan.DeleteDirs[i]) > depth(plan.DeleteDirs[j]) || (depth(plan.DeleteDirs[i]) == depth(plan.DeleteDirs[j]) && plan.DeleteDirs[i] < plan.DeleteDirs[j])
	})

	return plan, nil
}

// changed reports whether the local file should replace the remote one.
func changed(local, remote os.FileInfo) bool {
	if local.Size() != remote.Size() {
		return true
	}
	return local.ModTime().After(remote.ModTime().Add(mtimeSlack))
}

func depth(rel string) int {
	return strings.Count(rel, "/")
}
