package fetch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/sirupsen/logrus"

	"github.com/flarebyte/seshat-toolkit/internal/paths"
	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

// Fetcher materializes resolved toolbox content under the private root. A
// toolbox already present under the shared root is never fetched: the shared
// root acts as a read-through cache with absolute precedence.
type Fetcher struct {
	SharedRoot  string
	PrivateRoot string
	Update      bool
	Log         *logrus.Entry
}

// Fetch ensures content for one record and writes the outcome back onto it.
// Failures are recorded on the record, never returned.
func (f *Fetcher) Fetch(rec *toolbox.Record) {
	if rec.Failed() {
		return
	}
	if f.SharedRoot != "" {
		// Same candidate the placement resolver checks, so a shared hit
		// here is guaranteed to be found again at placement time.
		shared := paths.Candidate(f.SharedRoot, *rec)
		if dirExists(shared) {
			rec.Message = "using shared copy"
			f.logf(rec, "using shared copy at %s", shared)
			return
		}
	}
	target := filepath.Join(f.PrivateRoot, rec.Name)
	switch {
	case rec.Source == "":
		if dirExists(target) {
			rec.Message = "already present"
			return
		}
		rec.Fail(toolbox.StatusFetchFailed, "no source and no local content")
	case isGitSource(rec.Source):
		f.fetchGit(rec, target)
	default:
		f.fetchLocal(rec, target)
	}
	if rec.Failed() {
		f.logf(rec, "fetch failed: %s", rec.Message)
	}
}

func (f *Fetcher) fetchGit(rec *toolbox.Record, target string) {
	if dirExists(target) {
		if !f.Update {
			rec.Message = "already present"
			return
		}
		repo, err := git.PlainOpen(target)
		if err != nil {
			rec.Fail(toolbox.StatusFetchFailed, fmt.Sprintf("open %s: %v", target, err))
			return
		}
		wt, err := repo.Worktree()
		if err != nil {
			rec.Fail(toolbox.StatusFetchFailed, fmt.Sprintf("open %s: %v", target, err))
			return
		}
		if err := wt.Pull(&git.PullOptions{}); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			rec.Fail(toolbox.StatusFetchFailed, fmt.Sprintf("pull %s: %v", rec.Source, err))
			return
		}
		rec.Message = "updated"
		f.logf(rec, "updated from %s", rec.Source)
		return
	}
	if _, err := git.PlainClone(target, false, &git.CloneOptions{URL: rec.Source, Depth: 1}); err != nil {
		rec.Fail(toolbox.StatusFetchFailed, fmt.Sprintf("clone %s: %v", rec.Source, err))
		return
	}
	rec.Message = "cloned"
	f.logf(rec, "cloned from %s", rec.Source)
}

func (f *Fetcher) fetchLocal(rec *toolbox.Record, target string) {
	if !dirExists(rec.Source) {
		rec.Fail(toolbox.StatusFetchFailed, fmt.Sprintf("source not found: %s", rec.Source))
		return
	}
	if dirExists(target) && !f.Update {
		rec.Message = "already present"
		return
	}
	if err := copyTree(rec.Source, target); err != nil {
		rec.Fail(toolbox.StatusFetchFailed, fmt.Sprintf("copy %s: %v", rec.Source, err))
		return
	}
	rec.Message = "copied"
	f.logf(rec, "copied from %s", rec.Source)
}

func (f *Fetcher) logf(rec *toolbox.Record, format string, args ...any) {
	if f.Log != nil {
		f.Log.WithField("toolbox", rec.Name).Infof(format, args...)
	}
}

func isGitSource(source string) bool {
	for _, prefix := range []string{"http://", "https://", "git@", "ssh://", "file://"} {
		if strings.HasPrefix(source, prefix) {
			return true
		}
	}
	return strings.HasSuffix(source, ".git")
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(out, b, 0o644)
	})
}
