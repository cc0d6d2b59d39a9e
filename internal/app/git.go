package app

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// gitFileAt reads the content of path as it existed at rev in the enclosing
// git repository. It returns the bytes and the file extension, which the
// loader needs to pick a codec.
func gitFileAt(path, rev string) ([]byte, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}

	repo, err := git.PlainOpenWithOptions(filepath.Dir(abs), &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("no git repository around %s: %w", path, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, "", err
	}
	rel, err := filepath.Rel(wt.Filesystem.Root(), abs)
	if err != nil {
		return nil, "", err
	}
	rel = filepath.ToSlash(rel)

	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, "", fmt.Errorf("cannot resolve revision %q: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, "", err
	}
	file, err := commit.File(rel)
	if err != nil {
		return nil, "", fmt.Errorf("%s not found at %s: %w", rel, rev, err)
	}
	content, err := file.Contents()
	if err != nil {
		return nil, "", err
	}
	return []byte(content), filepath.Ext(rel), nil
}
