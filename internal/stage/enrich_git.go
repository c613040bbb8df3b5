package stage

import (
	"fmt"
	"path"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
)

// EnrichGit annotates each record with git metadata: whether the file
// is tracked in HEAD, and the HEAD commit hash, author and time for
// tracked files. The repository is discovered upward from the envelope
// root; a missing repository is a hard error.
type EnrichGit struct{}

func (*EnrichGit) StageName() string { return "enrich-git" }

func (s *EnrichGit) Run(env *Envelope) error {
	absRoot, err := filepath.Abs(env.Root())
	if err != nil {
		return fmt.Errorf("enrich-git: %v", err)
	}
	repo, err := git.PlainOpenWithOptions(absRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return fmt.Errorf("enrich-git: git repo not found at %s", absRoot)
	}
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("enrich-git: resolve HEAD: %v", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("enrich-git: commit lookup: %v", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("enrich-git: commit tree: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("enrich-git: worktree: %v", err)
	}
	prefix, err := filepath.Rel(wt.Filesystem.Root(), absRoot)
	if err != nil {
		return fmt.Errorf("enrich-git: %v", err)
	}

	for i, rec := range env.Records {
		treePath := path.Join(filepath.ToSlash(prefix), rec.Locator)
		g := &RecGit{}
		if _, err := tree.File(treePath); err == nil {
			g.Tracked = true
			g.Commit = head.Hash().String()
			g.Author = commit.Author.Name
			g.Time = commit.Author.When.UTC().Format(time.RFC3339)
		}
		env.Records[i].Git = g
	}
	return nil
}
