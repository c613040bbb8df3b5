package stage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Discover walks a directory tree and fills the envelope with one
// record per matching file. Locators are slash-separated paths relative
// to the root, sorted for deterministic output. Unless noGitignore is
// set, .gitignore files found along the walk are honored.
type Discover struct {
	Root        string `yaml:"root"`
	Extension   string `yaml:"extension"`
	NoGitignore bool   `yaml:"noGitignore"`
}

func (*Discover) StageName() string { return "discover" }

func (s *Discover) Run(env *Envelope) error {
	root := s.Root
	if root == "" {
		root = env.Root()
	}
	ext := s.Extension
	if ext == "" {
		ext = ".yaml"
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("discover: %v", err)
	}

	var patterns []gitignore.Pattern
	var locators []string
	walkErr := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		posix := filepath.ToSlash(rel)
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if !s.NoGitignore {
				patterns = append(patterns, readGitignore(p, domainFor(posix))...)
				if rel != "." && ignored(patterns, posix, true) {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		if !s.NoGitignore && ignored(patterns, posix, false) {
			return nil
		}
		locators = append(locators, posix)
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("discover: %v", walkErr)
	}

	sort.Strings(locators)
	env.SetRoot(root)
	env.Records = make([]Record, 0, len(locators))
	for _, l := range locators {
		env.Records = append(env.Records, Record{Locator: l})
	}
	return nil
}

// domainFor converts a slash-relative directory into a gitignore domain.
func domainFor(posix string) []string {
	if posix == "." || posix == "" {
		return nil
	}
	return strings.Split(posix, "/")
}

// readGitignore parses the .gitignore in dir, if any.
func readGitignore(dir string, domain []string) []gitignore.Pattern {
	b, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return nil
	}
	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, domain))
	}
	return patterns
}

func ignored(patterns []gitignore.Pattern, posix string, isDir bool) bool {
	if len(patterns) == 0 {
		return false
	}
	return gitignore.NewMatcher(patterns).Match(strings.Split(posix, "/"), isDir)
}
