package scanner

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"

	"github.com/what-go/what/pkg/types"
)

type dirItem struct {
	path  string
	depth int
}

// walk visits every regular file under root with an explicit stack.
// Entries are resolved with Stat, so symlinks are followed; a directory
// reached twice (by device and inode) is skipped, as are dangling links
// and special files.
func (s *Session) walk(ctx context.Context, root string, out *[]types.Match) error {
	ignore := s.loadGitignore(root)
	visited := make(map[string]bool)
	stack := []dirItem{{path: root}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		info, err := s.fs.Stat(dir.path)
		if err != nil {
			if err := s.fail(&InputError{Path: dir.path, Kind: KindRead, Err: err}); err != nil {
				return err
			}
			continue
		}
		key := dirKey(dir.path, info)
		if visited[key] {
			s.log.Debugf("skipping already visited directory %s", dir.path)
			continue
		}
		visited[key] = true

		entries, err := afero.ReadDir(s.fs, dir.path)
		if err != nil {
			if err := s.fail(&InputError{Path: dir.path, Kind: KindRead, Err: err}); err != nil {
				return err
			}
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir.path, entry.Name())

			info, err := s.fs.Stat(path)
			if errors.Is(err, fs.ErrNotExist) {
				s.log.Debugf("skipping dangling entry %s", path)
				continue
			}
			if err != nil {
				if err := s.fail(&InputError{Path: path, Kind: KindRead, Err: err}); err != nil {
					return err
				}
				continue
			}

			if ignored(ignore, root, path, info.IsDir()) {
				s.log.Debugf("skipping ignored path %s", path)
				continue
			}

			if info.IsDir() {
				if s.opts.MaxDepth > 0 && dir.depth+1 > s.opts.MaxDepth {
					s.log.Debugf("skipping %s: deeper than %d", path, s.opts.MaxDepth)
					continue
				}
				stack = append(stack, dirItem{path: path, depth: dir.depth + 1})
				continue
			}
			if !info.Mode().IsRegular() {
				s.log.Debugf("skipping %s: not a regular file (%s)", path, info.Mode().Type())
				continue
			}

			if err := s.identifyFile(ctx, path, out); err != nil {
				return err
			}
		}
	}

	return nil
}

// loadGitignore compiles root/.gitignore when enabled and present.
func (s *Session) loadGitignore(root string) *gitignore.GitIgnore {
	if !s.opts.RespectGitignore {
		return nil
	}
	data, err := afero.ReadFile(s.fs, filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gitignore.CompileIgnoreLines(readLines(data)...)
}

func ignored(ignore *gitignore.GitIgnore, root, path string, isDir bool) bool {
	if ignore == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if ignore.MatchesPath(rel) {
		return true
	}
	return isDir && ignore.MatchesPath(rel+"/")
}
