// Package gitx detects repository changes by shelling out to git.
package gitx

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// Repo runs git commands against one working tree.
type Repo struct {
	dir string
}

// Open returns a Repo for the working tree at dir, verifying it is
// inside a git repository.
func Open(ctx context.Context, dir string) (*Repo, error) {
	r := &Repo{dir: dir}
	if _, err := r.run(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("not a git repository: %s", dir)
	}
	return r, nil
}

// Dir returns the working tree path.
func (r *Repo) Dir() string { return r.dir }

// Head returns the current commit hash.
func (r *Repo) Head(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ChangedFiles returns the paths that differ from sinceCommit, plus
// anything modified or untracked in the working tree. Paths are
// repo-relative, deduplicated, and sorted.
func (r *Repo) ChangedFiles(ctx context.Context, sinceCommit string) ([]string, error) {
	seen := make(map[string]bool)

	if sinceCommit != "" {
		out, err := r.run(ctx, "diff", "--name-only", sinceCommit, "HEAD")
		if err != nil {
			return nil, fmt.Errorf("diff since %s: %w", sinceCommit, err)
		}
		for _, line := range strings.Split(out, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				seen[unquotePath(line)] = true
			}
		}
	}

	// Uncommitted changes and untracked files.
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	for _, path := range parseStatus(out) {
		seen[path] = true
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// ListFiles returns every tracked file, for full re-indexing.
func (r *Repo) ListFiles(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "ls-files")
	if err != nil {
		return nil, fmt.Errorf("ls-files: %w", err)
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, unquotePath(line))
		}
	}
	return files, nil
}

// parseStatus extracts paths from `git status --porcelain` output.
// Renames report "old -> new"; only the new path matters for indexing.
func parseStatus(out string) []string {
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		path := strings.TrimSpace(line[3:])
		if _, after, ok := strings.Cut(path, " -> "); ok {
			path = after
		}
		path = unquotePath(path)
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

// unquotePath decodes a path git has C-quoted. Quotepath is forced off
// so non-ASCII bytes pass through raw, but git still quotes paths
// containing quotes, backslashes, or control characters.
func unquotePath(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"':
			b.WriteByte(e)
		default:
			// Git writes other bytes as three octal digits.
			if e >= '0' && e <= '7' && i+2 < len(s) {
				v := int(e-'0')<<6 | int(s[i+1]-'0')<<3 | int(s[i+2]-'0')
				b.WriteByte(byte(v))
				i += 2
			} else {
				b.WriteByte(e)
			}
		}
	}
	return b.String()
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	// Quotepath off keeps non-ASCII path bytes unescaped in output.
	cmd := exec.CommandContext(ctx, "git", append([]string{"-c", "core.quotepath=off"}, args...)...)
	cmd.Dir = r.dir
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
