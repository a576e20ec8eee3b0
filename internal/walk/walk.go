// Package walk discovers candidate source files under a project root. The
// result is deterministic: sorted by relative path, independent of the
// order the filesystem returns entries in.
package walk

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// File is one discovered source file.
type File struct {
	RelPath string // project-relative path with forward slashes
	AbsPath string // absolute filesystem path
	Size    int64
}

// Options filters the walk.
type Options struct {
	Extensions     []string // lowercase, with dot; empty means any
	Exclude        []string // exact base names to skip (dirs and files)
	MaxFileBytes   int64    // 0 = no limit
	UseGitignore   bool     // honor <root>/.gitignore
	FollowSymlinks bool
}

type walker struct {
	opt      Options
	root     string
	exts     map[string]struct{}
	patterns []gitPattern
	files    []File
}

// Collect walks root and returns the files passing opt.
func Collect(root string, opt Options) ([]File, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	w := &walker{opt: opt, root: abs, exts: make(map[string]struct{}, len(opt.Extensions))}
	for _, e := range opt.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		w.exts[e] = struct{}{}
	}
	if opt.UseGitignore {
		// a missing .gitignore is not an error
		w.patterns, _ = parseGitignore(filepath.Join(abs, ".gitignore"))
	}
	if err := filepath.WalkDir(abs, w.visit); err != nil {
		return nil, err
	}
	sort.Slice(w.files, func(i, j int) bool { return w.files[i].RelPath < w.files[j].RelPath })
	return w.files, nil
}

func (w *walker) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return nil
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return nil
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return nil
	}
	if w.skipped(rel, d) {
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	}
	symlink := d.Type()&fs.ModeSymlink != 0
	if d.IsDir() || (symlink && !w.opt.FollowSymlinks) {
		return nil
	}
	info, err := d.Info()
	if symlink {
		info, err = statFollow(path)
	}
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	if w.opt.MaxFileBytes > 0 && info.Size() > w.opt.MaxFileBytes {
		return nil
	}
	if len(w.exts) > 0 {
		if _, ok := w.exts[strings.ToLower(filepath.Ext(rel))]; !ok {
			return nil
		}
	}
	w.files = append(w.files, File{RelPath: rel, AbsPath: path, Size: info.Size()})
	return nil
}

func (w *walker) skipped(rel string, d fs.DirEntry) bool {
	base := filepath.Base(rel)
	for _, ex := range w.opt.Exclude {
		if ex != "" && base == ex {
			return true
		}
	}
	return w.opt.UseGitignore && matchGitignore(w.patterns, rel, d.IsDir())
}
