package walk

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

type gitPattern struct {
	neg     bool // leading '!'
	dirOnly bool // trailing '/'
	rx      *regexp.Regexp
}

// parseGitignore compiles the subset of .gitignore syntax we honor:
// comments, '!' negation, leading '/' anchoring, trailing '/' for
// directories, '**' across directories, '*' and '?' within one segment.
func parseGitignore(path string) ([]gitPattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []gitPattern
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var p gitPattern
		if rest, ok := strings.CutPrefix(line, "!"); ok {
			p.neg = true
			line = strings.TrimSpace(rest)
		}
		line, p.dirOnly = strings.CutSuffix(line, "/")
		line, anchored := strings.CutPrefix(line, "/")
		if line == "" {
			continue
		}
		p.rx = globRegexp(line, anchored)
		out = append(out, p)
	}
	return out, sc.Err()
}

func globRegexp(glob string, anchored bool) *regexp.Regexp {
	esc := regexp.QuoteMeta(glob)
	esc = strings.ReplaceAll(esc, `\*\*`, "\x00")
	esc = strings.ReplaceAll(esc, `\*`, "[^/]*")
	esc = strings.ReplaceAll(esc, `\?`, "[^/]")
	esc = strings.ReplaceAll(esc, "\x00", ".*")
	if anchored {
		return regexp.MustCompile("^" + esc + "$")
	}
	return regexp.MustCompile("(^|.*/)" + esc + "$")
}

// matchGitignore applies patterns in order; the last match wins.
func matchGitignore(pats []gitPattern, rel string, isDir bool) bool {
	ignored := false
	for _, p := range pats {
		if p.dirOnly && !isDir {
			continue
		}
		if p.rx.MatchString(rel) {
			ignored = !p.neg
		}
	}
	return ignored
}

func statFollow(path string) (os.FileInfo, error) { return os.Stat(path) }
