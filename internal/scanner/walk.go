package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// compileExcludes turns exclude globs into matchers. Unlike filepath.Match,
// a "*" here crosses path separators, so patterns like "*/ZZ_Private/*"
// exclude a subtree wherever it appears.
func compileExcludes(globs []string) []*regexp.Regexp {
	matchers := make([]*regexp.Regexp, 0, len(globs))
	for _, glob := range globs {
		var b strings.Builder
		b.WriteString("^")
		for _, r := range glob {
			switch r {
			case '*':
				b.WriteString(".*")
			case '?':
				b.WriteString(".")
			default:
				b.WriteString(regexp.QuoteMeta(string(r)))
			}
		}
		b.WriteString("$")
		matchers = append(matchers, regexp.MustCompile(b.String()))
	}
	return matchers
}

// excluded matches the directory path both bare and slash-terminated, so a
// trailing "/*" in a pattern still catches the directory itself.
func excluded(dir string, matchers []*regexp.Regexp) bool {
	for _, m := range matchers {
		if m.MatchString(dir) || m.MatchString(dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// directories lists the directories to scan: the root itself plus, when
// recursive, every non-excluded subdirectory. Excluded directories are
// pruned, nothing beneath them is visited. Order is lexical so runs are
// deterministic.
func directories(root string, recursive bool, matchers []*regexp.Regexp) ([]string, error) {
	if excluded(root, matchers) {
		return nil, nil
	}
	if !recursive {
		return []string{root}, nil
	}

	var dirs []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && excluded(path, matchers) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(dirs)
	return dirs, nil
}
