package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	xos "github.com/slidecast/slidecast/pkg/os"
)

// assemble concatenates the session's segments, in emission order, into a
// single file under dir. Segments are consecutive slices of one container
// stream, so plain concatenation restores it exactly.
func assemble(dir, title, ext string, chunks [][]byte) (string, error) {
	if err := xos.CheckCreateDir(dir); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s.%s", SanitizeTitle(title), time.Now().Format("2006-01-02"), ext)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	for _, c := range chunks {
		if _, err = f.Write(c); err != nil {
			_ = f.Close()
			return "", err
		}
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// SanitizeTitle makes a recording title safe for use as a file name.
func SanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "recording"
	}
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "recording"
	}
	return b.String()
}
