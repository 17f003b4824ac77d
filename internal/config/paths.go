package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// expandPath expands $VAR references and a leading ~ in p.
// On Windows %VAR% references and a ~\ prefix are expanded as well.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		expanded = expandWindowsEnv(expanded)
	}

	rest, ok := cutHome(expanded)
	if !ok {
		return expanded
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return expanded
	}
	return filepath.Join(home, rest)
}

// cutHome strips a "~" or "~/" prefix and reports whether one was present.
func cutHome(p string) (string, bool) {
	if p == "~" {
		return "", true
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return rest, true
	}
	if runtime.GOOS == "windows" {
		return strings.CutPrefix(p, `~\`)
	}
	return p, false
}

// expandWindowsEnv replaces %VAR% with the variable's value. Unknown
// variables and a lone %% are left as written.
func expandWindowsEnv(p string) string {
	var b strings.Builder
	for {
		start := strings.IndexByte(p, '%')
		if start < 0 {
			break
		}
		end := strings.IndexByte(p[start+1:], '%')
		if end < 0 {
			break
		}
		end += start + 1

		b.WriteString(p[:start])
		key := p[start+1 : end]
		if val, ok := os.LookupEnv(key); ok && key != "" {
			b.WriteString(val)
			p = p[end+1:]
			continue
		}
		// Keep the opening % and rescan from the closing one.
		b.WriteByte('%')
		b.WriteString(key)
		p = p[end:]
	}
	b.WriteString(p)
	return b.String()
}
