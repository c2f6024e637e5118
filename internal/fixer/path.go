package fixer

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"dynconf/internal/policy"
	"dynconf/internal/schema"
)

// fixPath normalizes a filesystem path and runs the configured checks.
func fixPath(original any, pf *schema.PathFormat, p policy.Effective, env Env) Outcome {
	if p.Path == policy.PathBypass {
		return bypassed(original)
	}

	s, ok := original.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return failed(original, coercion("%v is not a path", original))
	}

	path, err := normalizePath(strings.TrimSpace(s), pf)
	if err != nil {
		return failed(original, coercion("%s: %v", s, err))
	}

	if len(pf.AllowedExtensions) > 0 {
		ext := strings.ToLower(filepath.Ext(path))
		if !slices.ContainsFunc(pf.AllowedExtensions, func(e string) bool { return strings.ToLower(e) == ext }) {
			return rejected(original, violation("extension %q is not one of %v", ext, pf.AllowedExtensions))
		}
	}

	if !pf.MustExist && pf.PathType == schema.PathAny {
		return settle(original, path)
	}

	info, err := env.stat(path)

	switch {
	case err != nil && pf.MustExist:
		return rejected(original, violation("%s does not exist", path))
	case err == nil && pf.PathType == schema.PathFile && info.IsDir():
		return rejected(original, violation("%s is a directory, not a file", path))
	case err == nil && pf.PathType == schema.PathDir && !info.IsDir():
		return rejected(original, violation("%s is not a directory", path))
	}

	return settle(original, path)
}

func normalizePath(s string, pf *schema.PathFormat) (string, error) {
	var err error

	if pf.ExpandUser {
		if s, err = expandUser(s); err != nil {
			return "", err
		}
	}

	if pf.BaseDir != "" && !filepath.IsAbs(s) {
		base := pf.BaseDir
		if pf.ExpandUser {
			if base, err = expandUser(base); err != nil {
				return "", err
			}
		}

		s = filepath.Join(base, s)
	}

	if pf.Resolve {
		return filepath.Abs(s)
	}

	return filepath.Clean(s), nil
}

func expandUser(s string) (string, error) {
	if s != "~" && !strings.HasPrefix(s, "~/") {
		return s, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, strings.TrimPrefix(s, "~")), nil
}
