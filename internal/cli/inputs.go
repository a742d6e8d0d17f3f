package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// imageExts are the extensions picked up when an input is a directory.
var imageExts = []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".gif", ".webp"}

func isImage(path string) bool {
	return slices.Contains(imageExts, strings.ToLower(filepath.Ext(path)))
}

// expandInputs replaces each directory argument with the image files it
// directly contains, sorted by name. File arguments are kept as given.
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", arg, err)
		}
		if !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read input dir %s: %w", arg, err)
		}
		for _, e := range entries {
			if !e.IsDir() && isImage(e.Name()) {
				inputs = append(inputs, filepath.Join(arg, e.Name()))
			}
		}
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no image files found in %s", strings.Join(args, ", "))
	}
	return inputs, nil
}
