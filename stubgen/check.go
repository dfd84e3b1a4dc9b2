package stubgen

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/callgen/errors"
)

// CheckResult holds the result of comparing generated output with disk.
type CheckResult struct {
	UpToDate bool
	// Differences lists changed files; Missing lists files not on disk.
	Differences []string
	Missing     []string
}

// CompareFiles compares freshly rendered files with what is in dir.
// Generator version lines are ignored so a tool upgrade alone does not
// report drift.
func CompareFiles(dir string, files []File) (*CheckResult, error) {
	result := &CheckResult{}
	for _, f := range files {
		existing, err := os.ReadFile(filepath.Join(dir, f.Path))
		if os.IsNotExist(err) {
			result.Missing = append(result.Missing, f.Path)
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", f.Path)
		}
		if contentDiffers(f.Content, existing) {
			result.Differences = append(result.Differences, f.Path)
		}
	}
	sort.Strings(result.Differences)
	sort.Strings(result.Missing)
	result.UpToDate = len(result.Differences) == 0 && len(result.Missing) == 0
	return result, nil
}

func contentDiffers(a, b []byte) bool {
	if bytes.Equal(a, b) {
		return false
	}
	fa, errA := filterMetadataLines(a)
	fb, errB := filterMetadataLines(b)
	if errA != nil || errB != nil {
		return true
	}
	return fa != fb
}

// metadataPrefixes mark header lines that change with the tool, not the
// descriptor.
var metadataPrefixes = []string{
	"// Generator version:",
	"<!-- Generator version:",
	"generator_version =",
}

func filterMetadataLines(content []byte) (string, error) {
	var result strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		skip := false
		for _, p := range metadataPrefixes {
			if strings.HasPrefix(trimmed, p) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		result.WriteString(line)
		result.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return result.String(), nil
}
