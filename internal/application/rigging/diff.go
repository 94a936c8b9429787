package rigging

import (
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/ncomes/MechanicalArt-sub001/internal/infrastructure/yamlstore"
)

// Diff compares two rig documents line by line. Both are loaded and
// re-marshaled first so formatting differences do not show up.
func Diff(a, b string) ([]diffmatchpatch.Diff, error) {
	left, err := normalized(a)
	if err != nil {
		return nil, err
	}
	right, err := normalized(b)
	if err != nil {
		return nil, err
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(left, right)
	diffs := dmp.DiffMain(ca, cb, false)
	return dmp.DiffCharsToLines(diffs, lines), nil
}

// Changed reports whether diffs holds any insertion or deletion.
func Changed(diffs []diffmatchpatch.Diff) bool {
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffEqual {
			return true
		}
	}
	return false
}

func normalized(path string) (string, error) {
	doc, err := yamlstore.Load(path)
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", path, err)
	}
	data, err := yamlstore.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
