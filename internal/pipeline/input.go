package pipeline

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathan/outline-ranker/internal/types"
)

// DefaultPDFDir is the directory, relative to a collection input file, that holds its PDFs
const DefaultPDFDir = "PDFs"

// LoadCollectionInput reads a collection input file. Missing persona or task
// fields become empty strings. PDFs are resolved under pdfDir next to the file.
func LoadCollectionInput(path, pdfDir string) (*types.CollectionInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection input: %w", err)
	}

	var input types.CollectionInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse collection input %s: %w", path, err)
	}

	if pdfDir == "" {
		pdfDir = DefaultPDFDir
	}
	input.InputPath = path
	input.DocumentsDir = filepath.Join(filepath.Dir(path), pdfDir)
	return &input, nil
}

// DiscoverCollections returns root itself when it is a file, otherwise every
// file named inputName beneath it in lexical order.
func DiscoverCollections(root, inputName string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var found []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == inputName {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(found)
	return found, nil
}

// OutputPath names a collection's result file after its directory and places it alongside the input
func OutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	name := filepath.Base(dir)
	if name == "." || name == string(filepath.Separator) {
		name = "collection"
	}
	return filepath.Join(dir, name+"_output.json")
}

// DiscoverPDFs returns root itself when it is a file, otherwise every .pdf
// file beneath it in lexical order.
func DiscoverPDFs(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var found []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(found)
	return found, nil
}

// OutlinePath is where the outline of pdfPath is written inside outDir
func OutlinePath(outDir, pdfPath string) string {
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return filepath.Join(outDir, stem+".json")
}
