package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Stats prints Go lines of code, documentation word counts, test and package
// counts, and the size of the YAML scripts as one JSON record.
func Stats() error {
	var prodLines, testLines, testFuncs, scripts, scriptSteps int
	packages := map[string]bool{}

	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path == "vendor" || path == ".git" || path == binaryDir || strings.HasPrefix(path, "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".yaml") {
			steps, countErr := countMatching(path, scriptStepPrefix)
			if countErr == nil && steps > 0 {
				scripts++
				scriptSteps += steps
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasPrefix(path, "magefiles") {
			return nil
		}
		count, countErr := countLines(path)
		if countErr != nil {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") {
			testLines += count
			if n, err := countMatching(path, "func Test"); err == nil {
				testFuncs += n
			}
		} else {
			prodLines += count
			packages[filepath.Dir(path)] = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	docWords, err := countWordsInGlob("*.md")
	if err != nil {
		return err
	}

	record := map[string]int{
		"go_loc_prod":  prodLines,
		"go_loc_test":  testLines,
		"go_loc":       prodLines + testLines,
		"doc_wc":       docWords,
		"packages":     len(packages),
		"test_funcs":   testFuncs,
		"scripts":      scripts,
		"script_steps": scriptSteps,
	}
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

// scriptStepPrefix starts every step line of a flow-style script.
const scriptStepPrefix = "- {op:"

// countMatching counts the lines of path that start with prefix after
// leading whitespace.
func countMatching(path, prefix string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if strings.HasPrefix(strings.TrimSpace(scanner.Text()), prefix) {
			count++
		}
	}
	return count, scanner.Err()
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}

func countWordsInGlob(pattern string) (int, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		inWord := false
		for _, r := range string(data) {
			if unicode.IsSpace(r) {
				inWord = false
			} else if !inWord {
				inWord = true
				total++
			}
		}
	}
	return total, nil
}
