// Package knowledge loads the static corpus the bot answers from: a
// memories file describing the portfolio owner and a personality file
// setting the response tone.
package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	memoriesFile    = "memories.md"
	personalityFile = "personality.md"
)

// Base is the static knowledge corpus, read once at process start.
type Base struct {
	Memories    string
	Personality string
}

// LoadBase reads the corpus files from dir.
func LoadBase(dir string) (*Base, error) {
	memories, err := readFile(filepath.Join(dir, memoriesFile))
	if err != nil {
		return nil, err
	}
	personality, err := readFile(filepath.Join(dir, personalityFile))
	if err != nil {
		return nil, err
	}
	return &Base{Memories: memories, Personality: personality}, nil
}

// Fragments splits corpus text into the units that get embedded, one
// per blank-line-separated paragraph.
func Fragments(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load knowledge file: %w", err)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return "", fmt.Errorf("knowledge file %s is empty", path)
	}
	return s, nil
}
