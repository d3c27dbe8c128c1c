package parser

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// Locate returns the 1-based lines of filePath that mention symbol. A line
// matches when it contains the symbol, or for dotted symbols when it contains
// every segment. Read failures yield an empty result.
func Locate(filePath, symbol string) []int {
	f, err := os.Open(filePath)
	if err != nil {
		return []int{}
	}
	defer f.Close()

	lines, err := LocateIn(f, symbol)
	if err != nil {
		return []int{}
	}
	return lines
}

// LocateIn applies the Locate heuristic to r.
func LocateIn(r io.Reader, symbol string) ([]int, error) {
	parts := strings.Split(symbol, ".")
	dotted := len(parts) > 1

	out := []int{}
	br := bufio.NewReader(r)
	for n := 1; ; n++ {
		line, err := br.ReadString('\n')
		if line != "" && matchesLine(line, symbol, parts, dotted) {
			out = append(out, n)
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func matchesLine(line, symbol string, parts []string, dotted bool) bool {
	if strings.Contains(line, symbol) {
		return true
	}
	if !dotted {
		return false
	}
	for _, p := range parts {
		if !strings.Contains(line, p) {
			return false
		}
	}
	return true
}
