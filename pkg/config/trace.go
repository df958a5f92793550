package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadTraceFile reads a utilization trace: one value in [0, 1] per line.
// Blank lines and lines starting with # are skipped. Values above 1 are
// read as percentages.
func ReadTraceFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file %s: %w", path, err)
	}
	defer f.Close()

	var values []float64
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("trace file %s line %d: %w", path, line, err)
		}
		if v > 1 {
			v /= 100
		}
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("trace file %s line %d: value %f outside [0, 1]", path, line, v)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace file %s: %w", path, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("trace file %s is empty", path)
	}
	return values, nil
}
