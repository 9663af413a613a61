package labels

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Vertex is a normalized polygon coordinate in [0,1].
type Vertex struct {
	X, Y float64
}

// Instance is one polygon of one class.
type Instance struct {
	Class  int
	Points []Vertex
}

// Format renders the instance as a label line without the trailing newline.
func (in Instance) Format() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(in.Class))
	for _, p := range in.Points {
		b.WriteByte(' ')
		b.WriteString(formatCoord(p.X))
		b.WriteByte(' ')
		b.WriteString(formatCoord(p.Y))
	}
	return b.String()
}

// formatCoord rounds to six decimals and always keeps a fractional part, so
// 0 is written as 0.0 and 1 as 1.0.
func formatCoord(v float64) string {
	v = math.Round(v*1e6) / 1e6
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// ParseLine decodes a single label line.
func ParseLine(line string) (Instance, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Instance{}, fmt.Errorf("empty label line")
	}
	class, err := strconv.Atoi(fields[0])
	if err != nil {
		return Instance{}, fmt.Errorf("class index %q: %w", fields[0], err)
	}
	coords := fields[1:]
	if len(coords)%2 != 0 {
		return Instance{}, fmt.Errorf("odd coordinate count %d", len(coords))
	}
	in := Instance{Class: class, Points: make([]Vertex, 0, len(coords)/2)}
	for i := 0; i < len(coords); i += 2 {
		x, err := strconv.ParseFloat(coords[i], 64)
		if err != nil {
			return Instance{}, fmt.Errorf("x coordinate %q: %w", coords[i], err)
		}
		y, err := strconv.ParseFloat(coords[i+1], 64)
		if err != nil {
			return Instance{}, fmt.Errorf("y coordinate %q: %w", coords[i+1], err)
		}
		in.Points = append(in.Points, Vertex{X: x, Y: y})
	}
	return in, nil
}

// ParseFile reads every instance of a label file. Blank lines are ignored.
func ParseFile(path string) ([]Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels %s: %w", path, err)
	}
	defer f.Close()

	var instances []Instance
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		in, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		instances = append(instances, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels %s: %w", path, err)
	}
	return instances, nil
}
