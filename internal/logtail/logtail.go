package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// stdLayout matches the prefix written by the standard log package with
// log.LstdFlags.
const stdLayout = "2006/01/02 15:04:05"

// Entry is a single log line. At is zero when the line carries no timestamp
// prefix (continuation lines, panics, output from other writers).
type Entry struct {
	At      time.Time
	Message string
}

// Read returns at most maxLines entries from the end of the file at path.
// A non-positive maxLines returns every line. A missing file yields no
// entries and no error.
func Read(path string, maxLines int) ([]Entry, error) {
	lines, err := readLines(path, maxLines)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}
	entries := make([]Entry, len(lines))
	for i, line := range lines {
		entries[i] = Parse(line)
	}
	return entries, nil
}

// Parse splits a line written by the standard logger into its timestamp and
// message. Lines without the prefix come back as a message with a zero At.
func Parse(line string) Entry {
	line = strings.TrimRight(line, "\r")
	if len(line) < len(stdLayout) {
		return Entry{Message: line}
	}
	at, err := time.ParseInLocation(stdLayout, line[:len(stdLayout)], time.Local)
	if err != nil {
		return Entry{Message: line}
	}
	return Entry{At: at, Message: strings.TrimSpace(line[len(stdLayout):])}
}

func readLines(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}
