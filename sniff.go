package tabl

import (
	"strings"

	"github.com/shapestone/tabl/internal/cell"
)

// SniffDelimiter guesses a sample's field delimiter among comma, tab,
// semicolon, and pipe. For each candidate it builds a histogram of how many
// times the delimiter occurs on each non-blank line, then scores the
// candidate by (most common count) * (fraction of lines carrying that
// count): a delimiter that splits every line into the same number of
// fields scores at its full field count, while one that only sometimes
// applies is discounted in proportion to how rarely it's consistent,
// rather than by a fixed all-or-nothing bonus.
func SniffDelimiter(sample string) byte {
	candidates := []byte{',', '\t', ';', '|'}
	lines := nonBlankLines(sample)
	if len(lines) == 0 {
		return ','
	}

	best := byte(',')
	bestScore := 0.0
	for _, delim := range candidates {
		mode, frac := delimiterConsistency(lines, delim)
		if mode == 0 {
			continue
		}
		score := float64(mode) * frac
		if score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// delimiterConsistency returns the most frequent per-line occurrence count
// of delim across lines, and the fraction of lines that hit that count.
func delimiterConsistency(lines []string, delim byte) (mode int, frac float64) {
	tally := make(map[int]int)
	for _, line := range lines {
		tally[countDelimiter(line, delim)]++
	}
	var modeCount int
	for count, n := range tally {
		if n > modeCount || (n == modeCount && count > mode) {
			mode, modeCount = count, n
		}
	}
	return mode, float64(modeCount) / float64(len(lines))
}

func countDelimiter(line string, delim byte) int {
	count := 0
	inQuotes := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case delim:
			if !inQuotes {
				count++
			}
		}
	}
	return count
}

func nonBlankLines(sample string) []string {
	var out []string
	for _, line := range strings.Split(sample, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// SniffHasHeader guesses whether a sample's first line is a header by
// reusing this package's own type extractors instead of a hand-written
// regex classifier: it counts how many fields on the first non-blank line
// parse as int64, float64, or bool (via internal/cell, the same extractors
// Parse itself runs), and compares that against the same count on the
// second non-blank line. A header row is overwhelmingly less "typed" than
// a data row would be, so a first line with any lower typed fraction than
// the second is reported as a header.
func SniffHasHeader(sample string) bool {
	lines := nonBlankLines(sample)
	if len(lines) < 2 {
		return false
	}
	delim := SniffDelimiter(sample)
	first := splitByByte(lines[0], delim)
	second := splitByByte(lines[1], delim)
	if len(first) == 0 || len(second) == 0 {
		return false
	}

	firstTyped := typedFraction(first)
	secondTyped := typedFraction(second)
	return firstTyped < secondTyped
}

// typedFraction reports what fraction of fields would materialize as a
// non-string Kind under this package's own extractors.
func typedFraction(fields []string) float64 {
	if len(fields) == 0 {
		return 0
	}
	naSet := cell.DefaultNASet()
	trueSet, falseSet := cell.DefaultTrueSet(), cell.DefaultFalseSet()
	typed := 0
	for _, f := range fields {
		f = strings.TrimSpace(f)
		data := []byte(f)
		if len(data) == 0 {
			continue
		}
		if _, ok, missing := cell.Int64(data, 0, len(data)-1, naSet); ok && !missing {
			typed++
			continue
		}
		if _, ok, missing := cell.Float64(data, 0, len(data)-1, naSet); ok && !missing {
			typed++
			continue
		}
		if _, ok, missing := cell.Bool(data, 0, len(data)-1, naSet, trueSet, falseSet); ok && !missing {
			typed++
		}
	}
	return float64(typed) / float64(len(fields))
}

func splitByByte(line string, delim byte) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			inQuotes = !inQuotes
			current.WriteByte(ch)
		case ch == delim && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	fields = append(fields, current.String())
	return fields
}
