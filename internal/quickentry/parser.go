package quickentry

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxQuantity bounds a typed quantity before it reaches the order model.
const MaxQuantity = 999

// ParsedTicket is the result of parsing a typed ticket, one item per line.
type ParsedTicket struct {
	Lines    []ParsedLine
	Warnings []string // Lines that failed to parse
}

// ParsedLine is a single ticket line such as "2x burger - no onions".
type ParsedLine struct {
	RawText      string
	Description  string
	Quantity     int
	Instructions string
}

// Words that start the instructions part of a line when no " - " or
// parentheses are used.
var instructionWords = map[string]bool{
	"no": true, "extra": true, "without": true, "add": true,
	"light": true, "less": true, "more": true, "side": true,
}

// ParseTicket parses a typed ticket. Blank lines and lines starting with '#'
// are ignored; lines that cannot be parsed are reported in Warnings.
func ParseTicket(text string) (*ParsedTicket, error) {
	var lines []ParsedLine
	var warnings []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parsed, err := parseLine(line)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipped %q: %v", line, err))
			continue
		}
		lines = append(lines, *parsed)
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("no items found in ticket")
	}
	return &ParsedTicket{Lines: lines, Warnings: warnings}, nil
}

func parseLine(line string) (*ParsedLine, error) {
	body, instructions := splitInstructions(line)

	tokens := strings.Fields(strings.ToLower(body))
	qty := 1
	qtyFound := false
	var descTokens []string
	for i, tok := range tokens {
		if !qtyFound {
			q, ok, err := parseQuantityToken(tok)
			if err != nil {
				return nil, err
			}
			if ok {
				qty = q
				qtyFound = true
				continue
			}
		}
		if tok == "x" && qtyFound && len(descTokens) == 0 {
			continue // "2 x burger"
		}
		if instructions == "" && instructionWords[tok] && len(descTokens) > 0 {
			instructions = strings.Join(strings.Fields(body)[i:], " ")
			break
		}
		descTokens = append(descTokens, tok)
	}

	if len(descTokens) == 0 {
		return nil, fmt.Errorf("no item name")
	}
	return &ParsedLine{
		RawText:      line,
		Description:  strings.Join(descTokens, " "),
		Quantity:     qty,
		Instructions: instructions,
	}, nil
}

// splitInstructions separates "burger - no onions" or "burger (no onions)".
func splitInstructions(line string) (string, string) {
	if i := strings.Index(line, " - "); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+3:])
	}
	if open := strings.Index(line, "("); open > 0 && strings.HasSuffix(line, ")") {
		return strings.TrimSpace(line[:open]), strings.TrimSpace(line[open+1 : len(line)-1])
	}
	return line, ""
}

// parseQuantityToken accepts "2", "2x" and "x2". A token that is numeric but
// out of range is an error rather than part of the name.
func parseQuantityToken(tok string) (int, bool, error) {
	num := tok
	switch {
	case strings.HasSuffix(num, "x") && len(num) > 1:
		num = num[:len(num)-1]
	case strings.HasPrefix(num, "x") && len(num) > 1:
		num = num[1:]
	}
	q, err := strconv.Atoi(num)
	if err != nil {
		return 0, false, nil
	}
	if q < 1 || q > MaxQuantity {
		return 0, false, fmt.Errorf("quantity %d out of range 1-%d", q, MaxQuantity)
	}
	return q, true, nil
}
