package interactive

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/kadirbelkuyu/dbddl/internal/config"
	"github.com/kadirbelkuyu/dbddl/internal/ddl"
	"github.com/kadirbelkuyu/dbddl/internal/profiles"
)

// Selector asks the user questions on a line-oriented terminal.
type Selector struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewSelector(in io.Reader, out io.Writer) *Selector {
	return &Selector{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (s *Selector) readLine() (string, error) {
	input, err := s.reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", fmt.Errorf("unable to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// SelectProfile lets the user start from a saved profile. A nil result means
// "start from the current configuration".
func (s *Selector) SelectProfile(list []profiles.Profile) (*profiles.Profile, error) {
	if len(list) == 0 {
		return nil, nil
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Saved profiles:")
	fmt.Fprintln(s.out, strings.Repeat("=", 80))
	fmt.Fprintf(s.out, "%-4s %-30s %-25s %-15s\n", "No", "Profile", "Dialects", "Modified")
	fmt.Fprintln(s.out, strings.Repeat("-", 80))
	for i, p := range list {
		fmt.Fprintf(s.out, "%-4d %-30s %-25s %-15s\n", i+1, p.Name, safeValue(strings.Join(p.Dialects, ","), "n/a"), p.Modified.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(s.out, strings.Repeat("=", 80))

	for {
		fmt.Fprintf(s.out, "\nSelect a profile (1-%d), or press enter to skip: ", len(list))

		input, err := s.readLine()
		if err != nil {
			return nil, err
		}
		if input == "" {
			return nil, nil
		}

		choice, err := strconv.Atoi(input)
		if err != nil || choice < 1 || choice > len(list) {
			fmt.Fprintf(s.out, "Please select a number between 1 and %d.\n", len(list))
			continue
		}

		selected := &list[choice-1]
		fmt.Fprintf(s.out, "\nSelected profile: %s\n", selected.Name)
		return selected, nil
	}
}

// SelectDialects accepts a comma separated list of numbers, or "all".
// Pressing enter keeps the current selection.
func (s *Selector) SelectDialects(available []*ddl.Dialect, current []string) ([]string, error) {
	if len(available) == 0 {
		return nil, fmt.Errorf("no dialects registered")
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Available dialects:")
	fmt.Fprintln(s.out, strings.Repeat("=", 80))
	fmt.Fprintf(s.out, "%-4s %-15s %-30s\n", "No", "Key", "Name")
	fmt.Fprintln(s.out, strings.Repeat("-", 80))
	for i, d := range available {
		fmt.Fprintf(s.out, "%-4d %-15s %-30s\n", i+1, d.Key(), d.Name())
	}
	fmt.Fprintln(s.out, strings.Repeat("=", 80))

	for {
		fmt.Fprintf(s.out, "\nSelect dialects (e.g. 1,3 or all) [%s]: ", strings.Join(current, ","))

		input, err := s.readLine()
		if err != nil {
			return nil, err
		}

		switch strings.ToLower(input) {
		case "":
			if len(current) > 0 {
				return current, nil
			}
			fmt.Fprintln(s.out, "Please choose at least one dialect.")
			continue
		case "all":
			keys := make([]string, len(available))
			for i, d := range available {
				keys[i] = d.Key()
			}
			return keys, nil
		}

		keys, ok := parseChoices(input, available)
		if !ok {
			fmt.Fprintf(s.out, "Please enter numbers between 1 and %d.\n", len(available))
			continue
		}
		return keys, nil
	}
}

func parseChoices(input string, available []*ddl.Dialect) ([]string, bool) {
	seen := make(map[int]bool)
	for _, part := range strings.Split(input, ",") {
		choice, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || choice < 1 || choice > len(available) {
			return nil, false
		}
		seen[choice-1] = true
	}

	indexes := make([]int, 0, len(seen))
	for i := range seen {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	keys := make([]string, len(indexes))
	for i, idx := range indexes {
		keys[i] = available[idx].Key()
	}
	return keys, true
}

// Ask prints label and returns the answer. Reading past the end of input
// returns an error wrapping io.EOF.
func (s *Selector) Ask(label string) (string, error) {
	fmt.Fprintf(s.out, "%s: ", label)
	return s.readLine()
}

// Prompt asks for a free-form value; enter keeps def.
func (s *Selector) Prompt(label, def string) string {
	if def != "" {
		fmt.Fprintf(s.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(s.out, "%s: ", label)
	}

	input, err := s.readLine()
	if err != nil || input == "" {
		return def
	}
	return input
}

func (s *Selector) askYesNo(question string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(s.out, "%s (%s): ", question, hint)

	input, err := s.readLine()
	if err != nil || input == "" {
		return def
	}
	input = strings.ToLower(input)
	return input == "y" || input == "yes"
}

func (s *Selector) ConfirmAction(action, target string) bool {
	fmt.Fprintln(s.out)
	return s.askYesNo(fmt.Sprintf("Confirm %s for %s", action, target), false)
}

// GetGenerationOptions walks through the generation settings, offering the
// current values as defaults.
func (s *Selector) GetGenerationOptions(current config.GenerationConfig) config.GenerationConfig {
	options := current

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Generation options:")

	options.QuoteIdentifiers = s.askYesNo("Quote identifiers?", current.QuoteIdentifiers)
	options.IncludeDrops = s.askYesNo("Emit DROP TABLE statements first?", current.IncludeDrops)
	options.Schema = s.Prompt("Default schema (leave empty for none)", current.Schema)
	options.Catalog = s.Prompt("Catalog (leave empty for none)", current.Catalog)

	tables := s.Prompt("Tables to generate, comma separated (leave empty for all)", strings.Join(current.Tables, ","))
	options.Tables = nil
	for _, name := range strings.Split(tables, ",") {
		if name = strings.TrimSpace(name); name != "" {
			options.Tables = append(options.Tables, name)
		}
	}

	return options
}

func safeValue(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
