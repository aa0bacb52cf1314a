package ddl

import "strings"

// Script is the ordered list of generated statements, without terminators.
type Script []string

// Render joins the statements, ending each with terminator and a newline.
func (s Script) Render(terminator string) string {
	var sb strings.Builder
	for _, stmt := range s {
		sb.WriteString(stmt)
		sb.WriteString(terminator)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (s Script) String() string {
	return s.Render(";")
}
