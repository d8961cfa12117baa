package tmpl

import "strings"

func parse(tpl string) []segment {
	var (
		segs []segment
		lit  = &strings.Builder{}
	)
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{text: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(tpl); i++ {
		c := tpl[i]
		switch {
		case c == '\\' && i+1 < len(tpl) && strings.IndexByte(`{}\`, tpl[i+1]) >= 0:
			i++
			lit.WriteByte(tpl[i])
		case c == '{':
			end := closing(tpl, i)
			if end < 0 {
				lit.WriteString(tpl[i:])
				i = len(tpl)
				continue
			}
			src := strings.TrimSpace(tpl[i+1 : end])
			if src == "" {
				lit.WriteString(tpl[i : end+1])
			} else {
				flush()
				segs = append(segs, segment{text: src, expr: true})
			}
			i = end
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	if len(segs) == 0 {
		segs = append(segs, segment{})
	}
	return segs
}

// closing returns the index of the brace closing the one at start, or -1.
func closing(tpl string, start int) int {
	depth := 0
	var quote byte
	for j := start; j < len(tpl); j++ {
		c := tpl[j]
		if quote != 0 {
			switch c {
			case '\\':
				j++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}
