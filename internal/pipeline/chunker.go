package pipeline

import "strings"

// Chunk splits document text into pieces of at most size runes. Paragraphs
// are packed together until the next one would overflow; a paragraph longer
// than size is hard-split with overlap runes carried between consecutive
// pieces so sentences cut at the boundary stay retrievable.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, para := range splitParagraphs(text) {
		runes := []rune(para)
		if len(runes) > size {
			flush()
			for start := 0; start < len(runes); start += size - overlap {
				end := min(start+size, len(runes))
				piece := strings.TrimSpace(string(runes[start:end]))
				if piece != "" {
					chunks = append(chunks, piece)
				}
				if end == len(runes) {
					break
				}
			}
			continue
		}

		// +2 for the paragraph separator that would join them.
		if current.Len() > 0 && len([]rune(current.String()))+2+len(runes) > size {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return chunks
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
