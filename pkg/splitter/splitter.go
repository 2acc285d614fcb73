package splitter

// Chunk is a bounded segment of normalized document text. Position is the
// rune offset of the chunk start within the source text; adjacent chunks
// share the configured overlap.
type Chunk struct {
	Text     string
	Position int
}

type Config struct {
	ChunkSize int
	Overlap   int
	// Separators lists cut-point candidates in preference order: the first
	// separator found scanning backward from the size limit wins.
	Separators []string
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:  1000,
		Overlap:    100,
		Separators: []string{"\n\n", "\n", ".", ";", ",", " ", "。", "；", "，", "！"},
	}
}

// Split cuts text into chunks of at most cfg.ChunkSize runes, preferring to
// break at the earliest-listed separator and carrying cfg.Overlap runes of
// trailing context into the next chunk. Pure function, no I/O.
func Split(text string, cfg Config) []Chunk {
	if cfg.ChunkSize <= 0 {
		cfg = DefaultConfig()
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= cfg.ChunkSize {
		return []Chunk{{Text: text, Position: 0}}
	}

	overlap := cfg.Overlap
	if overlap >= cfg.ChunkSize {
		overlap = 0
	}

	var chunks []Chunk
	start := 0 // window start, includes overlap carried from the previous chunk
	core := 0  // first rune not yet covered by any chunk's core region
	for core < len(runes) {
		end := start + cfg.ChunkSize
		if end >= len(runes) {
			chunks = append(chunks, Chunk{Text: string(runes[start:]), Position: start})
			break
		}

		cut := cutPoint(runes, core, start, end, cfg.Separators)
		chunks = append(chunks, Chunk{Text: string(runes[start:cut]), Position: start})

		core = cut
		start = cut - overlap
		if start < 0 {
			start = 0
		}
	}
	return chunks
}

// cutPoint returns the index one past the chosen separator, or end when no
// separator yields progress (hard cut).
func cutPoint(runes []rune, core, start, end int, seps []string) int {
	for _, sep := range seps {
		s := []rune(sep)
		if len(s) == 0 || len(s) > end-start {
			continue
		}
		for i := end - len(s); i >= start; i-- {
			if i+len(s) <= core {
				break // cutting here would not advance past covered text
			}
			if matchAt(runes, i, s) {
				return i + len(s)
			}
		}
	}
	return end
}

func matchAt(runes []rune, at int, sep []rune) bool {
	for j, r := range sep {
		if runes[at+j] != r {
			return false
		}
	}
	return true
}
