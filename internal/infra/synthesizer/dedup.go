package synthesizer

import "strings"

// Deduper removes repeated content from generated text. The interface
// isolates the cleanup strategy so a semantic deduplicator can replace
// the string-based one without touching the generation pipeline.
type Deduper interface {
	Dedup(text string) string
}

// SentenceDeduper removes exact-duplicate sentences from generated
// text. Generation models occasionally loop and emit the same sentence
// several times; this keeps the first occurrence of each.
//
// The algorithm is non-semantic: it splits on the ". " delimiter,
// compares sentences as exact strings (case-sensitive), and preserves
// first-occurrence order. Paraphrased repetition passes through, and
// abbreviations containing ". " are treated as sentence boundaries.
// Applying it twice yields the same result as applying it once.
type SentenceDeduper struct{}

// Dedup returns text with duplicate sentences removed. A trailing
// period is preserved only if the input ended with one.
func (SentenceDeduper) Dedup(text string) string {
	endsWithPeriod := strings.HasSuffix(text, ".")

	sentences := strings.Split(text, ". ")
	seen := make(map[string]struct{}, len(sentences))
	unique := make([]string, 0, len(sentences))

	for _, sentence := range sentences {
		sentence = strings.TrimSuffix(sentence, ".")
		if _, ok := seen[sentence]; ok {
			continue
		}
		seen[sentence] = struct{}{}
		unique = append(unique, sentence)
	}

	result := strings.Join(unique, ". ")
	if endsWithPeriod && result != "" {
		result += "."
	}
	return result
}
