// Package chunker splits chapter text into bounded, overlap-preserving
// chunks suitable for embedding and prompt assembly. Chunk IDs are
// sequential across the whole document so retrieval results can be mapped
// back to their source.
package chunker

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/cardforge/cardforge/internal/types"
)

const (
	// targetChunkChars is the soft ceiling a chunk buffer grows toward.
	targetChunkChars = 3500
	// minBufferChars prevents emitting tiny chunks when a long paragraph
	// follows a short one.
	minBufferChars = 300
	// overlapChars is the trailing span carried into the next chunk so
	// context survives the boundary.
	overlapChars = 300
	// pseudoParagraphChars sizes the sentence regrouping applied to
	// undifferentiated text blocks with no paragraph breaks.
	pseudoParagraphChars = 400
	// maxEntities caps the capitalized-term tags recorded per chunk.
	maxEntities = 8
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Chunker splits chapters into chunks.
type Chunker struct {
	logger *slog.Logger
}

// New creates a Chunker. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Chunker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chunker{logger: logger}
}

// Split chunks every chapter in order. Chunks that fall below the survival
// minimums are dropped, and every surviving chunk carries its chapter title
// and a sequential ID.
func (c *Chunker) Split(chapters []types.Chapter) []types.Chunk {
	var chunks []types.Chunk
	nextID := 0

	for _, chapter := range chapters {
		before := len(chunks)
		chunks = c.splitChapter(chapter, chunks, &nextID)
		c.logger.Debug("chunked chapter",
			"title", chapter.Title,
			"chunks", len(chunks)-before)
	}

	c.logger.Info("chunking complete", "chapters", len(chapters), "chunks", len(chunks))
	return chunks
}

func (c *Chunker) splitChapter(chapter types.Chapter, chunks []types.Chunk, nextID *int) []types.Chunk {
	paragraphs := splitParagraphs(chapter.Content)
	if len(paragraphs) == 0 {
		return chunks
	}

	emit := func(text string) {
		chunk := types.Chunk{
			ID:           *nextID,
			Text:         text,
			ChapterTitle: chapter.Title,
			CharCount:    len(text),
			WordCount:    types.CountWords(text),
			Entities:     extractEntities(text),
		}
		if !chunk.MeetsMinimums() {
			c.logger.Debug("dropping undersized chunk",
				"chapter", chapter.Title, "chars", chunk.CharCount, "words", chunk.WordCount)
			return
		}
		chunks = append(chunks, chunk)
		*nextID++
	}

	var buf strings.Builder
	for _, para := range paragraphs {
		if buf.Len() >= minBufferChars && buf.Len()+len(para) > targetChunkChars {
			text := buf.String()
			emit(text)
			buf.Reset()
			if tail := overlapTail(text); tail != "" {
				buf.WriteString(tail)
			}
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(para)
	}
	if buf.Len() > 0 {
		emit(buf.String())
	}
	return chunks
}

// splitParagraphs breaks text on blank lines. A single undifferentiated
// block is regrouped from sentences into pseudo-paragraphs so the buffer
// loop still finds boundaries to cut on.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	for _, p := range paragraphBreak.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, normalizeWhitespace(p))
		}
	}

	if len(paragraphs) == 1 && len(paragraphs[0]) > targetChunkChars {
		return regroupSentences(paragraphs[0])
	}
	return paragraphs
}

// regroupSentences packs sentences into pseudo-paragraphs of roughly
// pseudoParagraphChars each.
func regroupSentences(text string) []string {
	sentences := splitIntoSentences(text)
	if len(sentences) == 0 {
		return []string{text}
	}

	var groups []string
	var buf strings.Builder
	for _, s := range sentences {
		if buf.Len() > 0 && buf.Len()+len(s) > pseudoParagraphChars {
			groups = append(groups, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(s)
	}
	if buf.Len() > 0 {
		groups = append(groups, buf.String())
	}
	return groups
}

// overlapTail returns roughly the last overlapChars of text, cut forward to
// a word boundary so no word is split across chunks.
func overlapTail(text string) string {
	if len(text) <= overlapChars {
		return text
	}
	cut := len(text) - overlapChars
	for cut < len(text) && text[cut] != ' ' && text[cut] != '\n' {
		cut++
	}
	return strings.TrimSpace(text[cut:])
}

// extractEntities collects distinct capitalized terms appearing mid-sentence,
// a cheap proxy for names and topics used as card tags.
func extractEntities(text string) []string {
	words := strings.Fields(text)
	seen := make(map[string]struct{})
	var entities []string

	for i := 1; i < len(words) && len(entities) < maxEntities; i++ {
		prev := words[i-1]
		if endsSentence(prev) {
			continue
		}
		term := strings.Trim(words[i], `.,;:!?"'()[]`)
		if len(term) < 4 || !isUpper(term[0]) {
			continue
		}
		if strings.ToUpper(term) == term {
			// All-caps runs are usually headings, not entities.
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		entities = append(entities, term)
	}
	return entities
}

func endsSentence(word string) bool {
	trimmed := strings.TrimRight(word, `"')]`)
	if trimmed == "" {
		return false
	}
	last := trimmed[len(trimmed)-1]
	return last == '.' || last == '!' || last == '?'
}
