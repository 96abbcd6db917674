package assistant

import (
	"fmt"
	"strings"
)

// insufficientContextSentinel is the marker the model is instructed to
// emit, followed by a description of what is missing, when the supplied
// context cannot fully answer the question. Detection is a plain substring
// match on the model's free-text output.
const insufficientContextSentinel = "NEED_MORE_INFORMATION"

// contextSeparator delimits chunks inside the context block.
const contextSeparator = "\n\n---\n\n"

const groundingSystemPrompt = `You are the assistant on Dean's portfolio website. Visitors ask you ` +
	`questions about Dean's skills, projects and professional experience.

Rules:
- Answer ONLY from the context passages provided in the user message. Do not invent facts.
- Be concise and frame Dean's experience positively.
- If and only if the context is insufficient to answer the question fully, reply with ` +
	insufficientContextSentinel + ` followed by a short description of the missing information.`

const refinedSystemPrompt = `You are the assistant on Dean's portfolio website. Visitors ask you ` +
	`questions about Dean's skills, projects and professional experience.

The user message contains ENHANCED context gathered through refined searches for this question.

Rules:
- Answer ONLY from the context passages provided. Do not invent facts.
- Be concise and frame Dean's experience positively.
- Reference earlier turns of the conversation when they are relevant.
- Give the best answer the context allows, even if it is partial.`

const refinementSystemPrompt = `You generate search queries for a vector database of passages about ` +
	`Dean's professional background.

Given the visitor's question and a description of missing information, output exactly two distinct, ` +
	`targeted search queries covering different facets of the missing information. One query per line. ` +
	`No numbering, no commentary.`

// answerUserPrompt embeds the context block and the visitor's question
// into the final user message.
func answerUserPrompt(chunks []string, query string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextBlock(chunks), query)
}

func refinementUserPrompt(query, need string) string {
	return fmt.Sprintf("Original question: %s\nMissing information: %s", query, need)
}

func contextBlock(chunks []string) string {
	if len(chunks) == 0 {
		return "(no relevant passages found)"
	}
	return strings.Join(chunks, contextSeparator)
}

// needsMoreInformation reports whether the model signalled insufficient
// context, returning the stated information need after the sentinel.
func needsMoreInformation(response string) (string, bool) {
	idx := strings.Index(response, insufficientContextSentinel)
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(response[idx+len(insufficientContextSentinel):]), true
}

// parseRefinedQueries splits refinement output into at most limit
// non-empty lines. Anything unparseable yields an empty list.
func parseRefinedQueries(raw string, limit int) []string {
	var queries []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		queries = append(queries, line)
		if len(queries) == limit {
			break
		}
	}
	return queries
}
