package agent

import "fmt"

// Agent personas used by the decomposition and synthesis prompts.
const (
	decomposerRole = `You are a research planner specialized in breaking down complex questions into logical components. Your expertise is in identifying key aspects of questions that need separate investigation.`

	webSearcherRole = `You are a search engine expert who crafts optimal web search queries. You understand how search algorithms work and how to phrase queries for maximum relevance.`

	synthesizerRole = `You are an information synthesis specialist. Your expertise is in combining information from multiple sources into coherent, comprehensive answers, identifying connections between facts, and resolving contradictions.`
)

const bulletListInstruction = "Format your response as a bulleted list with ONLY the queries, nothing else."

// blindDecompositionPrompt asks for 2-4 subqueries from the query text
// alone. The web variant asks for search-engine-friendly phrasing, the
// document variant for complete questions.
func blindDecompositionPrompt(query string, web bool) string {
	if web {
		return fmt.Sprintf(`%s

Original Query: %s

Break this query down into 2-4 specific search queries that together will help answer the original question completely.
Each search query should:
1. Be phrased to maximize relevant search engine results
2. Focus on a particular aspect of the original query
3. Use search engine-friendly syntax (short, precise terms without unnecessary words)
4. Avoid complex language that would reduce search effectiveness

%s`, webSearcherRole, query, bulletListInstruction)
	}

	return fmt.Sprintf(`%s

Original Query: %s

Break this query down into 2-4 specific, focused subqueries that together will help answer the original question completely.
Each subquery should:
1. Be self-contained and specific
2. Focus on a particular aspect of the original query
3. Be phrased as a complete question

%s`, decomposerRole, query, bulletListInstruction)
}

// informedDecompositionPrompt asks for 2-3 follow-up subqueries that cover
// what the initial retrieval missed. contextBlock is the budget-truncated
// view of the initial contexts.
func informedDecompositionPrompt(query, contextBlock string, web bool) string {
	searchType := "document search"
	queryType := "subqueries"
	specific := "- Be phrased as complete questions"
	if web {
		searchType = "web search"
		queryType = "search queries"
		specific = "- Be phrased as effective search engine queries"
	}

	return fmt.Sprintf(`%s

Original Query: %s

I've already done an initial %s and found some information, but we need to explore further:

Initial Results:
%s

Based on what we've found so far, identify 2-3 specific follow-up %s that would help us:
1. Fill in important missing information not covered in the initial search
2. Explore specific aspects of the query that weren't fully addressed
3. Resolve any ambiguities or contradictions in the initial results

Each query should:
- Be focused on gathering new information not already covered
- NOT duplicate information we already have from the initial search
%s

%s`, decomposerRole, query, searchType, contextBlock, queryType, specific, bulletListInstruction)
}

// synthesisPrompt asks for the final answer over the per-subquery results.
// contextView, when non-empty, is the ranked budget-truncated context block
// appended for grounding.
func synthesisPrompt(query, formattedResults, contextView string, web bool) string {
	citation := "Cite references to the source documents where applicable with all relevant document_title"
	limitation := "If the results do not contain sufficient or relevant details, don't answer and state there is no relevant context."
	if web {
		citation = "Includes proper citations to web sources including URLs in parentheses"
		limitation = "Be careful to only include factual information from the search results, and acknowledge any significant information gaps."
	}

	prompt := fmt.Sprintf(`%s

Original Query: %s

I've broken this query down and found results for each part:

%s

Synthesize a comprehensive, cohesive answer to the original query that:
1. Directly addresses the original question
2. Integrates information from all results
3. Presents a logical flow of information
4. Avoids unnecessary repetition
5. Maintains factual accuracy from the source information
6. %s
7. Notes any conflicting information found and provides a balanced perspective

Your answer should be thorough but concise, well-structured, and directly useful to the person who asked the original query.
%s`, synthesizerRole, query, formattedResults, citation, limitation)

	if contextView != "" {
		prompt += "\n\n" + contextView
	}
	return prompt
}
