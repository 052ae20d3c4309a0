package retrieval

import (
	"fmt"
	"strings"

	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// ragSystemMessage grounds document-backed answers in the retrieved context.
const ragSystemMessage = `You are a helpful and knowledgeable assistant. When answering the user's question, always review the context provided below. If relevant information is found in the context, prioritize and incorporate it into your response, citing references to the source documents where applicable with all relevant document_title. If the context does not contain sufficient or relevant details, clearly state there is no relevant context in the provided documents. Provide clear, concise, and accurate answers.`

// webAnalyzerRole is the persona for per-page content analysis.
const webAnalyzerRole = `You are a web content analyst specialized in extracting relevant information from web pages. Your expertise is in identifying key information in potentially noisy web content.`

// documentPrompt formats retrieved chunks and the question for the provider.
func documentPrompt(subquery string, contexts []models.Context) string {
	var b strings.Builder
	b.WriteString("Context information:\n\n")
	for i, ctx := range contexts {
		fmt.Fprintf(&b, "[%d] From document '%s':\n%s\n\n", i+1, ctx.DocumentTitle, ctx.Content)
	}
	fmt.Fprintf(&b, "Question: %s", subquery)
	return b.String()
}

// formatWebResults renders search snippets for the provider.
func formatWebResults(contexts []models.Context) string {
	if len(contexts) == 0 {
		return "No web search results found."
	}

	var b strings.Builder
	b.WriteString("Web search results:\n\n")
	for i, ctx := range contexts {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, ctx.DocumentTitle)
		fmt.Fprintf(&b, "URL: %s\n", ctx.URL)
		fmt.Fprintf(&b, "%s\n\n", ctx.Content)
	}
	return b.String()
}

// webAnswerPrompt asks the provider to answer from search snippets.
func webAnswerPrompt(subquery, formattedResults string) string {
	return fmt.Sprintf(`Based on the following web search results for the query: "%s", provide a comprehensive and well-structured answer.

Analyze the information from different sources, identify the most relevant facts, and synthesize a coherent response that directly answers the query.

%s
Your answer should:
1. Directly address the original query
2. Integrate information from multiple sources when available
3. Present a logical flow of information
4. Note any conflicting information found and provide a balanced perspective
5. Acknowledge if the search results don't fully answer the query`, subquery, formattedResults)
}

// contentAnalysisPrompt asks the provider to summarize one page against the
// current subquery.
func contentAnalysisPrompt(subquery string, page *models.FetchedPage, content string) string {
	return fmt.Sprintf(`%s

Please analyze the following web page content and extract key information relevant to: "%s"

Web Page: %s
URL: %s

Content:
%s

Provide:
1. A concise summary of the content (2-3 sentences)
2. 3-5 key facts or points that are most relevant to the query
3. An assessment of how well this content answers the query (high/medium/low)

Format your response with clear sections. Only include information present in the content.`, webAnalyzerRole, subquery, page.Title, page.URL, content)
}

// subqueryAnalysisPrompt asks the provider for a focused answer over the
// per-page analyses.
func subqueryAnalysisPrompt(subquery, sourcesContent string) string {
	return fmt.Sprintf(`Based on the following web content analyses for the query: "%s", please provide a concise, focused answer that specifically addresses this query.

Analyzed web content:
%s

Your response should:
1. Focus specifically on answering "%s"
2. Integrate information from all relevant sources
3. Be concise but complete
4. Cite sources with URLs where appropriate
5. Indicate confidence level for your answer (high/medium/low)`, subquery, sourcesContent, subquery)
}
