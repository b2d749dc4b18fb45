package rag

import (
	"fmt"
	"strings"

	"github.com/poiesic/papl/core"
)

const separatorWidth = 80

// BuildPrompt assembles the grounded prompt sent to the language model:
// system instructions, the retrieved document context in numbered blocks,
// and the user's question. Documents are numbered from 1 in retrieval
// order so the model can cite them.
func BuildPrompt(query string, docs []*core.Document) string {
	var parts []string

	parts = append(parts, "You are a helpful NDIS PAPL (Pricing Arrangements and Price Limits) assistant.")
	parts = append(parts, "Your role is to answer questions about NDIS support pricing, claiming rules, and guidance.")
	parts = append(parts, "")
	parts = append(parts, "CRITICAL RULES:")
	parts = append(parts, "1. Answer ONLY based on the provided PAPL context below")
	parts = append(parts, "2. If the answer is not in the context, say so clearly")
	parts = append(parts, "3. Always cite which document(s) you used (e.g., 'According to Document 1...')")
	parts = append(parts, "4. Use plain language suitable for participants and families")
	parts = append(parts, "5. Include support item numbers when discussing pricing")
	parts = append(parts, "6. Explain claiming rules step-by-step")
	parts = append(parts, "7. Be accurate - this affects real people's NDIS funding")
	parts = append(parts, "")

	parts = append(parts, "CONTEXT FROM PAPL DOCUMENTS:")
	parts = append(parts, strings.Repeat("=", separatorWidth))

	for i, doc := range docs {
		parts = append(parts, fmt.Sprintf("\n[Document %d - %s]", i+1, strings.ToUpper(doc.SourceType.String())))
		parts = append(parts, doc.Content)
		parts = append(parts, strings.Repeat("-", separatorWidth))
	}

	parts = append(parts, "")
	parts = append(parts, strings.Repeat("=", separatorWidth))
	parts = append(parts, "")

	parts = append(parts, "USER QUESTION: "+query)
	parts = append(parts, "")

	parts = append(parts, "Please provide a clear, accurate answer based ONLY on the context above.")
	parts = append(parts, "Remember to cite your sources and use plain language.")

	return strings.Join(parts, "\n")
}
