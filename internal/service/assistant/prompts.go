package assistant

import (
	"fmt"

	"curio/internal/service/document"
)

const (
	promptContentChars   = 4000
	documentContentChars = 10000

	promptTruncatedNotice   = "...(content truncated due to length)"
	documentTruncatedNotice = "... (text truncated for analysis)"
)

func uploadPrompt(fileType, content string) string {
	return fmt.Sprintf("Analyze this %s file content and provide a summary:\n\n%s", fileType, clip(content, promptContentChars, promptTruncatedNotice))
}

func researchPrompt(title, abstract, content string) string {
	return fmt.Sprintf("Analyze this research paper and provide a detailed review:\n\nTitle: %s\n\nAbstract: %s\n\nContent: %s",
		title, abstract, clip(content, promptContentChars, promptTruncatedNotice))
}

func documentPrompt(fileName, text string) string {
	return fmt.Sprintf(`Please analyze this document "%s" for a student learning science.

Provide:
1. A short summary of the document
2. The key points and main ideas
3. Any scientific concepts that might need further explanation
4. How this content relates to science education

Keep the tone friendly and easy to follow.

Document content:
%s`, fileName, clip(text, documentContentChars, documentTruncatedNotice))
}

func clip(text string, limit int, notice string) string {
	cut, truncated := document.Truncate(text, limit)
	if truncated {
		return cut + "\n\n" + notice
	}
	return cut
}
