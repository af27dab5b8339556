package backend

import "fmt"

const systemPrompt = "You are a helpful assistant."

// suggestPrompt is the chat prompt used by hosted models.
func suggestPrompt(word string, params Params) string {
	p := fmt.Sprintf("Suggest synonyms for the word: %s", word)
	return withContext(p, params)
}

// generatePrompt is the completion prompt used by local models.
func generatePrompt(word string, params Params) string {
	p := fmt.Sprintf("Generate synonyms for the word: %s", word)
	return withContext(p, params)
}

func withContext(prompt string, params Params) string {
	if ctx := params.Text(ParamContext); ctx != "" {
		prompt += fmt.Sprintf("\nThe word appears in this context: %q", ctx)
	}
	return prompt + "\nAnswer with a comma-separated list of synonyms only."
}
