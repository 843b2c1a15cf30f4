package engine

import (
	"fmt"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
)

func buildSummarizePrompt(text string) string {
	return fmt.Sprintf(`You are a summarization assistant. Summarize the following text.

Rules:
- Write 2 to 4 sentences of plain prose in the language of the text
- Keep names, numbers and facts exactly as they appear
- Do not add opinions, headings, bullet points or markdown
- Output ONLY the summary

Text:
%s`, text)
}

func buildTranslatePrompt(text, sourceLang, targetLang string) string {
	return fmt.Sprintf(`You are a professional translator. Translate the following text from %s (%s) to %s (%s).

Rules:
- Preserve meaning, tone and formatting
- Do not explain or comment on the translation
- Output ONLY the translated text

Text:
%s`, model.LanguageName(sourceLang), sourceLang, model.LanguageName(targetLang), targetLang, text)
}
