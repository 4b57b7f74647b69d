package remote

// SummaryPrompt instructs the model to answer with the four-key summary object.
const SummaryPrompt = `You are a summarizer for Indian government procurement officers. From the provided document extract the most important bullets an officer needs to act on: procurement value, submission deadline(s), eligibility criteria, required documents, penalties, key contacts, and suggested next steps. Return JSON with keys short_summary, relevance_to_officials (array), action_items (array), confidence_estimate.`

// BuildPrompt appends the document text to the summary instructions.
func BuildPrompt(text string) string {
	return SummaryPrompt + "\n\nDocument text:\n" + text
}
