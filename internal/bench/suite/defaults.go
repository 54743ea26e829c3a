package suite

// Default user-content templates per task type.
var defaults = []*RequestTemplate{
	{ID: "classifier", Text: "{{text}}"},
	{ID: "extractor", Text: "{{text}}"},
	{ID: "sql", Text: "Schema: {{schema}}\nQuestion: {{question}}"},
	{ID: "rag_judge", Text: "Context:\n{{context}}\n\nQuestion:\n{{question}}"},
	{ID: "judge", Text: "Question: {{question}}\nIdeal Answer: {{reference}}\nGenerated Answer: {{answer}}"},
}

// Defaults returns a registry preloaded with the built-in templates.
func Defaults() *TemplateRegistry {
	r := NewTemplateRegistry()
	for _, t := range defaults {
		cp := *t
		_ = r.Register(&cp)
	}
	return r
}
