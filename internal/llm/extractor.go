// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "ResumeProfile")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	// System description
	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	// Output schema
	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	// Instructions
	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	// Input text
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Predefined Schemas ---

// ResumeProfileSchema returns the extraction schema for resume text.
// Extracts skills, prior titles, education, and an experience estimate in a
// single pass; the confidence field reports how much signal the resume gave.
func ResumeProfileSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "ResumeProfile",
		Description: `You are an expert resume analyst. Your task is to extract a structured career profile from raw resume text.
Extract only what the text supports: skills that are named or clearly demonstrated, job titles actually held, education actually completed.
Estimate total professional experience in years from the employment dates; use your best estimate when dates are partial.
Do NOT invent skills, titles, or degrees that the resume does not support.`,
		Fields: []SchemaField{
			{
				Name:        "skills",
				Type:        "[\"string\"]",
				Description: "Concrete skills the resume names or clearly demonstrates, most prominent first",
				Required:    true,
			},
			{
				Name:        "job_titles",
				Type:        "[\"string\"]",
				Description: "Job titles actually held, most recent first",
				Required:    true,
			},
			{
				Name:        "education",
				Type:        "{\"level\": \"string\", \"fields\": [\"string\"]}",
				Description: "Highest completed level (high_school, associate, bachelor, master, phd) and fields of study; empty level if none stated",
				Required:    true,
			},
			{
				Name:        "experience_years",
				Type:        "number",
				Description: "Estimated total years of professional experience",
				Required:    true,
			},
			{
				Name:        "confidence",
				Type:        "number",
				Description: "0.0-1.0: how completely and unambiguously the resume supports this profile",
				Required:    true,
			},
		},
	}
}
