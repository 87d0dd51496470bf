// Package llm contains the external classifier client. The categorization
// service talks to it through the service.Classifier interface; this
// package provides the Gemini implementation.
package llm
