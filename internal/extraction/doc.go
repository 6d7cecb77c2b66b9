// Package extraction provides interfaces for interacting with external AI/LLM
// services that turn raw supplier documents into structured offer data. It
// abstracts the details of LLM API integration (Gemini), allowing the
// application to extract offer items from inbound messages and attachments
// without coupling to specific external services.
package extraction
