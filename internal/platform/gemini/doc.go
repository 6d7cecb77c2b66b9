// Package gemini provides an implementation of the extraction.Extractor
// interface that uses Google's Gemini API for extracting structured offer
// data from supplier documents.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's domain logic to Google's external Gemini AI
// service. It translates between the application's domain models and the
// Gemini API without exposing the details of the external service to the
// core application.
//
// Key components:
//
// 1. GeminiExtractor:
//   - Implements the extraction.Extractor interface
//   - Handles communication with the Gemini API
//   - Processes structured responses into domain models
//
// 2. Prompt Management:
//   - Loads prompt templates from files
//   - Substitutes document content into templates
//   - Formats prompts according to Gemini's requirements
//
// 3. Response Processing:
//   - Parses structured JSON responses from the API
//   - Strips markdown fences the model occasionally wraps output in
//   - Converts API responses to domain OfferItem objects
//
// 4. Error Handling:
//   - Implements retry logic with exponential backoff for transient errors
//   - Categorizes and translates API errors to application-specific errors
//   - Handles content filtering and safety measures
package gemini
