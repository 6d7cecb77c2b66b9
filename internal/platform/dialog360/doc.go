// Package dialog360 resolves the content of inbound attachments. Inline
// payloads are returned as-is; URL-only attachments are downloaded over
// HTTP. WhatsApp media links from Meta webhooks point at a lookaside host
// that rejects direct requests, so those are rewritten to the 360dialog
// media proxy and authenticated with the configured API key.
package dialog360
