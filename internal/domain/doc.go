// Package domain contains the core entities of the offer ingestion
// pipeline: submissions received from messaging automations, the structured
// offer items extracted from them, and the derivation rules connecting the
// two. Entities validate themselves and carry no persistence concerns.
package domain
