package api

// Wire request/response shapes of the HTTP surface (spec.md §6), grounded
// on original_source/model/api.py.

type validateKeyRequest struct {
	APIKey string `json:"apiKey"`
}

type validateKeyResponse struct {
	OK bool `json:"ok"`
}

type uploadPaperResponse struct {
	JobID string `json:"jobId"`
}

type streamClaimsRequest struct {
	JobID  string `json:"jobId"`
	APIKey string `json:"apiKey"`
}

type verifyClaimResponse struct {
	ClaimID     string         `json:"claimId"`
	Verdict     string         `json:"verdict"`
	Confidence  float64        `json:"confidence"`
	ReasoningMd string         `json:"reasoningMd"`
	Evidence    []evidenceWire `json:"evidence,omitempty"`
}

type evidenceWire struct {
	PaperTitle string `json:"paperTitle"`
	Page       int    `json:"page,omitempty"`
	Section    string `json:"section,omitempty"`
	Paragraph  int    `json:"paragraph,omitempty"`
	Excerpt    string `json:"excerpt"`
}

type healthResponse struct {
	OK bool `json:"ok"`
}
