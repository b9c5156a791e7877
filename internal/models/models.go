package models

// IssueRequest is the issuance endpoint payload.
type IssueRequest struct {
	Agent            string `json:"agent"`
	SPKAC            string `json:"spkac"`
	CountryName      string `json:"countryName,omitempty"`
	LocalityName     string `json:"localityName,omitempty"`
	OrganizationName string `json:"organizationName,omitempty"`
}

// VerifiedIdentity represents a successful authentication for exchange with
// integrating services.
type VerifiedIdentity struct {
	WebID       string `json:"webid"`
	Fingerprint string `json:"fingerprint"`
	Token       string `json:"token"`
	Cached      bool   `json:"cached"`
}
