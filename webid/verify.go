// Package webid verifies WebID-TLS identity claims: it checks that the RSA
// public key of a TLS client certificate is asserted in the RDF profile
// document reachable at the URI carried in the certificate's subject
// alternative name.
package webid

import (
	"bytes"
	"context"
	"fmt"

	"github.com/deiu/rdf2go"
)

// Verifier runs the WebID-TLS verification protocol. Every call is an
// independent transaction: nothing is cached or shared between calls, so a
// single Verifier is safe for concurrent use.
type Verifier struct {
	resolver Resolver
}

// New creates a Verifier fetching profiles with the given resolver, or with
// a default HTTPResolver when nil.
func New(resolver Resolver) *Verifier {
	if resolver == nil {
		resolver = &HTTPResolver{}
	}
	return &Verifier{resolver: resolver}
}

// Verify checks the certificate's identity claim end to end and returns the
// verified identity URI. Only the first URI in the subject alternative name
// is attempted; later entries are not retried on failure. Every failure is
// terminal and matchable with errors.Is against the sentinel errors of this
// package.
func (v *Verifier) Verify(ctx context.Context, cert *Certificate) (string, error) {
	if cert == nil {
		return "", ErrNoCertificate
	}
	if err := cert.validate(); err != nil {
		return "", err
	}

	uris := ExtractURIs(cert.SubjectAltName)
	if len(uris) == 0 {
		return "", ErrEmptySAN
	}
	uri := uris[0]

	body, mediaType, err := v.resolver.Fetch(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProfileFetch, err)
	}

	if err := v.VerifyKey(cert, uri, body, mediaType); err != nil {
		return "", err
	}
	// The URI that was fetched is returned, not the subject bound in the
	// matching triple. The two are assumed equal and not re-verified.
	return uri, nil
}

// VerifyKey checks the certificate key against an already-fetched profile
// document, anchoring relative references at uri. It is the entry point for
// callers that dereference profiles themselves.
func (v *Verifier) VerifyKey(cert *Certificate, uri string, body []byte, mediaType string) error {
	if cert == nil {
		return ErrNoCertificate
	}
	if err := cert.validate(); err != nil {
		return err
	}

	g := rdf2go.NewGraph(uri)
	if err := g.Parse(bytes.NewReader(body), mediaType); err != nil {
		return fmt.Errorf("%w: %w", ErrProfileParse, err)
	}

	_, err := findMatchingKey(g, cert.Modulus, cert.Exponent)
	return err
}
