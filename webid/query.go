package webid

import (
	"math/big"
	"strings"

	"github.com/deiu/rdf2go"
)

// CertNS is the WebID-TLS certificate ontology namespace.
const CertNS = "http://www.w3.org/ns/auth/cert#"

// keyAssertion is one public key asserted in a profile document:
// ?webid cert:key ?k . ?k cert:modulus ?modulus . ?k cert:exponent ?exponent .
type keyAssertion struct {
	webid    string
	modulus  string
	exponent string
}

// listKeyAssertions enumerates every key assertion reachable in the graph.
// A profile may assert several keys per agent, and several agents per
// document; all of them are candidates.
func listKeyAssertions(g *rdf2go.Graph) []keyAssertion {
	certKey := rdf2go.NewResource(CertNS + "key")
	certModulus := rdf2go.NewResource(CertNS + "modulus")
	certExponent := rdf2go.NewResource(CertNS + "exponent")

	var assertions []keyAssertion
	for _, key := range g.All(nil, certKey, nil) {
		for _, mod := range g.All(key.Object, certModulus, nil) {
			for _, exp := range g.All(key.Object, certExponent, nil) {
				assertions = append(assertions, keyAssertion{
					webid:    key.Subject.RawValue(),
					modulus:  mod.Object.RawValue(),
					exponent: exp.Object.RawValue(),
				})
			}
		}
	}
	return assertions
}

// normalizeExponent converts the certificate's hexadecimal exponent to the
// decimal string form profiles assert it in (65537, not 010001).
func normalizeExponent(hexExponent string) (string, bool) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(hexExponent), 16)
	if !ok {
		return "", false
	}
	return n.String(), true
}

// findMatchingKey checks the certificate key against every key assertion in
// the graph and returns the first one that matches. Modulus comparison is
// case-insensitive string equality of the hexadecimal form; leading-zero
// padding differences are NOT canonicalized away, intentionally matching the
// behavior profiles were published against. Exponent comparison is exact
// string equality after decimal normalization.
func findMatchingKey(g *rdf2go.Graph, certModulus, certExponent string) (keyAssertion, error) {
	exponent, ok := normalizeExponent(certExponent)
	if !ok {
		return keyAssertion{}, ErrMissingExponent
	}

	for _, a := range listKeyAssertions(g) {
		if a.modulus == "" || a.exponent == "" {
			continue
		}
		if strings.EqualFold(a.modulus, certModulus) && a.exponent == exponent {
			return a, nil
		}
	}
	return keyAssertion{}, ErrKeyNotFound
}
