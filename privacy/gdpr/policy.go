// Package gdpr reads and writes the GDPR signal and TCF consent string carried by OpenRTB 2.6
// bid requests.
package gdpr

import (
	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/prebid/go-tcf/api"
	"github.com/prebid/go-tcf/vendorconsent"
)

// Policy is the GDPR state of one bid request.
type Policy struct {
	Signal  Signal
	Consent string
}

// ReadPolicy extracts the policy from regs.gdpr and user.consent.
func ReadPolicy(req *openrtb2.BidRequest) (Policy, error) {
	policy := Policy{Signal: SignalAmbiguous}
	if req == nil {
		return policy, nil
	}

	if req.Regs != nil {
		signal, err := signalFromInt8(req.Regs.GDPR)
		if err != nil {
			return policy, err
		}
		policy.Signal = signal
	}

	if req.User != nil {
		policy.Consent = req.User.Consent
	}

	return policy, nil
}

// Applies reports whether GDPR applies, resolving an ambiguous signal with gdprDefault.
func (p Policy) Applies(gdprDefault string) bool {
	return SignalNormalize(p.Signal, gdprDefault) == SignalYes
}

// ValidateConsent decodes the consent string. An empty consent is reported as malformed.
func (p Policy) ValidateConsent(opts ...vendorconsent.Option) (api.VendorConsents, error) {
	return vendorconsent.ParseString(p.Consent, opts...)
}

// Write stores the policy in req.
func (p Policy) Write(req *openrtb2.BidRequest) error {
	return ConsentWriter{Consent: p.Consent, GDPR: p.Signal.int8Ptr()}.Write(req)
}
