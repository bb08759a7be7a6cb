// Package vendorconsent decodes IAB TCF consent strings of either version.
//
// ParseString reads only what it needs to pick a model: the version of the first segment and
// the type tag of every later segment. Every other field is decoded on first access unless
// WithEager is given.
package vendorconsent

import (
	"fmt"
	"strings"
	"time"

	"github.com/prebid/go-tcf/api"
	"github.com/prebid/go-tcf/bitutils"
	"github.com/prebid/go-tcf/consentconstants"
	"github.com/prebid/go-tcf/errortypes"
	"github.com/prebid/go-tcf/fields"
	"github.com/prebid/go-tcf/logger"
	"github.com/prebid/go-tcf/metrics"
	"github.com/prebid/go-tcf/vendorconsent/tcf1"
	"github.com/prebid/go-tcf/vendorconsent/tcf2"
)

const segmentSeparator = "."

type options struct {
	eager         bool
	metricsEngine metrics.MetricsEngine
}

// Option configures ParseString.
type Option func(*options)

// WithEager decodes every field during parsing, so a string with any unreadable field is rejected.
func WithEager() Option {
	return func(o *options) {
		o.eager = true
	}
}

// WithMetrics records the outcome and duration of every parse, and every skipped segment.
func WithMetrics(engine metrics.MetricsEngine) Option {
	return func(o *options) {
		if engine != nil {
			o.metricsEngine = engine
		}
	}
}

// ParseString decodes a consent string. The result is a *tcf1.Consent or a *tcf2.Consent.
func ParseString(consent string, opts ...Option) (api.VendorConsents, error) {
	o := options{metricsEngine: &metrics.NilMetricsEngine{}}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	parsed, version, err := parse(consent, o)
	labels := metrics.DecodeLabels{
		Version: metrics.TCFVersionToValue(version),
		Status:  metrics.DecodeStatusFromError(err),
	}
	o.metricsEngine.RecordDecode(labels)
	o.metricsEngine.RecordDecodeTime(labels, time.Since(start))
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func parse(consent string, o options) (api.VendorConsents, int, error) {
	if consent == "" {
		return nil, 0, &errortypes.MalformedInput{Message: "consent string is empty"}
	}
	parts := strings.Split(consent, segmentSeparator)

	core, err := bitutils.FromBase64(parts[0])
	if err != nil {
		return nil, 0, fmt.Errorf("segment 0: %w", err)
	}
	version, err := core.ReadBits6(0)
	if err != nil {
		return nil, 0, fmt.Errorf("segment 0: %w", err)
	}

	switch version {
	case tcf1.Version:
		parsed, err := tcf1.Parse(core)
		if err != nil {
			return nil, int(version), err
		}
		if o.eager {
			if err := parsed.Materialize(); err != nil {
				return nil, int(version), err
			}
		}
		return parsed, int(version), nil
	case tcf2.Version:
		segments, err := dispatch(core, parts[1:], o.metricsEngine)
		if err != nil {
			return nil, int(version), err
		}
		parsed, err := tcf2.Parse(segments)
		if err != nil {
			return nil, int(version), err
		}
		if o.eager {
			if err := parsed.Materialize(); err != nil {
				return nil, int(version), err
			}
		}
		return parsed, int(version), nil
	}
	return nil, int(version), &errortypes.UnsupportedVersion{Version: int(version)}
}

// dispatch routes every segment after the core by its type tag. Unknown and repeated
// segments are skipped; the first segment of each type wins.
func dispatch(core *bitutils.BitVector, parts []string, metricsEngine metrics.MetricsEngine) (tcf2.Segments, error) {
	segments := tcf2.Segments{Core: core}
	for i, part := range parts {
		index := i + 1
		bv, err := bitutils.FromBase64(part)
		if err != nil {
			return tcf2.Segments{}, fmt.Errorf("segment %d: %w", index, err)
		}
		tag, err := fields.SegmentTypeCatalog.Read(bv, fields.SegmentType)
		if err != nil {
			return tcf2.Segments{}, fmt.Errorf("segment %d: %w", index, err)
		}
		segmentType := consentconstants.SegmentType(tag)

		slot := segmentSlot(&segments, segmentType)
		switch {
		case slot == nil:
			skip(&segments, segmentType, metricsEngine, &errortypes.Warning{
				Message:     fmt.Sprintf("segment %d: skipped unsupported %s segment", index, segmentType),
				WarningCode: errortypes.UnknownSegmentWarningCode,
			})
		case *slot != nil:
			skip(&segments, segmentType, metricsEngine, &errortypes.Warning{
				Message:     fmt.Sprintf("segment %d: skipped repeated %s segment", index, segmentType),
				WarningCode: errortypes.DuplicateSegmentWarningCode,
			})
		default:
			*slot = bv
		}
	}
	return segments, nil
}

func segmentSlot(segments *tcf2.Segments, segmentType consentconstants.SegmentType) **bitutils.BitVector {
	switch segmentType {
	case consentconstants.SegmentTypeDisclosedVendors:
		return &segments.DisclosedVendors
	case consentconstants.SegmentTypeAllowedVendors:
		return &segments.AllowedVendors
	case consentconstants.SegmentTypePublisherTC:
		return &segments.PublisherTC
	}
	return nil
}

func skip(segments *tcf2.Segments, segmentType consentconstants.SegmentType, metricsEngine metrics.MetricsEngine, warning *errortypes.Warning) {
	logger.Debugf("%s", warning.Message)
	metricsEngine.RecordSkippedSegment(segmentType)
	segments.Skipped = append(segments.Skipped, segmentType)
	segments.Warnings = append(segments.Warnings, warning)
}
