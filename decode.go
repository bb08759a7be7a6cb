package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"github.com/prebid/go-tcf/api"
	"github.com/prebid/go-tcf/config"
	"github.com/prebid/go-tcf/errortypes"
	"github.com/prebid/go-tcf/logger"
	"github.com/prebid/go-tcf/metrics"
	metricsConf "github.com/prebid/go-tcf/metrics/config"
	"github.com/prebid/go-tcf/vendorconsent"
	"github.com/prebid/go-tcf/vendorlist"
)

// AccessorVendorNames holds the GVL names of the consented vendors.
const AccessorVendorNames vendorconsent.Accessor = "vendorNames"

type decoder struct {
	cfg           *config.Configuration
	clock         clock.Clock
	metricsEngine metrics.MetricsEngine
	vendorLists   *vendorlist.Cache
	cmps          *vendorlist.CMPList
}

// record is the output of one consent string.
type record struct {
	Consent  string               `json:"consent" yaml:"consent"`
	Fields   vendorconsent.Fields `json:"fields,omitempty" yaml:"fields,omitempty"`
	Warnings []string             `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Error    string               `json:"error,omitempty" yaml:"error,omitempty"`
}

func newDecoder(cfg *config.Configuration, clk clock.Clock) (*decoder, error) {
	d := &decoder{
		cfg:           cfg,
		clock:         clk,
		metricsEngine: metricsConf.NewMetricsEngine(cfg).MetricsEngine,
	}
	if cfg.VendorList.GVLPath != "" {
		d.vendorLists = vendorlist.NewCache(cfg.VendorList, vendorlist.FileLoader(cfg.VendorList.GVLPath), d.metricsEngine, clk)
	}
	if cfg.VendorList.CMPListPath != "" {
		cmps, err := vendorlist.LoadCMPList(cfg.VendorList.CMPListPath)
		if err != nil {
			return nil, err
		}
		d.cmps = cmps
	}
	return d, nil
}

// run decodes every input and writes one record per input, in input order. It fails if any
// input could not be decoded.
func (d *decoder) run(ctx context.Context, inputs []string, w io.Writer) error {
	records, err := d.decodeAll(ctx, inputs)
	if err != nil {
		return err
	}

	if err := d.write(w, records); err != nil {
		return err
	}

	var failures []error
	for i, r := range records {
		if r.Error != "" {
			failures = append(failures, fmt.Errorf("consent %d: %s", i+1, r.Error))
		}
	}
	if len(failures) > 0 {
		return errortypes.NewAggregateErrors("failed to decode consent strings", failures)
	}
	return nil
}

func (d *decoder) decodeAll(ctx context.Context, inputs []string) ([]record, error) {
	records := make([]record, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Output.Concurrency)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records[i] = d.decode(input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (d *decoder) decode(input string) record {
	r := record{Consent: input}

	opts := []vendorconsent.Option{vendorconsent.WithMetrics(d.metricsEngine)}
	if d.cfg.Decoder.Eager {
		opts = append(opts, vendorconsent.WithEager())
	}
	consent, err := vendorconsent.ParseString(input, opts...)
	if err != nil {
		r.Error = err.Error()
		return r
	}

	fields, err := vendorconsent.Dump(consent)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Fields = fields

	var warnings []error
	if withWarnings, ok := consent.(interface{ Warnings() []error }); ok {
		warnings = append(warnings, withWarnings.Warnings()...)
	}
	warnings = append(warnings, d.checkCMP(consent)...)
	if d.vendorLists != nil {
		names, nameWarnings := d.vendorNames(consent)
		warnings = append(warnings, nameWarnings...)
		if names != nil {
			r.Fields = r.Fields.Set(AccessorVendorNames, names)
		}
	}
	for _, warning := range warnings {
		r.Warnings = append(r.Warnings, warning.Error())
	}
	return r
}

func (d *decoder) checkCMP(consent api.VendorConsents) []error {
	if d.cmps == nil {
		return nil
	}
	cmpID, err := consent.CmpID()
	if err != nil {
		return []error{err}
	}
	if !vendorlist.ActiveCMP(d.cmps, cmpID, d.clock) {
		return []error{&errortypes.Warning{
			Message:     fmt.Sprintf("CMP %d is not active in the CMP list", cmpID),
			WarningCode: errortypes.DeletedVendorWarningCode,
		}}
	}
	return nil
}

// vendorNames names the consented vendors from the vendor list version the consent was built
// against, falling back to the latest list when that version is unavailable.
func (d *decoder) vendorNames(consent api.VendorConsents) (map[int]string, []error) {
	var warnings []error
	version, err := consent.VendorListVersion()
	if err != nil {
		return nil, []error{err}
	}
	list, err := d.vendorLists.VendorList(version)
	var notFound *errortypes.VendorListNotFound
	if errors.As(err, &notFound) {
		warnings = append(warnings, &errortypes.Warning{
			Message:     fmt.Sprintf("%v, using the latest vendor list", err),
			WarningCode: errortypes.DeletedVendorWarningCode,
		})
		list, err = d.vendorLists.VendorList(0)
	}
	if err != nil {
		logger.Warnf("Vendor names unavailable for vendor list version %d: %v", version, err)
		return nil, append(warnings, err)
	}

	vendors, err := consent.VendorConsents()
	if err != nil {
		return nil, append(warnings, err)
	}
	names, nameWarnings := vendorlist.VendorNames(list, vendors.ToSlice())
	return names, append(warnings, nameWarnings...)
}

func (d *decoder) write(w io.Writer, records []record) error {
	switch d.cfg.Output.Format {
	case config.OutputFormatYAML:
		for i, r := range records {
			out, err := yaml.Marshal(r)
			if err != nil {
				return fmt.Errorf("consent %d: %w", i+1, err)
			}
			if _, err := fmt.Fprintf(w, "---\n%s", out); err != nil {
				return err
			}
		}
	default:
		enc := json.NewEncoder(w)
		for i, r := range records {
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("consent %d: %w", i+1, err)
			}
		}
	}
	return nil
}
