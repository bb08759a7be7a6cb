package prometheusmetrics

import (
	"github.com/prebid/go-tcf/metrics"
)

func cacheResultsAsString() []string {
	values := metrics.CacheResults()
	valuesAsString := make([]string, len(values))
	for i, v := range values {
		valuesAsString[i] = string(v)
	}
	return valuesAsString
}

func decodeStatusesAsString() []string {
	values := metrics.DecodeStatuses()
	valuesAsString := make([]string, len(values))
	for i, v := range values {
		valuesAsString[i] = string(v)
	}
	return valuesAsString
}

func segmentTypesAsString() []string {
	values := metrics.SegmentTypes()
	valuesAsString := make([]string, len(values))
	for i, v := range values {
		valuesAsString[i] = v.String()
	}
	return valuesAsString
}

func tcfVersionsAsString() []string {
	values := metrics.TCFVersions()
	valuesAsString := make([]string, len(values))
	for i, v := range values {
		valuesAsString[i] = string(v)
	}
	return valuesAsString
}
