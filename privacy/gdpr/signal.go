package gdpr

import (
	"strconv"

	"github.com/prebid/go-tcf/errortypes"
)

// Signal says whether GDPR applies to a request.
type Signal int

const (
	SignalAmbiguous Signal = -1
	SignalNo        Signal = 0
	SignalYes       Signal = 1
)

var gdprSignalError = &errortypes.MalformedInput{Message: "GDPR signal should be integer 0 or 1"}

// SignalParse returns a parsed GDPR signal or a parse error.
func SignalParse(rawSignal string) (Signal, error) {
	if rawSignal == "" {
		return SignalAmbiguous, nil
	}

	i, err := strconv.Atoi(rawSignal)

	if err != nil || (i != 0 && i != 1) {
		return SignalAmbiguous, gdprSignalError
	}

	return Signal(i), nil
}

// SignalNormalize resolves an ambiguous signal to gdprDefault, which is "0" or "1".
func SignalNormalize(signal Signal, gdprDefault string) Signal {
	if signal != SignalAmbiguous {
		return signal
	}

	if gdprDefault == "0" {
		return SignalNo
	}

	return SignalYes
}

func signalFromInt8(value *int8) (Signal, error) {
	if value == nil {
		return SignalAmbiguous, nil
	}
	if *value != 0 && *value != 1 {
		return SignalAmbiguous, gdprSignalError
	}
	return Signal(*value), nil
}

func (s Signal) int8Ptr() *int8 {
	if s == SignalAmbiguous {
		return nil
	}
	v := int8(s)
	return &v
}
