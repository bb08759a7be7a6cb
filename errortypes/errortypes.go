package errortypes

import "fmt"

// MalformedInput should be used when the consent string itself cannot be turned into bits:
// empty input, empty segments, or characters outside the base64url alphabet.
type MalformedInput struct {
	Message string
}

func (err *MalformedInput) Error() string {
	return err.Message
}

func (err *MalformedInput) Code() int {
	return MalformedInputErrorCode
}

func (err *MalformedInput) Severity() Severity {
	return SeverityFatal
}

// BufferUnderrun is returned when a bit read extends past the end of a decoded segment.
//
// Offsets and lengths are in bits.
type BufferUnderrun struct {
	Offset    int
	Length    int
	Available int
}

func (err *BufferUnderrun) Error() string {
	return fmt.Sprintf("read of %d bits at offset %d exceeds the %d bits available", err.Length, err.Offset, err.Available)
}

func (err *BufferUnderrun) Code() int {
	return BufferUnderrunErrorCode
}

func (err *BufferUnderrun) Severity() Severity {
	return SeverityFatal
}

// UnsupportedVersion is returned when the leading version discriminator of a consent string is not 1 or 2.
type UnsupportedVersion struct {
	Version int
}

func (err *UnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported consent string version: %d", err.Version)
}

func (err *UnsupportedVersion) Code() int {
	return UnsupportedVersionErrorCode
}

func (err *UnsupportedVersion) Severity() Severity {
	return SeverityFatal
}

// UnsupportedOperation is returned when a field is requested from a consent model whose version
// does not define it, e.g. the TCF policy version of a version 1 string.
type UnsupportedOperation struct {
	Operation string
	Version   int
}

func (err *UnsupportedOperation) Error() string {
	return fmt.Sprintf("%s is not supported by version %d consent strings", err.Operation, err.Version)
}

func (err *UnsupportedOperation) Code() int {
	return UnsupportedOperationErrorCode
}

func (err *UnsupportedOperation) Severity() Severity {
	return SeverityFatal
}

// InvalidRangeEntry should be used when a decoded id range is inverted, or when a restriction,
// purpose or vendor id is not positive.
type InvalidRangeEntry struct {
	Message string
}

func (err *InvalidRangeEntry) Error() string {
	return err.Message
}

func (err *InvalidRangeEntry) Code() int {
	return InvalidRangeEntryErrorCode
}

func (err *InvalidRangeEntry) Severity() Severity {
	return SeverityFatal
}

// Warning is a generic non-fatal error.
//
// The decoder uses it to report segments it skipped for forward compatibility.
type Warning struct {
	Message     string
	WarningCode int
}

func (err *Warning) Error() string {
	return err.Message
}

func (err *Warning) Code() int {
	return err.WarningCode
}

func (err *Warning) Severity() Severity {
	return SeverityWarning
}

// VendorListNotFound is returned when no loaded Global Vendor List has the requested version.
type VendorListNotFound struct {
	Version uint16
}

func (err *VendorListNotFound) Error() string {
	return fmt.Sprintf("vendor list version %d does not exist, or has not been loaded", err.Version)
}

func (err *VendorListNotFound) Code() int {
	return VendorListNotFoundErrorCode
}

func (err *VendorListNotFound) Severity() Severity {
	return SeverityFatal
}
