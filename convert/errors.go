package convert

import "fmt"

// Format identifies one of the supported collection schemas.
type Format string

const (
	FormatNative  Format = "native"
	FormatPostman Format = "postman"
	FormatThunder Format = "thunder"
)

func (f Format) label() string {
	switch f {
	case FormatNative:
		return "RESTLab"
	case FormatPostman:
		return "Postman"
	case FormatThunder:
		return "Thunder Client"
	default:
		return string(f)
	}
}

// ParseError reports input that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON file: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnknownFormatError reports input that parsed as JSON but matched no
// known collection schema.
type UnknownFormatError struct{}

func (e *UnknownFormatError) Error() string {
	return "unknown format: expected a RESTLab, Postman, or Thunder Client collection"
}

// FormatMismatchError reports an explicit format hint whose shape check
// failed against the input.
type FormatMismatchError struct {
	Format Format
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf("the file does not appear to be a valid %s collection", e.Format.label())
}
