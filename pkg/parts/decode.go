package parts

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// Default decoding order for datasheet text files.
const (
	DefaultPrimaryEncoding   = "utf-8"
	DefaultSecondaryEncoding = "iso-8859-1"
)

// ErrUndecodable is returned when no configured encoding accepts the bytes.
var ErrUndecodable = errors.New("text could not be decoded")

// DecodeText decodes data with each encoding in turn and returns the first
// success. UTF-8 is strict: invalid byte sequences fail rather than being
// replaced.
func DecodeText(data []byte, encodings ...string) (string, error) {
	if len(encodings) == 0 {
		encodings = []string{DefaultPrimaryEncoding, DefaultSecondaryEncoding}
	}
	var errs []error
	for _, name := range encodings {
		s, err := decodeWith(name, data)
		if err == nil {
			return s, nil
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf("%w: %w", ErrUndecodable, errors.Join(errs...))
}

// ValidateEncoding reports whether name resolves to a supported encoding.
func ValidateEncoding(name string) error {
	if isUTF8(name) {
		return nil
	}
	_, err := lookupEncoding(name)
	return err
}

func decodeWith(name string, data []byte) (string, error) {
	if isUTF8(name) {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("utf-8: invalid byte sequence")
		}
		return string(data), nil
	}
	enc, err := lookupEncoding(name)
	if err != nil {
		return "", err
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(out), nil
}

// lookupEncoding prefers IANA names so that "iso-8859-1" is true Latin-1
// rather than the WHATWG windows-1252 alias; HTML labels are the fallback.
func lookupEncoding(name string) (encoding.Encoding, error) {
	if e, err := ianaindex.IANA.Encoding(name); err == nil && e != nil {
		return e, nil
	}
	e, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return e, nil
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
