package llm

import "github.com/rotisserie/eris"

// ErrTransport marks failures reaching the model provider: the HTTP call
// errored, returned no choices, or the provider refused to answer.
var ErrTransport = eris.New("llm transport failure")

// ErrParse marks responses that arrived but could not be decoded into the
// expected JSON shape.
var ErrParse = eris.New("llm response parse failure")

// IsTransport reports whether err originates from a transport failure.
func IsTransport(err error) bool {
	return eris.Is(err, ErrTransport)
}

// IsParse reports whether err originates from a malformed model response.
func IsParse(err error) bool {
	return eris.Is(err, ErrParse)
}

func transportError(cause error, message string) error {
	if cause == nil {
		return eris.Wrap(ErrTransport, message)
	}
	return eris.Wrapf(ErrTransport, "%s: %v", message, cause)
}

func parseError(cause error, message string) error {
	if cause == nil {
		return eris.Wrap(ErrParse, message)
	}
	return eris.Wrapf(ErrParse, "%s: %v", message, cause)
}
