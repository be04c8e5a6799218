package pipeline

import (
	"fmt"
	"strings"
)

// Error kinds as persisted in job records and diagnostic reports.
const (
	KindAPIError              = "api_error"
	KindResponseParsing       = "response_parsing_error"
	KindValidation            = "validation_error"
	KindMissingEntityMappings = "missing_entity_mappings"
)

// APIError is a provider/transport failure: timeout, auth, quota, 5xx.
// Retryable with backoff; never the pipeline's fault.
type APIError struct {
	Provider string
	Err      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider %s call failed: %v", e.Provider, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// ResponseParsingError means the provider returned text that cannot be parsed
// into the expected structured shape at all.
type ResponseParsingError struct {
	Raw    string // raw response text, untruncated (formatter bounds it)
	Err    error
	Report string
}

func (e *ResponseParsingError) Error() string {
	return fmt.Sprintf("response is not parseable structured output: %v", e.Err)
}

func (e *ResponseParsingError) Unwrap() error { return e.Err }

// ValidationError means the response parsed but required fields are missing or
// malformed. MissingFields names every offending field, never just a count.
type ValidationError struct {
	MissingFields []string
	Reason        string // set when the problem is malformation rather than absence
	Report        string
}

func (e *ValidationError) Error() string {
	if len(e.MissingFields) == 0 {
		return fmt.Sprintf("response malformed: %s", e.Reason)
	}
	return fmt.Sprintf("response missing required field(s): %s", strings.Join(e.MissingFields, ", "))
}

// MissingEntityMappingsError means a translation response was structurally
// valid but its entity_mappings omitted (or blanked) required entities. The
// Missing list is deduplicated and keeps the order names were presented in the
// prompt, so retry prompts can re-list them verbatim.
type MissingEntityMappingsError struct {
	Missing  []string
	Expected int // count of new names the prompt demanded
	Received int // count of mapping keys the response carried
	Report   string
}

func (e *MissingEntityMappingsError) Error() string {
	return fmt.Sprintf("entity_mappings incomplete: expected %d, received %d, missing: %s",
		e.Expected, e.Received, strings.Join(e.Missing, ", "))
}

// Retryable reports whether err is one of the pipeline error kinds that the
// job layer should retry. All four kinds are retryable; anything else
// (programming errors, store failures) is not retried here.
func Retryable(err error) bool {
	switch err.(type) {
	case *APIError, *ResponseParsingError, *ValidationError, *MissingEntityMappingsError:
		return true
	}
	return false
}

// Kind returns the persisted kind string for a pipeline error, or "" for
// foreign errors.
func Kind(err error) string {
	switch err.(type) {
	case *APIError:
		return KindAPIError
	case *ResponseParsingError:
		return KindResponseParsing
	case *ValidationError:
		return KindValidation
	case *MissingEntityMappingsError:
		return KindMissingEntityMappings
	}
	return ""
}

// FormattedReport extracts the bounded diagnostic block attached to a pipeline
// error, or "" if none was attached.
func FormattedReport(err error) string {
	switch e := err.(type) {
	case *ResponseParsingError:
		return e.Report
	case *ValidationError:
		return e.Report
	case *MissingEntityMappingsError:
		return e.Report
	}
	return ""
}
