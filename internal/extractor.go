package internal

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Fallback texts shown in place of a reply when a payload cannot be used
const (
	ReplyFallback      = "Sorry, I couldn't parse the response."
	TimeFetchFallback  = "Error: Could not fetch the time. Please try again later."
	TimeParseFallback  = "Error: Failed to parse response from WorldTimeAPI."
	TimeFormatFallback = "Error: Unexpected response format."
	replyContentPath   = "choices.0.message.content"
	timeDatetimeField  = "datetime"
)

// ParseOutcome says why an extraction did or did not produce a value
type ParseOutcome int

const (
	OutcomeOK ParseOutcome = iota
	OutcomeEmptyBody
	OutcomeMalformedBody
	OutcomeMissingField
)

func (o ParseOutcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmptyBody:
		return "empty body"
	case OutcomeMalformedBody:
		return "malformed body"
	case OutcomeMissingField:
		return "missing field"
	default:
		return "unknown"
	}
}

// Extraction is the displayable result of parsing a payload. Value holds the
// fallback text whenever Outcome is not OutcomeOK.
type Extraction struct {
	Value   string
	Outcome ParseOutcome
}

// OK reports whether Value came from the payload
func (e Extraction) OK() bool {
	return e.Outcome == OutcomeOK
}

// ExtractReply pulls choices[0].message.content out of a completion body
func ExtractReply(body string) Extraction {
	outcome := inspect(body)
	if outcome != OutcomeOK {
		return Extraction{Value: ReplyFallback, Outcome: outcome}
	}
	r := gjson.Get(body, replyContentPath)
	switch {
	case !r.Exists():
		return Extraction{Value: ReplyFallback, Outcome: OutcomeMissingField}
	case r.Type != gjson.String:
		return Extraction{Value: ReplyFallback, Outcome: OutcomeMalformedBody}
	case r.Str == "":
		return Extraction{Value: ReplyFallback, Outcome: OutcomeMissingField}
	}
	return Extraction{Value: r.Str, Outcome: OutcomeOK}
}

// ExtractTime pulls the datetime string out of a time lookup body
func ExtractTime(body string) Extraction {
	switch inspect(body) {
	case OutcomeEmptyBody:
		return Extraction{Value: TimeFetchFallback, Outcome: OutcomeEmptyBody}
	case OutcomeMalformedBody:
		return Extraction{Value: TimeParseFallback, Outcome: OutcomeMalformedBody}
	}
	r := gjson.Get(body, timeDatetimeField)
	if !r.Exists() {
		return Extraction{Value: TimeFormatFallback, Outcome: OutcomeMissingField}
	}
	if r.Type != gjson.String {
		return Extraction{Value: TimeParseFallback, Outcome: OutcomeMalformedBody}
	}
	return Extraction{Value: r.Str, Outcome: OutcomeOK}
}

// inspect classifies a body as empty, syntactically invalid, or a JSON object
func inspect(body string) ParseOutcome {
	if strings.TrimSpace(body) == "" {
		return OutcomeEmptyBody
	}
	if !gjson.Valid(body) || !gjson.Parse(body).IsObject() {
		return OutcomeMalformedBody
	}
	return OutcomeOK
}
