package currency

import "github.com/tidwall/gjson"

// RawResponse is a syntactically valid JSON object received from the rates API.
// Fields are looked up lazily so a missing one can be reported by name.
type RawResponse struct {
	body gjson.Result
}

func ParseRawResponse(body []byte) (RawResponse, error) {
	if !gjson.ValidBytes(body) {
		return RawResponse{}, &MalformedResponseError{Reason: "body is not valid JSON"}
	}

	result := gjson.ParseBytes(body)

	if !result.IsObject() {
		return RawResponse{}, &MalformedResponseError{Reason: "body is not a JSON object"}
	}

	return RawResponse{body: result}, nil
}

// Get returns the top level field name. Use Exists on the result to tell an absent
// field from a null one.
func (r RawResponse) Get(name string) gjson.Result {
	return r.body.Get(gjson.Escape(name))
}

func (r RawResponse) String() string {
	return r.body.Raw
}
