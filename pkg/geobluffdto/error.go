package geobluffdto

// ErrorPayload is the body returned for any rejected operation. Code is a
// stable machine-readable class such as "illegal_phase".
type ErrorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
