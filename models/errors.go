package models

// ErrorResponse is the JSON body written for every non-2xx API answer.
type ErrorResponse struct {
	Error string `json:"error"`

	// RetryAfterSeconds mirrors the Retry-After header on 429 answers.
	RetryAfterSeconds int `json:"retryAfterSeconds,omitempty"`
}
