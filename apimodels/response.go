package apimodels

type AskResponse struct {
	// The assistant's final answer
	Answer string `json:"answer"`
}

type ErrorResponse struct {
	// User-safe description of what went wrong
	Error string `json:"error"`
}
