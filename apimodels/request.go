package apimodels

type AskRequest struct {
	// Question is the user's natural language question for the assistant
	Question string `json:"question" validate:"required"`

	// DeviceID identifies the farm device whose readings the assistant
	// may consult. A pointer so that a missing field is distinguishable
	// from device 0.
	DeviceID *int64 `json:"deviceId" validate:"required"`
}
