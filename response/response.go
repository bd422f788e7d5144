package response

// Response is the envelope for every API reply. Msg carries the error
// description on failures; Data the payload on success.
type Response struct {
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

type UserAuthResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	AIBackend    string `json:"ai_backend"`
	CircuitState string `json:"circuit_state"`
}
