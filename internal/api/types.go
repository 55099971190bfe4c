package api

// messageResponse is returned by GET /
type messageResponse struct {
	Message string `json:"message"`
}

// healthResponse is returned by GET /healthz
type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}
