package serverutils

type APIResponse struct {
	Message string `json:"message"`
}

func ErrorResponse(message string) APIResponse {
	return APIResponse{Message: message}
}
