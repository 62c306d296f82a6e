package handler

import (
	"encoding/json"
	"net/http"
)

// WriteJSON отправляет payload клиенту
func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
