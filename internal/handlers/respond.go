package handlers

import (
	"encoding/json"
	"net/http"
)

// All responses share the {success, message, ...} envelope the dashboard
// expects.

func respond(w http.ResponseWriter, code int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func jsonOK(w http.ResponseWriter, code int, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	respond(w, code, body)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	respond(w, code, map[string]any{"success": false, "message": msg})
}
