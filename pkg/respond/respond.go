package respond

import (
	"encoding/json"
	"net/http"
)

// FaultMessage is the body of every storage-level failure.
const FaultMessage = "Internal Server Error"

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, map[string]string{"error": message})
}

// Fault hides the cause of a server-side failure from the caller.
func Fault(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusInternalServerError, FaultMessage)
}

// Empty answers an update or delete that matched no row.
func Empty(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
