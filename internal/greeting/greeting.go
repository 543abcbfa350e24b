// Package greeting serves the hello/goodbye demo endpoints. They carry no
// auth logic of their own; they exist to exercise the JSON plumbing and, on
// the index/protected routes, the identity contract.
package greeting

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sabi-web/sabi/internal/utils"
)

type HelloRequest struct {
	Name string `json:"name"`
}

type HelloResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

type GoodbyeRequest struct {
	Reason string `json:"reason"`
}

type GoodbyeResponse struct {
	Message string `json:"message"`
}

// Handler serves the demo greeting routes.
type Handler struct {
	version string
}

func NewHandler(version string) *Handler {
	return &Handler{version: version}
}

// RegisterRoutes registers the greeting routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /hello", h.HandleHello)
	mux.HandleFunc("POST /hello", h.HandleHelloWithName)
	mux.HandleFunc("POST /goodbye", h.HandleGoodbye)
	mux.HandleFunc("POST /goodbye/reason", h.HandleGoodbyeReason)
}

func (h *Handler) HandleHello(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, HelloResponse{
		Message: "Hello, World!",
		Version: h.version,
	})
}

func (h *Handler) HandleHelloWithName(w http.ResponseWriter, r *http.Request) {
	var req HelloRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, "invalid_request", "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		utils.WriteError(w, "validation_error", "Validation error on field: name", http.StatusBadRequest)
		return
	}

	utils.WriteJSON(w, HelloResponse{
		Message: fmt.Sprintf("Hello, %s!", req.Name),
		Version: h.version,
	})
}

func (h *Handler) HandleGoodbye(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, GoodbyeResponse{Message: "Goodbye, World!"})
}

func (h *Handler) HandleGoodbyeReason(w http.ResponseWriter, r *http.Request) {
	var req GoodbyeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, "invalid_request", "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		utils.WriteError(w, "validation_error", "Validation error on field: reason", http.StatusBadRequest)
		return
	}

	utils.WriteJSON(w, GoodbyeResponse{
		Message: fmt.Sprintf("Goodbye World! Reason: %s", req.Reason),
	})
}
