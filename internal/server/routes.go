package server

import "net/http"

// Service is the set of handlers the routes dispatch to.
type Service interface {
	HandleIndex(http.ResponseWriter, *http.Request)
	HandleUpload(http.ResponseWriter, *http.Request)
	HandleEncode(http.ResponseWriter, *http.Request)
	HandleDecode(http.ResponseWriter, *http.Request)
}

// RegisterRoutes wires svc into mux.
func RegisterRoutes(mux *http.ServeMux, svc Service) {
	mux.HandleFunc("GET /{$}", svc.HandleIndex)
	mux.HandleFunc("POST /api/upload", svc.HandleUpload)
	mux.HandleFunc("GET /api/encode", svc.HandleEncode)
	mux.HandleFunc("GET /api/decode", svc.HandleDecode)
}
