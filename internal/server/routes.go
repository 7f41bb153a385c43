package server

import "net/http"

// Routes wires the handlers behind the request logger.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/layers", s.HandleLayersList)
	mux.HandleFunc("/layers/", s.HandleLayer)
	mux.HandleFunc("/", s.HandleIndex)

	return RequestLogger(mux)
}
