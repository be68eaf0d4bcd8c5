package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/arl/statsviz"
)

const DashboardPath = "/debug/statsviz/"

// NewHandler returns a mux serving the statsviz runtime dashboard.
func NewHandler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := statsviz.Register(mux, statsviz.SendFrequency(time.Second)); err != nil {
		return nil, fmt.Errorf("register statsviz: %w", err)
	}
	return mux, nil
}

// Serve blocks serving the dashboard on addr.
func Serve(addr string) error {
	handler, err := NewHandler()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
